// Package burnout scans an aggregated sentiment series for sustained negative
// windows and computes a composite risk score.
//
// The risk score is a fixed additive rubric of four trigger conditions capped
// at 100. It is a heuristic for surfacing periods worth a closer look, not a
// statistically calibrated model, and carries no predictive validity about any
// individual.
package burnout
