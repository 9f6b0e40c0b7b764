package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/pipeline"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/sentiment"
)

// Formatter defines output formatting interface
type Formatter interface {
	Format(result *pipeline.Result, w io.Writer) error
}

// VerbosityLevel determines output detail
type VerbosityLevel int

const (
	VerbosityQuiet    VerbosityLevel = iota // One-line risk summary
	VerbosityStandard                       // Sentiment, authors, burnout zones
	VerbosityJSON                           // Machine-readable JSON
)

// Options tune the ranked sections of the formatters. Values are used as
// given: TopN 0 ranks every author, MinCommits 0 admits every author.
type Options struct {
	TopN       int
	MinCommits int
	MaxZones   int // 0 = all
}

// DefaultOptions returns the CLI defaults
func DefaultOptions() Options {
	return Options{TopN: 5, MinCommits: sentiment.DefaultMinCommits, MaxZones: 10}
}

// ParseVerbosity maps a --format value to a level
func ParseVerbosity(format string) (VerbosityLevel, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "quiet":
		return VerbosityQuiet, nil
	case "standard", "":
		return VerbosityStandard, nil
	case "json":
		return VerbosityJSON, nil
	default:
		return VerbosityStandard, fmt.Errorf("unknown output format %q", format)
	}
}

// NewFormatter creates appropriate formatter based on level
func NewFormatter(level VerbosityLevel, opts Options) Formatter {
	switch level {
	case VerbosityQuiet:
		return &QuietFormatter{}
	case VerbosityJSON:
		return &JSONFormatter{Options: opts}
	default:
		return &StandardFormatter{Options: opts}
	}
}
