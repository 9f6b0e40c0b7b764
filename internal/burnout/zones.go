package burnout

import (
	"time"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// Defaults for the sliding-window scan
const (
	DefaultWindowSize = 20
	DefaultThreshold  = 0.7
)

// Options configures the detector
type Options struct {
	// WindowSize is the zone scan window
	WindowSize int
	// Threshold is the minimum stress ratio for a window to qualify
	Threshold float64
}

// DefaultOptions returns the default scan configuration
func DefaultOptions() Options {
	return Options{WindowSize: DefaultWindowSize, Threshold: DefaultThreshold}
}

// normalized replaces a non-positive window, which cannot hold a zone. The
// threshold is used as given; 0 marks every full window.
func (o Options) normalized() Options {
	if o.WindowSize <= 0 {
		o.WindowSize = DefaultWindowSize
	}
	return o
}

// DetectZones emits one zone per window start offset 0..N-WindowSize whose
// stress ratio is at least Threshold. Overlapping zones are not merged. A
// zone's timestamp is that of the commit at start + WindowSize/2.
func DetectZones(labels []models.Label, times []time.Time, opts Options) ([]models.BurnoutZone, error) {
	if len(labels) != len(times) {
		return nil, errors.InternalErrorf("labels and timestamps differ in length: %d != %d", len(labels), len(times))
	}
	opts = opts.normalized()
	ws := opts.WindowSize
	n := len(labels)
	if n < ws {
		return nil, nil
	}

	var zones []models.BurnoutZone
	stressed := 0
	for i := 0; i < n; i++ {
		if labels[i].IsHighStress() {
			stressed++
		}
		if i >= ws && labels[i-ws].IsHighStress() {
			stressed--
		}
		if i < ws-1 {
			continue
		}

		start := i - ws + 1
		ratio := float64(stressed) / float64(ws)
		if ratio >= opts.Threshold {
			zones = append(zones, models.BurnoutZone{
				Timestamp:     times[start+ws/2],
				NegativeRatio: ratio,
				StartIndex:    start,
			})
		}
	}
	return zones, nil
}
