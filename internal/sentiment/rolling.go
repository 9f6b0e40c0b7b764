package sentiment

// DefaultWindow is the moving-average window size W
const DefaultWindow = 20

// MovingAverage returns the trailing mean of window scores at every position.
// The value at i is nil for i < window-1 and mean(scores[i-window+1..i])
// otherwise. A non-positive window falls back to DefaultWindow.
func MovingAverage(scores []float64, window int) []*float64 {
	if window <= 0 {
		window = DefaultWindow
	}
	out := make([]*float64, len(scores))

	var sum float64
	for i, s := range scores {
		sum += s
		if i >= window {
			sum -= scores[i-window]
		}
		if i >= window-1 {
			v := sum / float64(window)
			out[i] = &v
		}
	}
	return out
}

// Trend is the last moving-average value minus the first defined one
// (position window-1). It is 0 when the series holds window values or fewer.
func Trend(ma []*float64, window int) float64 {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(ma) <= window {
		return 0
	}
	first, last := ma[window-1], ma[len(ma)-1]
	if first == nil || last == nil {
		return 0
	}
	return *last - *first
}

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
