package sentiment

import (
	"sort"
	"time"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// TimelinePoint is one renderer timeline sample
type TimelinePoint struct {
	Timestamp     time.Time `json:"timestamp"`
	Score         float64   `json:"sentiment_score"`
	MovingAverage *float64  `json:"moving_average"`
}

// HeatmapCell is the mean score of one weekday in one ISO week
type HeatmapCell struct {
	Year    int          `json:"year"`
	Week    int          `json:"week"`
	Weekday time.Weekday `json:"weekday"`
	Mean    float64      `json:"mean_sentiment"`
	Count   int          `json:"count"`
}

// Timeline returns (timestamp, score, moving average) tuples in series order
func Timeline(s *Series) []TimelinePoint {
	out := make([]TimelinePoint, len(s.Points))
	for i, p := range s.Points {
		out[i] = TimelinePoint{
			Timestamp:     p.Commit.Timestamp,
			Score:         p.Observation.Score,
			MovingAverage: p.MovingAverage,
		}
	}
	return out
}

// Distribution counts commits per label
func Distribution(s *Series) map[models.Label]int {
	out := make(map[models.Label]int)
	for _, p := range s.Points {
		out[p.Observation.Label]++
	}
	return out
}

// SortedDistribution returns labels ordered by count descending, then name
func SortedDistribution(dist map[models.Label]int) []models.Label {
	labels := make([]models.Label, 0, len(dist))
	for l := range dist {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if dist[labels[i]] != dist[labels[j]] {
			return dist[labels[i]] > dist[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}

// WeeklyHeatmap averages scores per (ISO week, weekday) using each commit's
// own time zone. Cells are ordered by year, week, then Monday..Sunday.
func WeeklyHeatmap(s *Series) []HeatmapCell {
	type key struct {
		year, week int
		day        time.Weekday
	}
	sums := make(map[key]float64)
	counts := make(map[key]int)

	for _, p := range s.Points {
		ts := p.Commit.Timestamp
		year, week := ts.ISOWeek()
		k := key{year: year, week: week, day: ts.Weekday()}
		sums[k] += p.Observation.Score
		counts[k]++
	}

	cells := make([]HeatmapCell, 0, len(counts))
	for k, n := range counts {
		cells = append(cells, HeatmapCell{
			Year:    k.year,
			Week:    k.week,
			Weekday: k.day,
			Mean:    sums[k] / float64(n),
			Count:   n,
		})
	}

	sort.Slice(cells, func(i, j int) bool {
		a, b := cells[i], cells[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		return isoDay(a.Weekday) < isoDay(b.Weekday)
	})
	return cells
}

// isoDay maps Monday..Sunday to 0..6
func isoDay(d time.Weekday) int {
	return (int(d) + 6) % 7
}
