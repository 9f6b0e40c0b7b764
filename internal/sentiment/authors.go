package sentiment

import (
	"math"
	"sort"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// DefaultMinCommits is the minimum commit count for ranked author views
const DefaultMinCommits = 5

// AuthorSentiment is the per-author entry of the comparison view
type AuthorSentiment struct {
	Mean   float64 `json:"mean_sentiment"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"commit_count"`
}

// AuthorStats groups the series by exact author name. No case or whitespace
// normalization is applied.
func AuthorStats(s *Series) map[string]models.AuthorStats {
	scores := make(map[string][]float64)
	stats := make(map[string]models.AuthorStats)

	for _, p := range s.Points {
		author := p.Commit.Author
		st := stats[author]
		st.Author = author
		st.Total++
		switch p.Observation.Label.Bucket() {
		case models.BucketPositive:
			st.Positive++
		case models.BucketNegative:
			st.Negative++
		default:
			st.Neutral++
		}
		stats[author] = st
		scores[author] = append(scores[author], p.Observation.Score)
	}

	for author, st := range stats {
		st.MeanSentiment = Mean(scores[author])
		st.StdDev = SampleStdDev(scores[author])
		stats[author] = st
	}
	return stats
}

// SampleStdDev returns the sample (n-1) standard deviation, 0 below two values
func SampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// RankByActivity returns up to n authors with at least minCommits commits,
// ordered by total commits descending. n <= 0 returns every qualifying author.
func RankByActivity(stats map[string]models.AuthorStats, n, minCommits int) []models.AuthorStats {
	return rank(stats, n, minCommits, func(a, b models.AuthorStats) int {
		switch {
		case a.Total > b.Total:
			return -1
		case a.Total < b.Total:
			return 1
		}
		return 0
	})
}

// RankByPositivity returns up to n authors with at least minCommits commits,
// ordered by mean sentiment descending.
func RankByPositivity(stats map[string]models.AuthorStats, n, minCommits int) []models.AuthorStats {
	return rank(stats, n, minCommits, func(a, b models.AuthorStats) int {
		switch {
		case a.MeanSentiment > b.MeanSentiment:
			return -1
		case a.MeanSentiment < b.MeanSentiment:
			return 1
		}
		return 0
	})
}

// rank filters below minCommits, sorts by cmp and breaks ties by author name
// ascending so output is deterministic.
func rank(stats map[string]models.AuthorStats, n, minCommits int, cmp func(a, b models.AuthorStats) int) []models.AuthorStats {
	out := make([]models.AuthorStats, 0, len(stats))
	for _, st := range stats {
		if st.Total < minCommits {
			continue
		}
		out = append(out, st)
	}

	sort.Slice(out, func(i, j int) bool {
		if c := cmp(out[i], out[j]); c != 0 {
			return c < 0
		}
		return out[i].Author < out[j].Author
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// AuthorComparison is the renderer view: mean, standard deviation and count
// for authors with at least minCommits commits. Authors below the threshold
// are absent, not zero-filled.
func AuthorComparison(stats map[string]models.AuthorStats, minCommits int) map[string]AuthorSentiment {
	out := make(map[string]AuthorSentiment)
	for author, st := range stats {
		if st.Total < minCommits {
			continue
		}
		out[author] = AuthorSentiment{
			Mean:   st.MeanSentiment,
			StdDev: st.StdDev,
			Count:  st.Total,
		}
	}
	return out
}
