package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/burnout"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/classifier"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/config"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/sentiment"
)

type fakeSource struct {
	commits []models.CommitRecord
	err     error
}

func (f fakeSource) Fetch(ctx context.Context) ([]models.CommitRecord, error) {
	out := make([]models.CommitRecord, len(f.commits))
	copy(out, f.commits)
	return out, f.err
}

func (f fakeSource) Describe() string { return "fake" }

// keywordClassifier labels by the first keyword found in the text
type keywordClassifier struct {
	calls atomic.Int32
	delay time.Duration
}

func (k *keywordClassifier) Classify(ctx context.Context, text string) (classifier.Result, error) {
	k.calls.Add(1)
	if k.delay > 0 {
		select {
		case <-time.After(k.delay):
		case <-ctx.Done():
			return classifier.Result{}, ctx.Err()
		}
	}
	switch {
	case strings.Contains(text, "boom"):
		return classifier.Result{}, fmt.Errorf("backend unavailable")
	case strings.Contains(text, "angry"):
		return classifier.Result{Label: models.LabelAnger, Confidence: 0.9}, nil
	case strings.Contains(text, "happy"):
		return classifier.Result{Label: models.LabelJoy, Confidence: 0.8}, nil
	case strings.Contains(text, "weird"):
		return classifier.Result{Label: "joy", Confidence: 3}, nil
	default:
		return classifier.Result{Scores: map[models.Label]float64{models.LabelNeutral: 0.9}}, nil
	}
}

func (k *keywordClassifier) Name() string { return "keyword" }
func (k *keywordClassifier) Close() error { return nil }

// newestFirst builds n commits with messages from msg, newest first
func newestFirst(n int, msg func(i int) string) []models.CommitRecord {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	out := make([]models.CommitRecord, n)
	for i := 0; i < n; i++ {
		// i is the chronological index
		out[n-1-i] = models.CommitRecord{
			ID:         fmt.Sprintf("%08x", i),
			Author:     "dev",
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
			Message:    msg(i),
			Insertions: 10,
		}
	}
	return out
}

func newPipeline(src Source, c classifier.Classifier, opts Options) *Pipeline {
	agg := sentiment.NewAggregator(sentiment.DefaultScoreTable(), sentiment.Options{Window: 5})
	det := burnout.NewDetector(burnout.Options{WindowSize: 5, Threshold: 0.7})
	return New(src, c, agg, det, opts)
}

func TestRun_OrderAndCounts(t *testing.T) {
	src := fakeSource{commits: newestFirst(12, func(i int) string {
		switch {
		case i == 0:
			return "   "
		case i == 1:
			return "boom"
		case i == 2:
			return "weird"
		case i >= 6:
			return "angry about the build"
		default:
			return "happy release"
		}
	})}
	c := &keywordClassifier{}

	var progress bytes.Buffer
	result, err := newPipeline(src, c, Options{Workers: 3, Progress: &progress}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Commits, 12)
	for i, a := range result.Commits {
		assert.Equal(t, fmt.Sprintf("%08x", i), a.Commit.ID, "chronological order")
	}

	s := result.Summary
	assert.Equal(t, 12, s.Commits)
	assert.Equal(t, 1, s.EmptyMessages)
	assert.Equal(t, 2, s.ClassificationFailures)
	assert.Equal(t, 9, s.Classified)
	assert.Equal(t, "keyword", s.Backend)
	assert.Equal(t, "fake", s.Source)
	assert.EqualValues(t, 11, c.calls.Load())

	for _, i := range []int{0, 1, 2} {
		obs := result.Commits[i].Observation
		assert.True(t, obs.Placeholder)
		assert.Equal(t, models.LabelNeutral, obs.Label)
		assert.Equal(t, models.PlaceholderConfidence, obs.Confidence)
	}
	assert.InDelta(t, 0.64, result.Commits[3].Observation.Score, 1e-9)
	assert.InDelta(t, -0.81, result.Commits[11].Observation.Score, 1e-9)

	// windows starting at 5, 6 and 7 hold at least four angry commits of five
	require.Len(t, result.Report.Zones, 3)
	assert.Equal(t, 5, result.Report.Zones[0].StartIndex)
	assert.Equal(t, 12, result.Report.Signal.TotalCommits)
	assert.Contains(t, result.Authors, "dev")
	assert.NotEmpty(t, progress.String())
}

func TestRun_EmptySource(t *testing.T) {
	_, err := newPipeline(fakeSource{}, &keywordClassifier{}, Options{}).Run(context.Background())
	assert.ErrorIs(t, err, errors.ErrEmptyInput)
	assert.Equal(t, 3, errors.ExitCode(err))
}

func TestRun_SourceError(t *testing.T) {
	src := fakeSource{err: errors.InvalidSourcef(nil, "not a repository")}
	_, err := newPipeline(src, &keywordClassifier{}, Options{}).Run(context.Background())
	assert.ErrorIs(t, err, errors.ErrInvalidSource)
}

func TestClassify_Timeout(t *testing.T) {
	commits := newestFirst(4, func(int) string { return "slow" })
	c := &keywordClassifier{delay: time.Second}

	p := newPipeline(fakeSource{}, c, Options{Workers: 2, Timeout: 20 * time.Millisecond})
	_, _, err := p.Classify(context.Background(), commits)
	assert.ErrorIs(t, err, errors.ErrClassificationTimeout)
}

func TestClassify_ParentCancelled(t *testing.T) {
	commits := newestFirst(4, func(int) string { return "slow" })
	c := &keywordClassifier{delay: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newPipeline(fakeSource{}, c, Options{Workers: 2})
	_, _, err := p.Classify(ctx, commits)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, errors.ErrClassificationTimeout)
}

func TestChronological(t *testing.T) {
	commits := []models.CommitRecord{{ID: "c"}, {ID: "b"}, {ID: "a"}}
	Chronological(commits)
	assert.Equal(t, "a", commits[0].ID)
	assert.Equal(t, "c", commits[2].ID)

	Chronological(nil)
}

func TestAnalyze_Empty(t *testing.T) {
	agg := sentiment.NewAggregator(sentiment.DefaultScoreTable(), sentiment.Options{})
	det := burnout.NewDetector(burnout.DefaultOptions())
	_, err := Analyze(agg, det, nil)
	assert.ErrorIs(t, err, errors.ErrEmptyInput)
}

func TestNewSource(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	src, err := NewSource(ctx, cfg, "/tmp/repo")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/repo", src.Describe())

	cfg.Source.Type = "github"
	src, err = NewSource(ctx, cfg, "octo/hello")
	require.NoError(t, err)
	assert.Equal(t, "github:octo/hello", src.Describe())

	cfg.Source.Type = "svn"
	_, err = NewSource(ctx, cfg, "x")
	assert.Error(t, err)
}

func TestNewSource_GitHubFromCheckout(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	ctx := context.Background()
	cfg := config.Default()
	cfg.Source.Type = "github"

	checkout := t.TempDir()
	git := func(args ...string) {
		out, err := exec.Command("git", append([]string{"-C", checkout}, args...)...).CombinedOutput()
		require.NoError(t, err, string(out))
	}
	git("init", "-q")

	_, err := NewSource(ctx, cfg, checkout)
	assert.ErrorIs(t, err, errors.ErrInvalidSource)

	git("remote", "add", "origin", "git@github.com:acme/widgets.git")
	src, err := NewSource(ctx, cfg, checkout)
	require.NoError(t, err)
	assert.Equal(t, "github:acme/widgets", src.Describe())

	_, err = NewSource(ctx, cfg, t.TempDir())
	assert.ErrorIs(t, err, errors.ErrInvalidSource)
}
