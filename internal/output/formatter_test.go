package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/burnout"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/pipeline"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/sentiment"
)

func init() {
	color.NoColor = true
}

// buildResult analyzes commits with the default windows. label(i) and
// author(i) pick the verdict and author of the i-th chronological commit.
func buildResult(t *testing.T, n int, label func(i int) models.Label, author func(i int) string) *pipeline.Result {
	t.Helper()
	table := sentiment.DefaultScoreTable()
	base := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC) // a Monday

	commits := make([]models.AnalyzedCommit, n)
	for i := range commits {
		l := label(i)
		commits[i] = models.AnalyzedCommit{
			Commit: models.CommitRecord{
				ID:         fmt.Sprintf("%08d", i),
				Author:     author(i),
				Timestamp:  base.Add(time.Duration(i) * 24 * time.Hour),
				Message:    "msg",
				Insertions: 10,
			},
			Observation: table.Observe(l, 0.9),
		}
	}

	agg := sentiment.NewAggregator(table, sentiment.Options{})
	det := burnout.NewDetector(burnout.DefaultOptions())
	result, err := pipeline.Analyze(agg, det, commits)
	require.NoError(t, err)
	result.Summary.Source = "/repo"
	result.Summary.Backend = "vader"
	return result
}

func calmResult(t *testing.T) *pipeline.Result {
	return buildResult(t, 6,
		func(int) models.Label { return models.LabelJoy },
		func(int) string { return "Ada" })
}

// stressedResult has 5 neutral commits followed by 20 angry ones
func stressedResult(t *testing.T) *pipeline.Result {
	return buildResult(t, 25,
		func(i int) models.Label {
			if i < 5 {
				return models.LabelNeutral
			}
			return models.LabelAnger
		},
		func(i int) string {
			if i%2 == 0 {
				return "Ada"
			}
			return "Bo"
		})
}

func TestBuildJSONReport_ExplicitZeroOptions(t *testing.T) {
	result := buildResult(t, 8,
		func(int) models.Label { return models.LabelJoy },
		func(i int) string {
			if i < 6 {
				return "Ada"
			}
			return "Cy"
		})

	report := BuildJSONReport(result, DefaultOptions())
	require.Len(t, report.TopByActivity, 1)
	assert.Equal(t, "Ada", report.TopByActivity[0].Author)

	report = BuildJSONReport(result, Options{TopN: 0, MinCommits: 0})
	require.Len(t, report.TopByActivity, 2)
	assert.Equal(t, "Cy", report.TopByActivity[1].Author)

	report = BuildJSONReport(result, Options{TopN: 1, MinCommits: 0})
	assert.Len(t, report.TopByPositivity, 1)

	assert.Len(t, BuildRenderData(result, 0).AuthorComparison, 2)
}

func TestQuietFormatter(t *testing.T) {
	tests := []struct {
		name     string
		result   func(t *testing.T) *pipeline.Result
		expected string
	}{
		{
			name:     "calm history",
			result:   calmResult,
			expected: "✅ low burnout risk (0/100) across 6 commits\n",
		},
		{
			name:     "stressed history",
			result:   stressedResult,
			expected: "⚠️  elevated burnout risk (55/100): 6 zones, 2 triggers across 25 commits\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatter := &QuietFormatter{}
			require.NoError(t, formatter.Format(tt.result(t), &buf))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestStandardFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter := &StandardFormatter{Options: Options{TopN: 5, MinCommits: 5, MaxZones: 2}}
	require.NoError(t, formatter.Format(stressedResult(t), &buf))

	output := buf.String()
	expectedStrings := []string{
		"Commit Sentiment Analysis",
		"Source: /repo",
		"Commits analyzed: 25",
		"Negative: 20 (80.0%)",
		"Neutral:  5 (20.0%)",
		"anger     20",
		"Top Authors by Sentiment",
		"Ada: 0.0% positive",
		"Risk: 55/100 (elevated)",
		"- mean sentiment below -0.2",
		"- high-stress ratio above 40%",
		"Potential Burnout Zones Detected",
		"75.0% negative",
		"... and 4 more",
	}
	for _, expected := range expectedStrings {
		assert.Contains(t, output, expected)
	}
	assert.NotContains(t, output, "\x1b[")
}

func TestStandardFormatter_SkipsSmallAuthors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&StandardFormatter{Options: DefaultOptions()}).Format(buildResult(t, 3,
		func(int) models.Label { return models.LabelJoy },
		func(int) string { return "Solo" }), &buf))

	assert.NotContains(t, buf.String(), "Top Authors")
	assert.NotContains(t, buf.String(), "Solo")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(stressedResult(t), &buf))

	var report JSONReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, 55, report.Signal.BurnoutRisk)
	assert.Equal(t, burnout.SeverityElevated, report.Severity)
	assert.Len(t, report.Zones, 6)
	assert.Len(t, report.Triggers, 2)
	assert.Equal(t, 20, report.Distribution[models.LabelAnger])
	assert.InDelta(t, -0.648, report.MeanSentiment, 1e-9)
	require.Len(t, report.TopByActivity, 2)
	assert.Equal(t, "Ada", report.TopByActivity[0].Author)

	buf.Reset()
	require.NoError(t, (&JSONFormatter{}).Format(calmResult(t), &buf))
	assert.Contains(t, buf.String(), `"zones": []`)
	assert.Contains(t, buf.String(), `"triggers": []`)
}

func TestParseVerbosity(t *testing.T) {
	for in, want := range map[string]VerbosityLevel{
		"quiet":    VerbosityQuiet,
		"standard": VerbosityStandard,
		"":         VerbosityStandard,
		"JSON":     VerbosityJSON,
	} {
		got, err := ParseVerbosity(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseVerbosity("xml")
	assert.Error(t, err)

	assert.IsType(t, &QuietFormatter{}, NewFormatter(VerbosityQuiet, Options{}))
	assert.IsType(t, &JSONFormatter{}, NewFormatter(VerbosityJSON, Options{}))
	assert.IsType(t, &StandardFormatter{}, NewFormatter(VerbosityStandard, Options{}))
}

func TestGetDefaultVerbosity(t *testing.T) {
	t.Setenv("GIT_AUTHOR_DATE", "")
	t.Setenv("HEATMAP_JSON", "")
	assert.Equal(t, VerbosityStandard, GetDefaultVerbosity())

	t.Setenv("HEATMAP_JSON", "1")
	assert.Equal(t, VerbosityJSON, GetDefaultVerbosity())

	t.Setenv("GIT_AUTHOR_DATE", "@1700000000 +0000")
	assert.Equal(t, VerbosityQuiet, GetDefaultVerbosity())
}

func TestRenderData(t *testing.T) {
	result := stressedResult(t)
	data := BuildRenderData(result, 5)

	require.Len(t, data.Timeline, 25)
	assert.Nil(t, data.Timeline[18].MovingAverage)
	require.NotNil(t, data.Timeline[19].MovingAverage)
	assert.Equal(t, 20, data.Distribution[models.LabelAnger])
	assert.Contains(t, data.AuthorComparison, "Ada")
	assert.Equal(t, 13, data.AuthorComparison["Ada"].Count)
	assert.NotEmpty(t, data.Heatmap)

	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteRenderData(dir, data)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var back RenderData
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Len(t, back.Timeline, 25)
	assert.Equal(t, 20, back.Window)
}

func TestMarkdownAndHTML(t *testing.T) {
	result := stressedResult(t)
	md := string(Markdown(result, DefaultOptions()))

	assert.True(t, strings.HasPrefix(md, "# Commit Sentiment Report"))
	assert.Contains(t, md, "Risk score: **55/100** (elevated)")
	assert.Contains(t, md, "| Negative | 20 | 80.0% |")
	assert.Contains(t, md, "### Burnout zones")
	assert.Contains(t, md, "`00000000`")
	assert.Contains(t, md, "| Week | Mon |")
	assert.Contains(t, md, "heuristic rubric")

	html := string(HTML([]byte(md)))
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<h1>Commit Sentiment Report</h1>")

	dir := t.TempDir()
	mdPath, htmlPath, err := WriteReport(dir, result, DefaultOptions())
	require.NoError(t, err)
	assert.FileExists(t, mdPath)
	assert.FileExists(t, htmlPath)
}
