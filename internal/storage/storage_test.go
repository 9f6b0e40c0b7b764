package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/config"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sampleCommits() []models.AnalyzedCommit {
	plus2 := time.FixedZone("", 2*3600)
	return []models.AnalyzedCommit{
		{
			Commit: models.CommitRecord{
				ID:         "a1b2c3d4",
				Author:     "Ada",
				Email:      "ada@example.com",
				Timestamp:  time.Date(2024, 2, 3, 23, 15, 7, 123456789, plus2),
				Message:    "fix: handle \"quoted\", commas\nand newlines",
				Insertions: 12,
				Deletions:  3,
			},
			Observation: models.SentimentObservation{
				Label:      models.LabelAnger,
				Confidence: 0.1 + 0.2,
				Score:      -0.9 * (0.1 + 0.2),
			},
		},
		{
			Commit: models.CommitRecord{
				ID:        "e5f6a7b8",
				Author:    "Bo",
				Timestamp: time.Date(2024, 2, 4, 9, 0, 0, 0, time.UTC),
			},
			Observation: models.NeutralPlaceholder(),
		},
	}
}

// legacyTextCommits carries messages from CRLF editors and non-UTF-8 commit
// encodings, normalized the way the commit sources build them
func legacyTextCommits() []models.AnalyzedCommit {
	var out []models.AnalyzedCommit
	for i, raw := range []string{"fix windows\r\n\r\nbody line\r", "caf\xe9 fix", "mixed\r\r\nend"} {
		out = append(out, models.AnalyzedCommit{
			Commit: models.CommitRecord{
				ID:        fmt.Sprintf("c0ffee0%d", i),
				Author:    models.NormalizeText("Jos\xe9"),
				Timestamp: time.Date(2024, 2, 5, 10, i, 0, 0, time.UTC),
				Message:   models.NormalizeText(raw),
			},
			Observation: models.NeutralPlaceholder(),
		})
	}
	return out
}

func exportAll(commits []models.AnalyzedCommit) []models.ExportRecord {
	records := make([]models.ExportRecord, len(commits))
	for i, c := range commits {
		records[i] = c.ToExport()
	}
	return records
}

func importAll(records []models.ExportRecord) []models.AnalyzedCommit {
	commits := make([]models.AnalyzedCommit, len(records))
	for i, r := range records {
		commits[i] = models.FromExport(r)
	}
	return commits
}

func assertSameCommits(t *testing.T, want, got []models.AnalyzedCommit) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		assert.True(t, w.Commit.Timestamp.Equal(g.Commit.Timestamp), "timestamp %d", i)
		_, wOff := w.Commit.Timestamp.Zone()
		_, gOff := g.Commit.Timestamp.Zone()
		assert.Equal(t, wOff, gOff, "zone offset %d", i)

		w.Commit.Timestamp, g.Commit.Timestamp = time.Time{}, time.Time{}
		w.Observation.Placeholder = false
		assert.Equal(t, w, g)
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	commits := append(sampleCommits(), legacyTextCommits()...)
	records := exportAll(commits)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))
	assert.True(t, strings.HasPrefix(buf.String(), strings.Join(models.ExportColumns, ",")+"\n"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assertSameCommits(t, commits, importAll(got))
}

func TestReadCSV_ReorderedColumns(t *testing.T) {
	in := "sentiment_score,label,confidence,id,author,email,timestamp,message,insertions,deletions\n" +
		"0.56,joy,0.7,abc12345,Cy,,2024-01-01T00:00:00Z,ship it,1,2\n"
	got, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "abc12345", got[0].ID)
	assert.Equal(t, 0.56, got[0].SentimentScore)
	assert.Equal(t, models.LabelJoy, got[0].Label)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("id,author\nx,y\n"))
	assert.ErrorContains(t, err, "missing column")

	header := strings.Join(models.ExportColumns, ",") + "\n"
	_, err = ReadCSV(strings.NewReader(header + "a,b,c,not-a-time,m,1,2,joy,0.5,0.4\n"))
	assert.ErrorContains(t, err, "timestamp")

	got, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestJSONL_RoundTrip(t *testing.T) {
	commits := append(sampleCommits(), legacyTextCommits()...)
	records := exportAll(commits)

	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, records))
	assert.Equal(t, len(commits), strings.Count(buf.String(), "\n"))

	got, err := ReadJSONL(strings.NewReader(buf.String() + "\n\n"))
	require.NoError(t, err)
	assertSameCommits(t, commits, importAll(got))

	_, err = ReadJSONL(strings.NewReader("{broken\n"))
	assert.Error(t, err)
}

func testConfig(t *testing.T, format string) *config.Config {
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")
	cfg.Output.Export = format
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "db", "commits.db")
	return cfg
}

func TestExportImport_Files(t *testing.T) {
	ctx := context.Background()
	for _, format := range []string{FormatCSV, FormatJSONL} {
		t.Run(format, func(t *testing.T) {
			cfg := testConfig(t, format)
			commits := sampleCommits()

			path, err := NewExporter(cfg, quietLogger()).Export(ctx, commits)
			require.NoError(t, err)
			assert.Equal(t, cfg.Output.Dir, filepath.Dir(path))

			back, err := Import(ctx, cfg, path, quietLogger())
			require.NoError(t, err)
			assertSameCommits(t, commits, back)
		})
	}
}

func TestExportImport_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, FormatSQL)
	commits := sampleCommits()
	exporter := NewExporter(cfg, quietLogger())

	first, err := exporter.Export(ctx, commits)
	require.NoError(t, err)
	second, err := exporter.Export(ctx, commits[:1])
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	back, err := Import(ctx, cfg, first, quietLogger())
	require.NoError(t, err)
	assertSameCommits(t, commits, back)

	latest, err := Import(ctx, cfg, LatestRun, quietLogger())
	require.NoError(t, err)
	assert.Len(t, latest, 1)

	store, err := OpenSQL(ctx, cfg.Storage, quietLogger())
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{second, first}, runs)

	_, err = store.LoadRun(ctx, "no-such-run")
	assert.Error(t, err)
}

func TestLoadRun_EmptyDatabase(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, FormatSQL)

	store, err := OpenSQL(ctx, cfg.Storage, quietLogger())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.LoadRun(ctx, LatestRun)
	assert.ErrorIs(t, err, errors.ErrEmptyInput)
}

func TestExport_UnknownFormat(t *testing.T) {
	cfg := testConfig(t, "parquet")
	_, err := NewExporter(cfg, quietLogger()).Export(context.Background(), sampleCommits())
	assert.Error(t, err)
}
