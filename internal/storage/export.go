package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/config"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// Export formats
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
	FormatSQL   = "sql"
)

// Default export file names inside the output directory
const (
	CSVFileName   = "commits.csv"
	JSONLFileName = "commits.jsonl"
)

// Exporter writes analyzed commits in the configured format
type Exporter struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewExporter creates an exporter
func NewExporter(cfg *config.Config, logger *logrus.Logger) *Exporter {
	return &Exporter{cfg: cfg, logger: logger}
}

// Export writes one row per commit and returns where the data went: a file
// path for csv/jsonl, the run id for sql
func (e *Exporter) Export(ctx context.Context, commits []models.AnalyzedCommit) (string, error) {
	records := make([]models.ExportRecord, len(commits))
	for i, c := range commits {
		records[i] = c.ToExport()
	}

	format := e.cfg.Output.Export
	switch format {
	case FormatCSV, "":
		return e.writeFile(filepath.Join(e.cfg.Output.Dir, CSVFileName), records, WriteCSV)
	case FormatJSONL:
		return e.writeFile(filepath.Join(e.cfg.Output.Dir, JSONLFileName), records, WriteJSONL)
	case FormatSQL:
		store, err := OpenSQL(ctx, e.cfg.Storage, e.logger)
		if err != nil {
			return "", err
		}
		defer store.Close()
		return store.SaveRun(ctx, records)
	default:
		return "", errors.ConfigErrorf("unknown export format %q", format)
	}
}

func (e *Exporter) writeFile(path string, records []models.ExportRecord, write func(w io.Writer, records []models.ExportRecord) error) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.StorageErrorf(err, "create output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return "", errors.StorageErrorf(err, "create %s", path)
	}
	if err := write(f, records); err != nil {
		f.Close()
		return "", errors.StorageErrorf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.StorageErrorf(err, "close %s", path)
	}

	e.logger.WithFields(logrus.Fields{
		"path":    path,
		"records": len(records),
	}).Info("Export written")
	return path, nil
}

// Import reads an export back. ".csv" and ".jsonl" files are parsed
// directly; anything else is opened with the configured SQL storage and
// source names a run id, or "latest".
func Import(ctx context.Context, cfg *config.Config, source string, logger *logrus.Logger) ([]models.AnalyzedCommit, error) {
	var (
		records []models.ExportRecord
		err     error
	)

	switch strings.ToLower(filepath.Ext(source)) {
	case ".csv":
		records, err = readFile(source, ReadCSV)
	case ".jsonl", ".ndjson":
		records, err = readFile(source, ReadJSONL)
	default:
		var store *SQLStore
		store, err = OpenSQL(ctx, cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		records, err = store.LoadRun(ctx, source)
	}
	if err != nil {
		return nil, err
	}

	commits := make([]models.AnalyzedCommit, len(records))
	for i, r := range records {
		commits[i] = models.FromExport(r)
	}
	return commits, nil
}

func readFile(path string, read func(r io.Reader) ([]models.ExportRecord, error)) ([]models.ExportRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.StorageErrorf(err, "open %s", path)
	}
	defer f.Close()

	records, err := read(f)
	if err != nil {
		return nil, errors.StorageErrorf(err, "read %s", path)
	}
	return records, nil
}

func columnError(line int, column string, err error) error {
	return fmt.Errorf("line %d: column %s: %w", line, column, err)
}
