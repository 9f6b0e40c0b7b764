package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/config"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// LatestRun selects the most recently saved run in LoadRun
const LatestRun = "latest"

// TableName is the export table
const TableName = "commit_sentiment"

// createdAtLayout is fixed width so run creation times sort as text
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// SQLStore keeps export runs in SQLite or PostgreSQL. Every run gets a uuid
// and its rows keep the flat export columns.
type SQLStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// row is the database shape of an export record. Timestamps are stored as
// RFC 3339 text so the original zone offset survives both drivers.
type row struct {
	RunID          string  `db:"run_id"`
	Position       int     `db:"position"`
	ID             string  `db:"id"`
	Author         string  `db:"author"`
	Email          string  `db:"email"`
	Timestamp      string  `db:"timestamp"`
	Message        string  `db:"message"`
	Insertions     int     `db:"insertions"`
	Deletions      int     `db:"deletions"`
	Label          string  `db:"label"`
	Confidence     float64 `db:"confidence"`
	SentimentScore float64 `db:"sentiment_score"`
	CreatedAt      string  `db:"created_at"`
}

// OpenSQL connects to the configured driver and ensures the schema exists
func OpenSQL(ctx context.Context, cfg config.StorageConfig, logger *logrus.Logger) (*SQLStore, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite", "":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, errors.StorageErrorf(err, "create database directory")
			}
		}
		db, err = sqlx.ConnectContext(ctx, "sqlite3", cfg.SQLitePath)
		if err == nil {
			db.SetMaxOpenConns(1)
		}
	case "postgres":
		db, err = sqlx.ConnectContext(ctx, "pgx", cfg.PostgresDSN)
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(2)
			db.SetConnMaxLifetime(5 * time.Minute)
		}
	default:
		return nil, errors.ConfigErrorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, errors.StorageErrorf(err, "connect to %s", cfg.Driver)
	}

	store := &SQLStore{db: db, logger: logger}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, errors.StorageErrorf(err, "init schema")
	}
	return store, nil
}

func (s *SQLStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + TableName + ` (
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			author TEXT NOT NULL,
			email TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			message TEXT NOT NULL,
			insertions INTEGER NOT NULL,
			deletions INTEGER NOT NULL,
			label TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			sentiment_score DOUBLE PRECISION NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + TableName + `_created ON ` + TableName + `(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// SaveRun stores records under a new run id and returns it
func (s *SQLStore) SaveRun(ctx context.Context, records []models.ExportRecord) (string, error) {
	runID := uuid.New().String()
	createdAt := time.Now().UTC().Format(createdAtLayout)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", errors.StorageErrorf(err, "begin transaction")
	}
	defer tx.Rollback()

	query := `
		INSERT INTO ` + TableName + `
		(run_id, position, id, author, email, timestamp, message,
		 insertions, deletions, label, confidence, sentiment_score, created_at)
		VALUES (:run_id, :position, :id, :author, :email, :timestamp, :message,
		 :insertions, :deletions, :label, :confidence, :sentiment_score, :created_at)
	`
	for i, r := range records {
		_, err := tx.NamedExecContext(ctx, query, row{
			RunID:          runID,
			Position:       i,
			ID:             r.ID,
			Author:         r.Author,
			Email:          r.Email,
			Timestamp:      r.Timestamp.Format(time.RFC3339Nano),
			Message:        r.Message,
			Insertions:     r.Insertions,
			Deletions:      r.Deletions,
			Label:          string(r.Label),
			Confidence:     r.Confidence,
			SentimentScore: r.SentimentScore,
			CreatedAt:      createdAt,
		})
		if err != nil {
			return "", errors.StorageErrorf(err, "insert commit %s", r.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.StorageErrorf(err, "commit transaction")
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":  runID,
		"records": len(records),
	}).Info("Export run saved")
	return runID, nil
}

// LoadRun returns the records of a run in their saved order. runID may be
// LatestRun.
func (s *SQLStore) LoadRun(ctx context.Context, runID string) ([]models.ExportRecord, error) {
	if runID == LatestRun || runID == "" {
		latest, err := s.latestRunID(ctx)
		if err != nil {
			return nil, err
		}
		runID = latest
	}

	var rows []row
	query := s.db.Rebind(`SELECT * FROM ` + TableName + ` WHERE run_id = ? ORDER BY position`)
	if err := s.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, errors.StorageErrorf(err, "load run %s", runID)
	}
	if len(rows) == 0 {
		return nil, errors.StorageErrorf(sql.ErrNoRows, "run %s not found", runID)
	}

	records := make([]models.ExportRecord, len(rows))
	for i, r := range rows {
		ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
		if err != nil {
			return nil, errors.StorageErrorf(err, "run %s row %d", runID, r.Position)
		}
		records[i] = models.ExportRecord{
			ID:             r.ID,
			Author:         r.Author,
			Email:          r.Email,
			Timestamp:      ts,
			Message:        r.Message,
			Insertions:     r.Insertions,
			Deletions:      r.Deletions,
			Label:          models.Label(r.Label),
			Confidence:     r.Confidence,
			SentimentScore: r.SentimentScore,
		}
	}
	return records, nil
}

// Runs lists run ids, newest first
func (s *SQLStore) Runs(ctx context.Context) ([]string, error) {
	var ids []string
	query := `SELECT run_id FROM ` + TableName + ` GROUP BY run_id ORDER BY MAX(created_at) DESC`
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, errors.StorageErrorf(err, "list runs")
	}
	return ids, nil
}

func (s *SQLStore) latestRunID(ctx context.Context) (string, error) {
	ids, err := s.Runs(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errors.EmptyInputf("no export runs stored in %s", TableName)
	}
	return ids[0], nil
}
