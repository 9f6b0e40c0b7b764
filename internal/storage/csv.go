package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// WriteCSV writes a header row followed by one row per record. Timestamps
// use RFC 3339 with nanoseconds and floats the shortest exact form, so
// ReadCSV restores every value.
func WriteCSV(w io.Writer, records []models.ExportRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(models.ExportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ID,
			r.Author,
			r.Email,
			r.Timestamp.Format(time.RFC3339Nano),
			r.Message,
			strconv.Itoa(r.Insertions),
			strconv.Itoa(r.Deletions),
			string(r.Label),
			strconv.FormatFloat(r.Confidence, 'g', -1, 64),
			strconv.FormatFloat(r.SentimentScore, 'g', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", r.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSV parses a file written by WriteCSV. Columns are located by header
// name so reordered files still load.
func ReadCSV(r io.Reader) ([]models.ExportRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range models.ExportColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var records []models.ExportRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		get := func(col string) string {
			if i := index[col]; i < len(row) {
				return row[i]
			}
			return ""
		}

		rec, err := parseRecord(line, get)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseRecord converts the textual columns of one row
func parseRecord(line int, get func(col string) string) (models.ExportRecord, error) {
	rec := models.ExportRecord{
		ID:      get("id"),
		Author:  get("author"),
		Email:   get("email"),
		Message: get("message"),
		Label:   models.Label(get("label")),
	}

	var err error
	if rec.Timestamp, err = time.Parse(time.RFC3339Nano, get("timestamp")); err != nil {
		return rec, columnError(line, "timestamp", err)
	}
	if rec.Insertions, err = strconv.Atoi(get("insertions")); err != nil {
		return rec, columnError(line, "insertions", err)
	}
	if rec.Deletions, err = strconv.Atoi(get("deletions")); err != nil {
		return rec, columnError(line, "deletions", err)
	}
	if rec.Confidence, err = strconv.ParseFloat(get("confidence"), 64); err != nil {
		return rec, columnError(line, "confidence", err)
	}
	if rec.SentimentScore, err = strconv.ParseFloat(get("sentiment_score"), 64); err != nil {
		return rec, columnError(line, "sentiment_score", err)
	}
	return rec, nil
}
