package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// WriteJSONL writes one JSON object per line
func WriteJSONL(w io.Writer, records []models.ExportRecord) error {
	buf := bufio.NewWriter(w)
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	for _, r := range records {
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("encode %s: %w", r.ID, err)
		}
	}
	return buf.Flush()
}

// ReadJSONL parses a file written by WriteJSONL. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]models.ExportRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []models.ExportRecord
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec models.ExportRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
