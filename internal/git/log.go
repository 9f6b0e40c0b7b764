package git

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// ShortIDLength is the length of the content-derived commit id
const ShortIDLength = 8

const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"
	bodyEnd   = "\x1d"
)

// logFormat emits one record per commit: marker, full hash, author name,
// author email, strict ISO committer date and the raw message, then the
// numstat lines
var logFormat = "--pretty=format:" + recordSep + strings.Join([]string{"%H", "%an", "%ae", "%cI", "%B"}, fieldSep) + bodyEnd

// Query selects commits from a source
type Query struct {
	Path     string
	MaxCount int       // 0 = unlimited
	Since    time.Time // zero = no lower bound
}

// Source lists commits of a local repository with the git CLI
type Source struct {
	logger *slog.Logger
}

// NewSource creates a git CLI commit source
func NewSource() *Source {
	return &Source{logger: slog.Default().With("component", "git")}
}

// ListCommits returns commits reachable from HEAD, most recent first. A path
// that is not a repository fails with ErrInvalidSource.
func (s *Source) ListCommits(ctx context.Context, q Query) ([]models.CommitRecord, error) {
	info, err := os.Stat(q.Path)
	if err != nil || !info.IsDir() {
		return nil, errors.InvalidSourcef(err, "repository path %q does not exist or is not a directory", q.Path)
	}
	if err := DetectRepo(ctx, q.Path); err != nil {
		return nil, errors.InvalidSourcef(err, "%q is not a git repository", q.Path)
	}

	args := []string{"log", "--numstat", "--no-color", logFormat}
	if q.MaxCount > 0 {
		args = append(args, fmt.Sprintf("--max-count=%d", q.MaxCount))
	}
	if !q.Since.IsZero() {
		args = append(args, "--since="+q.Since.Format(time.RFC3339))
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = q.Path
	output, err := cmd.Output()
	if err != nil {
		// an empty repository has no HEAD to walk
		if exitErr, ok := err.(*exec.ExitError); ok && strings.Contains(string(exitErr.Stderr), "does not have any commits") {
			return nil, nil
		}
		return nil, errors.InvalidSourcef(err, "git log failed in %q", q.Path)
	}

	commits, err := parseLog(string(output))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("commits extracted", "path", q.Path, "count", len(commits))
	return commits, nil
}

// parseLog parses git log output produced with logFormat and --numstat
func parseLog(output string) ([]models.CommitRecord, error) {
	var commits []models.CommitRecord

	for _, chunk := range strings.Split(output, recordSep) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		header, stats, found := strings.Cut(chunk, bodyEnd)
		if !found {
			return nil, fmt.Errorf("unterminated git log record: %q", chunk)
		}
		rec, err := parseHeader(header)
		if err != nil {
			return nil, err
		}

		scanner := bufio.NewScanner(strings.NewReader(stats))
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			// numstat line: additions<TAB>deletions<TAB>path; binary files use "-"
			fields := strings.SplitN(scanner.Text(), "\t", 3)
			if len(fields) != 3 {
				continue
			}
			rec.FilesChanged++
			if fields[0] == "-" || fields[1] == "-" {
				continue
			}
			additions, _ := strconv.Atoi(fields[0])
			deletions, _ := strconv.Atoi(fields[1])
			rec.Insertions += additions
			rec.Deletions += deletions
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scanning numstat of %s: %w", rec.ID, err)
		}

		commits = append(commits, rec)
	}
	return commits, nil
}

func parseHeader(header string) (models.CommitRecord, error) {
	parts := strings.SplitN(header, fieldSep, 5)
	if len(parts) != 5 {
		return models.CommitRecord{}, fmt.Errorf("malformed git log header: %q", header)
	}

	ts, err := time.Parse(time.RFC3339, parts[3])
	if err != nil {
		return models.CommitRecord{}, fmt.Errorf("invalid commit date %q: %w", parts[3], err)
	}

	return models.CommitRecord{
		ID:        ShortID(parts[0]),
		Author:    models.NormalizeText(parts[1]),
		Email:     models.NormalizeText(parts[2]),
		Timestamp: ts,
		Message:   strings.TrimRight(models.NormalizeText(parts[4]), "\n"),
	}, nil
}

// ShortID truncates a full hash to ShortIDLength characters
func ShortID(hash string) string {
	if len(hash) > ShortIDLength {
		return hash[:ShortIDLength]
	}
	return hash
}
