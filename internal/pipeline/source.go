package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/config"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/git"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/github"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// Source yields the commits to analyze, most recent first
type Source interface {
	Fetch(ctx context.Context) ([]models.CommitRecord, error)
	Describe() string
}

type gitSource struct {
	src   *git.Source
	query git.Query
}

func (s gitSource) Fetch(ctx context.Context) ([]models.CommitRecord, error) {
	return s.src.ListCommits(ctx, s.query)
}

func (s gitSource) Describe() string { return s.query.Path }

type githubSource struct {
	src   *github.Source
	query github.Query
}

func (s githubSource) Fetch(ctx context.Context) ([]models.CommitRecord, error) {
	return s.src.ListCommits(ctx, s.query)
}

func (s githubSource) Describe() string { return "github:" + s.query.Target }

// NewSource builds the configured commit source for target, a local path for
// "git" or an owner/repo slug for "github". A "github" target that names a
// local checkout (or is empty) resolves to the slug of its origin remote.
func NewSource(ctx context.Context, cfg *config.Config, target string) (Source, error) {
	var since time.Time
	if cfg.Source.Days > 0 {
		since = time.Now().AddDate(0, 0, -cfg.Source.Days)
	}

	switch cfg.Source.Type {
	case "git", "":
		return gitSource{
			src:   git.NewSource(),
			query: git.Query{Path: target, MaxCount: cfg.Source.MaxCommits, Since: since},
		}, nil
	case "github":
		slug, err := githubTarget(ctx, target)
		if err != nil {
			return nil, err
		}
		return githubSource{
			src:   github.NewSource(cfg.GitHub.Token, cfg.GitHub.RateLimit, cfg.GitHub.Workers),
			query: github.Query{Target: slug, MaxCount: cfg.Source.MaxCommits, Since: since},
		}, nil
	default:
		return nil, errors.ConfigErrorf("unknown source type %q", cfg.Source.Type)
	}
}

func githubTarget(ctx context.Context, target string) (string, error) {
	if target == "" {
		target = "."
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		return target, nil
	}

	remote, err := git.RemoteURL(ctx, target)
	if err != nil {
		return "", errors.InvalidSourcef(err, "cannot infer GitHub repository for %s", target)
	}
	owner, repo, err := git.ParseRepoURL(remote)
	if err != nil {
		return "", errors.InvalidSourcef(err, "origin remote of %s", target)
	}
	return owner + "/" + repo, nil
}
