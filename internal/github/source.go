package github

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/git"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

const (
	perPage = 100

	// lowRateRemaining triggers a warning about the hourly API budget
	lowRateRemaining = 100
)

// Query selects commits of one repository
type Query struct {
	Target   string    // owner/repo slug or remote URL
	MaxCount int       // 0 = unlimited
	Since    time.Time // zero = no lower bound
}

// Source lists commits through the GitHub REST API
type Source struct {
	client      *github.Client
	rateLimiter *rate.Limiter
	workers     int
	logger      *slog.Logger
}

// NewSource creates a GitHub commit source. rateLimit is requests per second.
func NewSource(token string, rateLimit, workers int) *Source {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if rateLimit <= 0 {
		rateLimit = 1
	}
	if workers <= 0 {
		workers = 1
	}

	return &Source{
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
		workers:     workers,
		logger:      slog.Default().With("component", "github"),
	}
}

// ListCommits returns commits of the default branch, most recent first.
// Commit stats come from one detail request per commit, fetched concurrently.
func (s *Source) ListCommits(ctx context.Context, q Query) ([]models.CommitRecord, error) {
	owner, repo, err := git.ParseRepoURL(q.Target)
	if err != nil {
		return nil, errors.InvalidSourcef(err, "invalid GitHub repository %q", q.Target)
	}

	shas, err := s.listSHAs(ctx, owner, repo, q)
	if err != nil {
		return nil, err
	}

	commits := make([]models.CommitRecord, len(shas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, sha := range shas {
		g.Go(func() error {
			rec, err := s.fetchCommit(gctx, owner, repo, sha)
			if err != nil {
				return err
			}
			commits[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("commits extracted", "repo", owner+"/"+repo, "count", len(commits))
	return commits, nil
}

// listSHAs pages through the commit list until MaxCount is reached
func (s *Source) listSHAs(ctx context.Context, owner, repo string, q Query) ([]string, error) {
	opts := &github.CommitsListOptions{
		Since:       q.Since,
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var shas []string
	for {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		page, resp, err := s.client.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			if resp != nil && resp.StatusCode == 404 {
				return nil, errors.InvalidSourcef(err, "repository %s/%s not found", owner, repo)
			}
			// an empty repository answers 409 Conflict
			if resp != nil && resp.StatusCode == 409 {
				return nil, nil
			}
			return nil, errors.ExternalErrorf(err, "list commits of %s/%s", owner, repo)
		}

		for _, c := range page {
			shas = append(shas, c.GetSHA())
			if q.MaxCount > 0 && len(shas) >= q.MaxCount {
				return shas, nil
			}
		}

		s.logRateLimit(resp)

		if resp.NextPage == 0 {
			return shas, nil
		}
		opts.Page = resp.NextPage
	}
}

// fetchCommit fetches one commit with its stats
func (s *Source) fetchCommit(ctx context.Context, owner, repo, sha string) (models.CommitRecord, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return models.CommitRecord{}, fmt.Errorf("rate limiter: %w", err)
	}

	commit, _, err := s.client.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		return models.CommitRecord{}, errors.ExternalErrorf(err, "get commit %s", git.ShortID(sha))
	}

	stats := commit.GetStats()
	return models.CommitRecord{
		ID:           git.ShortID(sha),
		Author:       models.NormalizeText(commit.GetCommit().GetAuthor().GetName()),
		Email:        models.NormalizeText(commit.GetCommit().GetAuthor().GetEmail()),
		Timestamp:    commit.GetCommit().GetCommitter().GetDate().Time,
		Message:      models.NormalizeText(commit.GetCommit().GetMessage()),
		Insertions:   stats.GetAdditions(),
		Deletions:    stats.GetDeletions(),
		FilesChanged: len(commit.Files),
	}, nil
}

func (s *Source) logRateLimit(resp *github.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	if resp.Rate.Remaining < lowRateRemaining {
		s.logger.Warn("GitHub rate limit low", "remaining", resp.Rate.Remaining, "limit", resp.Rate.Limit)
	}
}
