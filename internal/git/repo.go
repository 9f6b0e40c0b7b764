package git

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

var (
	httpsRemote = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/]+)`)
	sshRemote   = regexp.MustCompile(`git@[^:]+:([^/]+)/([^/]+)`)
	gitRemote   = regexp.MustCompile(`git://[^/]+/([^/]+)/([^/]+)`)
	slugRemote  = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)
)

// DetectRepo checks that path is inside a git working tree
func DetectRepo(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = path
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("not a git repository: %w (%s)", err, strings.TrimSpace(string(output)))
	}
	if strings.TrimSpace(string(output)) != "true" {
		return fmt.Errorf("not inside a git working tree")
	}
	return nil
}

// RemoteURL returns the URL of the origin remote
func RemoteURL(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "config", "--get", "remote.origin.url")
	cmd.Dir = path
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("no origin remote: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// ParseRepoURL extracts owner and repo name from a remote URL or an
// owner/repo slug. Supported forms:
//   - HTTPS: https://github.com/owner/repo.git
//   - SSH: git@github.com:owner/repo.git
//   - Git protocol: git://github.com/owner/repo.git
//   - Slug: owner/repo
func ParseRepoURL(remoteURL string) (owner, repo string, err error) {
	remoteURL = strings.TrimSuffix(strings.TrimSpace(remoteURL), ".git")

	for _, re := range []*regexp.Regexp{httpsRemote, sshRemote, gitRemote, slugRemote} {
		if m := re.FindStringSubmatch(remoteURL); len(m) == 3 {
			return m[1], m[2], nil
		}
	}
	return "", "", fmt.Errorf("unrecognized git URL format: %s", remoteURL)
}
