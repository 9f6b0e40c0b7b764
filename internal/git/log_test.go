package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
)

func runGit(t *testing.T, dir string, env []string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

// newTestRepo creates a repository with three commits one hour apart
func newTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runGit(t, dir, nil, "init", "-q")
	runGit(t, dir, nil, "config", "user.name", "Ada Lovelace")
	runGit(t, dir, nil, "config", "user.email", "ada@example.com")
	runGit(t, dir, nil, "config", "commit.gpgsign", "false")

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	messages := []string{"initial import", "fix the | pipe parser", "this hack is awful\n\nreverting tomorrow"}
	for i, msg := range messages {
		name := filepath.Join(dir, "file.txt")
		content := strings.Repeat("line\n", (i+1)*2)
		require.NoError(t, os.WriteFile(name, []byte(content), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bin.dat"), []byte{0, byte(i), 0, 1}, 0644))

		date := base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339)
		env := []string{"GIT_AUTHOR_DATE=" + date, "GIT_COMMITTER_DATE=" + date}
		runGit(t, dir, env, "add", ".")
		runGit(t, dir, env, "commit", "-q", "-m", msg)
	}
	return dir
}

func TestListCommits(t *testing.T) {
	dir := newTestRepo(t)

	commits, err := NewSource().ListCommits(context.Background(), Query{Path: dir})
	require.NoError(t, err)
	require.Len(t, commits, 3)

	// newest first
	assert.Equal(t, "this hack is awful\n\nreverting tomorrow", commits[0].Message)
	assert.Equal(t, "fix the | pipe parser", commits[1].Message)
	assert.Equal(t, "initial import", commits[2].Message)

	for _, c := range commits {
		assert.Len(t, c.ID, ShortIDLength)
		assert.Equal(t, "Ada Lovelace", c.Author)
		assert.Equal(t, "ada@example.com", c.Email)
		assert.Equal(t, 2, c.FilesChanged)
	}
	assert.True(t, commits[0].Timestamp.Equal(time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)))

	assert.Equal(t, 2, commits[2].Insertions)
	assert.Equal(t, 0, commits[2].Deletions)
	assert.Equal(t, 2, commits[1].Insertions)
}

func TestListCommits_MaxCount(t *testing.T) {
	dir := newTestRepo(t)

	commits, err := NewSource().ListCommits(context.Background(), Query{Path: dir, MaxCount: 2})
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "fix the | pipe parser", commits[1].Message)
}

func TestListCommits_InvalidSource(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	ctx := context.Background()

	_, err := NewSource().ListCommits(ctx, Query{Path: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, errors.ErrInvalidSource)

	_, err = NewSource().ListCommits(ctx, Query{Path: t.TempDir()})
	assert.ErrorIs(t, err, errors.ErrInvalidSource)
}

func TestParseLog(t *testing.T) {
	out := recordSep + "0123456789abcdef" + fieldSep + "Bo" + fieldSep + "bo@x.io" + fieldSep +
		"2024-01-02T03:04:05+02:00" + fieldSep + "subject with " + fieldSep + "\n\nbody line\n" + bodyEnd + "\n" +
		"3\t1\ta.go\n" +
		"-\t-\timg.png\n" +
		"\n" +
		recordSep + "fedcba98" + fieldSep + "Cy" + fieldSep + "cy@x.io" + fieldSep +
		"2024-01-01T00:00:00Z" + fieldSep + "second\n" + bodyEnd + "\n"

	commits, err := parseLog(out)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	assert.Equal(t, "01234567", commits[0].ID)
	assert.Equal(t, "subject with "+fieldSep+"\n\nbody line", commits[0].Message)
	assert.Equal(t, 3, commits[0].Insertions)
	assert.Equal(t, 1, commits[0].Deletions)
	assert.Equal(t, 2, commits[0].FilesChanged)
	assert.Equal(t, "second", commits[1].Message)
	assert.Equal(t, 0, commits[1].Size())
	_, offset := commits[0].Timestamp.Zone()
	assert.Equal(t, 2*3600, offset)

	commits, err = parseLog(recordSep + "0a0b0c0d" + fieldSep + "J\xfcrgen" + fieldSep + "j@x.io" + fieldSep +
		"2024-01-01T00:00:00Z" + fieldSep + "fix windows\r\n\r\ncaf\xe9 body\r\n" + bodyEnd + "\n")
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "J\uFFFDrgen", commits[0].Author)
	assert.Equal(t, "fix windows\n\ncaf\uFFFD body", commits[0].Message)

	_, err = parseLog(recordSep + "abc" + fieldSep + "only two" + bodyEnd)
	assert.Error(t, err)

	_, err = parseLog(recordSep + "abc" + fieldSep + "no terminator")
	assert.Error(t, err)
}

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		in          string
		owner, repo string
		wantErr     bool
	}{
		{"https://github.com/golang/go.git", "golang", "go", false},
		{"git@github.com:spf13/cobra.git", "spf13", "cobra", false},
		{"git://github.com/a/b", "a", "b", false},
		{"octo/hello-world", "octo", "hello-world", false},
		{"not a url", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}
