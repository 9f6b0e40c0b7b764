package sentiment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the classifier input limit, in characters
const MaxMessageLength = 512

var (
	conventionalPrefix = regexp.MustCompile(`^(feat|fix|docs|style|refactor|test|chore)(\(.+?\))?:\s*`)
	issueRef           = regexp.MustCompile(`#\d+`)
	bracketTag         = regexp.MustCompile(`\[.*?\]`)
)

// PrepareMessage reduces a commit message to classifier input: the first line,
// trimmed and truncated to MaxMessageLength characters. ok is false when
// nothing but whitespace remains.
func PrepareMessage(msg string) (string, bool) {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", false
	}
	return truncate(msg, MaxMessageLength), true
}

// CleanMessage strips a conventional-commit prefix, issue references and
// bracketed tags from an already prepared first line.
func CleanMessage(line string) string {
	line = conventionalPrefix.ReplaceAllString(line, "")
	line = issueRef.ReplaceAllString(line, "")
	line = bracketTag.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
