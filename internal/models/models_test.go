package models

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain subject", "plain subject"},
		{"fix windows\r\n\r\nbody line\r", "fix windows\n\nbody line\r"},
		{"mixed\r\r\nend", "mixed\nend"},
		{"caf\xe9 fix", "caf� fix"},
		{"bad\xff\xfebytes", "bad�bytes"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := NormalizeText(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.NotContains(t, got, "\r\n")
			assert.Equal(t, got, NormalizeText(got))
		})
	}
}

func TestExportRoundTripKeepsRecord(t *testing.T) {
	a := AnalyzedCommit{
		Commit:      CommitRecord{ID: "a1b2c3d4", Author: "Ada", Message: "ship it", Insertions: 4, Deletions: 1},
		Observation: SentimentObservation{Label: LabelJoy, Confidence: 0.5, Score: 0.4},
	}
	back := FromExport(a.ToExport())
	assert.Equal(t, a.Commit.Message, back.Commit.Message)
	assert.Equal(t, a.Observation.Score, back.Observation.Score)
	assert.Equal(t, 5, back.Commit.Size())
}
