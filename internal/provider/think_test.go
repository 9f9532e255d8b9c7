package provider

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThinkSplitter(t *testing.T) {
	tests := []struct {
		name      string
		deltas    []string
		answer    string
		reasoning string
	}{
		{"plain", []string{"hello ", "world"}, "hello world", ""},
		{"whole tags", []string{"<think>hmm</think>done"}, "done", "hmm"},
		{"split open tag", []string{"<th", "ink>a</think>b"}, "b", "a"},
		{"split close tag", []string{"<think>a</", "think>b"}, "b", "a"},
		{"lookalike", []string{"a <thin", "g> b"}, "a <thing> b", ""},
		{"unterminated", []string{"<think>still going"}, "", "still going"},
		{"trailing partial", []string{"x <thi"}, "x <thi", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s thinkSplitter
			var answer, reasoning strings.Builder
			for _, d := range tt.deltas {
				a, r := s.feed(d)
				answer.WriteString(a)
				reasoning.WriteString(r)
			}
			a, r := s.flush()
			answer.WriteString(a)
			reasoning.WriteString(r)

			assert.Equal(t, tt.answer, answer.String())
			assert.Equal(t, tt.reasoning, reasoning.String())
		})
	}
}

func TestPartialSuffix(t *testing.T) {
	assert.Equal(t, 0, partialSuffix("abc", thinkOpen))
	assert.Equal(t, 1, partialSuffix("abc<", thinkOpen))
	assert.Equal(t, 6, partialSuffix("<think", thinkOpen))
	assert.Equal(t, 0, partialSuffix("<think>", thinkOpen))
	assert.Equal(t, 2, partialSuffix("x</", thinkClose))
}
