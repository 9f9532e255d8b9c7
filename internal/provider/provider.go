package provider

import (
	"context"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type StreamChunk struct {
	Delta    string
	Thinking string // Model's internal reasoning/chain-of-thought
	Done     bool
	Error    error
	Usage    *Usage
}

type Provider interface {
	Chat(ctx context.Context, msgs []Message) (<-chan StreamChunk, error)
	Name() string
	ModelName() string
	Models(ctx context.Context) ([]string, error)
}

// Collect drains a stream into the answer text. Thinking is discarded.
// The first stream error stops collection.
func Collect(ctx context.Context, ch <-chan StreamChunk) (string, error) {
	var b strings.Builder
	for {
		select {
		case <-ctx.Done():
			return b.String(), ctx.Err()
		case chunk, ok := <-ch:
			if !ok {
				return b.String(), nil
			}
			if chunk.Error != nil {
				return b.String(), chunk.Error
			}
			b.WriteString(chunk.Delta)
			if chunk.Done {
				return b.String(), nil
			}
		}
	}
}
