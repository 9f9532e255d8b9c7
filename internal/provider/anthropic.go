package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const defaultAnthropicURL = "https://api.anthropic.com"

type AnthropicProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewAnthropic creates a provider for the Messages API. An empty baseURL
// uses the public endpoint.
func NewAnthropic(apiKey, model, baseURL string) *AnthropicProvider {
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	if baseURL == "" {
		baseURL = defaultAnthropicURL
	}
	return &AnthropicProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (a *AnthropicProvider) Name() string { return "anthropic" }

func (a *AnthropicProvider) ModelName() string { return a.model }

func (a *AnthropicProvider) Models(_ context.Context) ([]string, error) {
	return []string{
		"claude-3-5-haiku-latest",
		"claude-3-5-sonnet-latest",
		"claude-3-7-sonnet-latest",
	}, nil
}

type anthropicRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	System    string         `json:"system,omitempty"`
	Messages  []anthropicMsg `json:"messages"`
	Stream    bool           `json:"stream"`
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicEvent struct {
	Type  string          `json:"type"`
	Delta json.RawMessage `json:"delta,omitempty"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *AnthropicProvider) Chat(ctx context.Context, msgs []Message) (<-chan StreamChunk, error) {
	var systemPrompt string
	var apiMsgs []anthropicMsg
	for _, m := range msgs {
		if m.Role == RoleSystem {
			if systemPrompt != "" {
				systemPrompt += "\n\n"
			}
			systemPrompt += m.Content
			continue
		}
		apiMsgs = append(apiMsgs, anthropicMsg{Role: string(m.Role), Content: m.Content})
	}

	body := anthropicRequest{
		Model: a.model, MaxTokens: 8192, System: systemPrompt,
		Messages: apiMsgs, Stream: true,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &TransportError{Provider: "anthropic", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, newStatusError("anthropic", resp)
	}

	ch := make(chan StreamChunk, 64)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		send := func(c StreamChunk) {
			select {
			case ch <- c:
			case <-ctx.Done():
			}
		}

		usage := &Usage{}
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")
			var evt anthropicEvent
			if err := json.Unmarshal([]byte(data), &evt); err != nil {
				continue
			}
			switch evt.Type {
			case "message_start":
				// input tokens arrive nested under message.usage; the
				// output count comes with message_delta
			case "content_block_delta":
				var delta struct {
					Type     string `json:"type"`
					Text     string `json:"text"`
					Thinking string `json:"thinking"`
				}
				if err := json.Unmarshal(evt.Delta, &delta); err != nil {
					continue
				}
				switch delta.Type {
				case "thinking_delta":
					send(StreamChunk{Thinking: delta.Thinking})
				case "text_delta":
					send(StreamChunk{Delta: delta.Text})
				}
			case "message_delta":
				if evt.Usage != nil {
					usage.OutputTokens = evt.Usage.OutputTokens
					usage.TotalTokens = usage.InputTokens + usage.OutputTokens
				}
			case "error":
				msg := "stream error"
				if evt.Error != nil && evt.Error.Message != "" {
					msg = evt.Error.Message
				}
				send(StreamChunk{Error: fmt.Errorf("anthropic: %s", msg), Done: true})
				return
			case "message_stop":
				send(StreamChunk{Done: true, Usage: usage})
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(StreamChunk{Error: err, Done: true})
			return
		}
		send(StreamChunk{Done: true, Usage: usage})
	}()
	return ch, nil
}
