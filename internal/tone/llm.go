package tone

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jeanpaul/tonepad/internal/provider"
)

const systemPrompt = `You rewrite text in a requested tone.
Keep the meaning, facts, names and language of the original.
Reply with the rewritten text only: no preamble, no quotes, no commentary.`

var formalityHints = map[Formality]string{
	Formal: "Use a formal, professional register. Avoid slang and contractions.",
	Casual: "Use a casual, friendly register, as if writing to a colleague you know well.",
}

var verbosityHints = map[Verbosity]string{
	Concise:   "Make it as short as possible without losing information.",
	Elaborate: "Expand it with more detail and smoother transitions, without inventing facts.",
}

// LLMTransformer rewrites text through a chat model.
type LLMTransformer struct {
	p       provider.Provider
	timeout time.Duration
}

// NewLLM wraps p. A zero timeout leaves the deadline to ctx.
func NewLLM(p provider.Provider, timeout time.Duration) *LLMTransformer {
	return &LLMTransformer{p: p, timeout: timeout}
}

func (l *LLMTransformer) Adjust(ctx context.Context, text string, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", &Error{Message: err.Error(), Err: err}
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	msgs := []provider.Message{
		{Role: provider.RoleSystem, Content: systemPrompt},
		{Role: provider.RoleUser, Content: buildPrompt(text, opts)},
	}

	ch, err := l.p.Chat(ctx, msgs)
	if err != nil {
		te := &Error{Message: err.Error(), Err: err}
		var se *provider.StatusError
		if errors.As(err, &se) {
			te.Status = se.Code
		}
		return "", te
	}
	out, err := provider.Collect(ctx, ch)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", &Error{Message: "request cancelled", Err: err}
		}
		return "", &Error{Message: fmt.Sprintf("%s: %s", l.p.Name(), provider.FriendlyError(err)), Err: err}
	}

	out = cleanAnswer(out)
	if out == "" {
		return text, nil
	}
	return out, nil
}

func buildPrompt(text string, opts Options) string {
	var b strings.Builder
	b.WriteString(formalityHints[opts.Formality])
	b.WriteString("\n")
	b.WriteString(verbosityHints[opts.Verbosity])
	b.WriteString("\n\nText:\n")
	b.WriteString(text)
	return b.String()
}

// cleanAnswer strips a wrapping code fence or pair of quotes that models
// tend to add despite instructions.
func cleanAnswer(s string) string {
	s = stripFence(strings.TrimSpace(s))
	for _, q := range [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}} {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			inner := s[len(q[0]) : len(s)-len(q[1])]
			if !strings.Contains(inner, q[0]) && !strings.Contains(inner, q[1]) {
				s = strings.TrimSpace(inner)
			}
			break
		}
	}
	return s
}

var fenceTag = regexp.MustCompile(`^[A-Za-z0-9_+.-]+$`)

// stripFence unwraps s when it is one code fence. The first line is only
// treated as a language tag when it looks like one and the closing fence
// sits on its own line; otherwise it is text and is kept.
func stripFence(s string) string {
	if len(s) < 6 || !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") {
		return s
	}
	inner := s[3 : len(s)-3]
	nl := strings.IndexByte(inner, '\n')
	if nl == -1 {
		return strings.TrimSpace(inner)
	}
	tag := strings.TrimRight(inner[:nl], " \t\r")
	body := inner[nl+1:]
	if fenceTag.MatchString(tag) && strings.HasSuffix(strings.TrimRight(body, " \t"), "\n") {
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(inner)
}
