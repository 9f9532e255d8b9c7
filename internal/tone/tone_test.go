package tone

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/tonepad/internal/config"
	"github.com/jeanpaul/tonepad/internal/provider"
)

func TestParse(t *testing.T) {
	f, err := ParseFormality(" Formal ")
	require.NoError(t, err)
	assert.Equal(t, Formal, f)

	v, err := ParseVerbosity("elaborate")
	require.NoError(t, err)
	assert.Equal(t, Elaborate, v)

	_, err = ParseFormality("stiff")
	assert.Error(t, err)
	_, err = ParseVerbosity("")
	assert.Error(t, err)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, Options{Casual, Concise}.Validate())
	assert.Error(t, Options{Formality: "loud", Verbosity: Concise}.Validate())
	assert.Error(t, Options{Formality: Formal}.Validate())
}

func TestQuadrants(t *testing.T) {
	require.Len(t, Quadrants, 4)
	ids := make([]string, len(Quadrants))
	for i, q := range Quadrants {
		ids[i] = q.ID
		assert.Equal(t, q.ID, q.Options.String())
		assert.NoError(t, q.Options.Validate())
	}
	assert.Equal(t, []string{"formal_concise", "formal_elaborate", "casual_concise", "casual_elaborate"}, ids)

	q, ok := QuadrantByID("Casual-Elaborate")
	require.True(t, ok)
	assert.Equal(t, Options{Casual, Elaborate}, q.Options)

	_, ok = QuadrantByID("sarcastic")
	assert.False(t, ok)
}

func TestHTTPTransformerSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/adjust-tone", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req adjustRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hey, can u send it", req.Text)
		assert.Equal(t, Options{Formal, Concise}, req.Tone)

		w.Write([]byte(`{"result":"Could you please send it?"}`))
	}))
	defer srv.Close()

	out, err := NewHTTP(srv.URL+"/", "", time.Second).Adjust(context.Background(), "hey, can u send it", Options{Formal, Concise})
	require.NoError(t, err)
	assert.Equal(t, "Could you please send it?", out)
}

func TestHTTPTransformerRequestBodyShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, map[string]any{
			"text": "x",
			"tone": map[string]any{"formality": "casual", "verbosity": "elaborate"},
		}, raw)
		w.Write([]byte(`{"result":"y"}`))
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, "", 0).Adjust(context.Background(), "x", Options{Casual, Elaborate})
	require.NoError(t, err)
}

func TestHTTPTransformerEmptyResultKeepsText(t *testing.T) {
	for _, body := range []string{`{}`, `{"result":""}`, `{"result":null}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		out, err := NewHTTP(srv.URL, "", time.Second).Adjust(context.Background(), "same", Options{Formal, Concise})
		srv.Close()
		require.NoError(t, err, body)
		assert.Equal(t, "same", out, body)
	}
}

func TestHTTPTransformerErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error field", 400, `{"error":"Text too long"}`, "Text too long"},
		{"no error field", 500, `{"detail":"x"}`, "Request failed (500)"},
		{"not json", 502, `<html>bad gateway</html>`, "Request failed (502)"},
		{"ok but garbage", 200, `not json`, "invalid response from tone service"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTP(srv.URL, "", time.Second).Adjust(context.Background(), "x", Options{Formal, Concise})
			require.Error(t, err)
			assert.EqualError(t, err, tt.want)

			var te *Error
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.status, te.Status)
		})
	}
}

func TestHTTPTransformerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTP(url, "", time.Second).Adjust(context.Background(), "x", Options{Formal, Concise})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.Status)
}

func TestHTTPTransformerTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTP(srv.URL, "", 50*time.Millisecond).Adjust(context.Background(), "x", Options{Formal, Concise})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

// stubProvider replays canned deltas.
type stubProvider struct {
	deltas []string
	err    error
	got    []provider.Message
}

func (s *stubProvider) Chat(_ context.Context, msgs []provider.Message) (<-chan provider.StreamChunk, error) {
	s.got = msgs
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan provider.StreamChunk, len(s.deltas)+1)
	for _, d := range s.deltas {
		ch <- provider.StreamChunk{Delta: d}
	}
	ch <- provider.StreamChunk{Done: true}
	close(ch)
	return ch, nil
}

func (s *stubProvider) Name() string      { return "stub" }
func (s *stubProvider) ModelName() string { return "stub-1" }
func (s *stubProvider) Models(context.Context) ([]string, error) {
	return []string{"stub-1"}, nil
}

func TestLLMTransformer(t *testing.T) {
	p := &stubProvider{deltas: []string{"```\n", "Dear team,", "\n```"}}
	out, err := NewLLM(p, time.Second).Adjust(context.Background(), "yo team", Options{Formal, Elaborate})
	require.NoError(t, err)
	assert.Equal(t, "Dear team,", out)

	require.Len(t, p.got, 2)
	assert.Equal(t, provider.RoleSystem, p.got[0].Role)
	assert.Contains(t, p.got[1].Content, "formal")
	assert.Contains(t, p.got[1].Content, "Expand")
	assert.Contains(t, p.got[1].Content, "yo team")
}

func TestLLMTransformerKeepsFencedFirstLine(t *testing.T) {
	p := &stubProvider{deltas: []string{"```Hi,\n", "thanks for the update.", "```"}}
	out, err := NewLLM(p, time.Second).Adjust(context.Background(), "hey, thx", Options{Casual, Concise})
	require.NoError(t, err)
	assert.Equal(t, "Hi,\nthanks for the update.", out)
}

func TestLLMTransformerErrors(t *testing.T) {
	_, err := NewLLM(&stubProvider{err: errors.New("provider openai: rate limited, please wait")}, 0).
		Adjust(context.Background(), "x", Options{Formal, Concise})
	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Contains(t, te.Message, "rate limited")

	_, err = NewLLM(&stubProvider{err: &provider.StatusError{Provider: "openai", Code: 429, Message: "rate limited, please wait"}}, 0).
		Adjust(context.Background(), "x", Options{Formal, Concise})
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 429, te.Status)
	assert.Equal(t, "openai: rate limited, please wait", te.Message)

	_, err = NewLLM(&stubProvider{}, 0).Adjust(context.Background(), "x", Options{Formality: "odd"})
	assert.Error(t, err)
}

func TestLLMTransformerEmptyAnswerKeepsText(t *testing.T) {
	out, err := NewLLM(&stubProvider{deltas: []string{"  "}}, 0).Adjust(context.Background(), "keep", Options{Casual, Concise})
	require.NoError(t, err)
	assert.Equal(t, "keep", out)
}

func TestCleanAnswer(t *testing.T) {
	tests := map[string]string{
		"plain":                             "plain",
		"  padded \n":                       "padded",
		"```text\nfenced\n```":              "fenced",
		"```\nbare fence\n```":              "bare fence",
		`"quoted"`:                          "quoted",
		"“curly”":                           "curly",
		`"a" and "b"`:                       `"a" and "b"`,
		"'it's'":                            "'it's'",
		"```\nmulti\nline\n```":             "multi\nline",
		"```go\nx := 1\n```":                "x := 1",
		"```Hi,\nthanks for the update.```": "Hi,\nthanks for the update.",
		"```Hi\nthanks for the update.```":  "Hi\nthanks for the update.",
		"```Dear team,\nthanks\n```":        "Dear team,\nthanks",
		"``````":                            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanAnswer(in), in)
	}
}

func TestNew(t *testing.T) {
	tr, err := New(config.ToneConfig{Backend: config.ToneHTTP, BaseURL: "http://x"})
	require.NoError(t, err)
	assert.IsType(t, &HTTPTransformer{}, tr)

	tr, err = New(config.ToneConfig{Backend: config.ToneOpenAI, BaseURL: "http://x/v1", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &LLMTransformer{}, tr)

	tr, err = New(config.ToneConfig{Backend: config.ToneAnthropic})
	require.NoError(t, err)
	assert.IsType(t, &LLMTransformer{}, tr)

	_, err = New(config.ToneConfig{Backend: "carrier-pigeon"})
	assert.Error(t, err)
}
