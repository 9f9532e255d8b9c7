package tone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jeanpaul/tonepad/internal/provider"
)

const adjustPath = "/api/adjust-tone"

// HTTPTransformer calls a tone service that accepts
// {"text": ..., "tone": {"formality": ..., "verbosity": ...}} and answers
// {"result": ...} or {"error": ...}.
type HTTPTransformer struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTP(baseURL, apiKey string, timeout time.Duration) *HTTPTransformer {
	return &HTTPTransformer{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type adjustRequest struct {
	Text string  `json:"text"`
	Tone Options `json:"tone"`
}

type adjustResponse struct {
	Result string `json:"result"`
	Error  string `json:"error"`
}

func (h *HTTPTransformer) Adjust(ctx context.Context, text string, opts Options) (string, error) {
	payload, err := json.Marshal(adjustRequest{Text: text, Tone: opts})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", h.baseURL+adjustPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", &Error{Message: "request cancelled", Err: err}
		}
		return "", &Error{Message: provider.FriendlyError(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", &Error{Message: provider.FriendlyError(err), Status: resp.StatusCode, Err: err}
	}

	var data adjustResponse
	decodeErr := json.Unmarshal(body, &data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := data.Error
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("Request failed (%d)", resp.StatusCode)
		}
		return "", &Error{Message: msg, Status: resp.StatusCode}
	}
	if decodeErr != nil {
		return "", &Error{Message: "invalid response from tone service", Status: resp.StatusCode, Err: decodeErr}
	}

	// An empty result leaves the text as it was.
	if data.Result == "" {
		return text, nil
	}
	return data.Result, nil
}
