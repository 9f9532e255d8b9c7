package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jeanpaul/tonepad/internal/config"
	"github.com/jeanpaul/tonepad/internal/provider"
	"github.com/jeanpaul/tonepad/internal/store"
)

type Status struct {
	Backend   string
	BaseURL   string
	Reachable bool
	Models    []string
	Error     string
	Latency   time.Duration
}

// Check verifies that the configured tone backend is reachable.
// The HTTP tone service counts as reachable on any HTTP answer; chat
// endpoints are asked for their model list.
func Check(ctx context.Context, cfg config.ToneConfig) Status {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var s Status
	switch cfg.Backend {
	case config.ToneHTTP, "":
		s = checkToneService(ctx, cfg.BaseURL)
	case config.ToneOpenAI:
		s = checkOpenAICompat(ctx, cfg.BaseURL, cfg.APIKey, cfg.Model)
	case config.ToneAnthropic:
		s = checkAnthropic(ctx, cfg.BaseURL, cfg.APIKey)
	default:
		s.Error = fmt.Sprintf("unknown tone backend: %s", cfg.Backend)
	}

	s.Backend = cfg.Backend
	s.Latency = time.Since(start)
	return s
}

func checkToneService(ctx context.Context, baseURL string) Status {
	s := Status{BaseURL: baseURL}
	req, err := http.NewRequestWithContext(ctx, "GET", baseURL, nil)
	if err != nil {
		s.Error = err.Error()
		return s
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.Error = fmt.Sprintf("cannot reach %s: %s", baseURL, provider.FriendlyError(err))
		return s
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		s.Error = fmt.Sprintf("service returned HTTP %d", resp.StatusCode)
		return s
	}
	s.Reachable = true
	return s
}

func checkOpenAICompat(ctx context.Context, baseURL, apiKey, model string) Status {
	s := Status{BaseURL: baseURL}
	req, err := http.NewRequestWithContext(ctx, "GET", strings.TrimRight(baseURL, "/")+"/models", nil)
	if err != nil {
		s.Error = err.Error()
		return s
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.Error = fmt.Sprintf("cannot reach %s: %s", baseURL, provider.FriendlyError(err))
		return s
	}
	defer resp.Body.Close()

	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		s.Error = "authentication failed, check the api_key setting"
		return s
	}
	if resp.StatusCode != 200 {
		s.Error = fmt.Sprintf("endpoint returned HTTP %d", resp.StatusCode)
		return s
	}

	var result struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	s.Reachable = true
	// Some endpoints answer with non-standard JSON but still work
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return s
	}
	for _, m := range result.Data {
		s.Models = append(s.Models, m.ID)
	}
	if model != "" && len(s.Models) > 0 && !contains(s.Models, model) {
		s.Error = fmt.Sprintf("model %q not found, available: %s", model, strings.Join(s.Models, ", "))
	}
	return s
}

func checkAnthropic(ctx context.Context, baseURL, apiKey string) Status {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	s := Status{BaseURL: baseURL}
	if apiKey == "" {
		s.Error = "no API key configured (set tone.api_key or TONEPAD_TONE_API_KEY)"
		return s
	}
	req, err := http.NewRequestWithContext(ctx, "GET", strings.TrimRight(baseURL, "/")+"/v1/models", nil)
	if err != nil {
		s.Error = err.Error()
		return s
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.Error = fmt.Sprintf("cannot reach Anthropic API: %s", provider.FriendlyError(err))
		return s
	}
	defer resp.Body.Close()

	if resp.StatusCode == 401 {
		s.Error = "invalid API key"
		return s
	}
	s.Reachable = true
	return s
}

// StoreStatus reports whether the session store can be opened and read.
type StoreStatus struct {
	Backend string
	OK      bool
	Error   string
	Latency time.Duration
}

// CheckStore opens the configured store and reads the buffer slot once.
func CheckStore(ctx context.Context, cfg config.StoreConfig) StoreStatus {
	start := time.Now()
	s := StoreStatus{Backend: cfg.Backend}

	d, err := store.Open(ctx, cfg, nil)
	if err != nil {
		s.Error = err.Error()
		s.Latency = time.Since(start)
		return s
	}
	defer d.Close()

	if _, err := d.Backend().Get(ctx, store.KeyText); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.Error = err.Error()
	} else {
		s.OK = true
	}
	s.Latency = time.Since(start)
	return s
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
