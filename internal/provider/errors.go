package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// StatusError is a non-2xx answer from a provider endpoint.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func newStatusError(providerName string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(resp.Body)
	return &StatusError{
		Provider: providerName,
		Code:     resp.StatusCode,
		Message:  parseProviderError(providerName, resp.StatusCode, body),
	}
}

func (e *StatusError) Error() string { return e.Provider + ": " + e.Message }

// Temporary reports whether the same request may succeed later.
func (e *StatusError) Temporary() bool {
	switch e.Code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout, 529:
		return true
	}
	return false
}

// TransportError is a request that never got an HTTP answer.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string { return e.Provider + ": " + FriendlyError(e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is worth another attempt: throttling,
// server-side failures and dropped connections. Cancellation never is.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF)
}

// parseProviderError extracts a readable message from an error response body.
func parseProviderError(providerName string, statusCode int, body []byte) string {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		msg := errResp.Error.Message
		if msg == "" {
			msg = errResp.Message
		}
		if msg != "" {
			return msg
		}
	}

	switch statusCode {
	case 401:
		return "authentication failed, check the api_key setting"
	case 403:
		return "access denied for this API key"
	case 404:
		return fmt.Sprintf("model or endpoint not found on %s", providerName)
	case 429:
		return "rate limited, please wait"
	case 500:
		return "internal server error on the provider side"
	case 502, 503:
		return "provider service temporarily unavailable"
	case 529:
		return "provider is overloaded, please try again later"
	}

	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return fmt.Sprintf("HTTP %d: %s", statusCode, s)
}

// FriendlyError shortens common transport errors for display.
func FriendlyError(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "connection refused") {
		return "connection refused (is the service running?)"
	}
	if strings.Contains(msg, "no such host") {
		return "host not found (check the URL)"
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return "connection timed out"
	}
	if strings.Contains(msg, "EOF") {
		return "connection closed unexpectedly"
	}
	if strings.Contains(msg, "reset by peer") {
		return "connection reset by server"
	}
	return msg
}
