// Package apierr turns provider HTTP responses into errors.
package apierr

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// maxBodyInError truncates response bodies quoted in error messages.
const maxBodyInError = 512

// Check returns nil for a 2xx status. A 429 becomes a *domain.RateLimitError
// carrying the Retry-After hint; anything else is a plain error quoting the body.
func Check(provider string, resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return &domain.RateLimitError{
			Provider:   provider,
			RetryAfter: RetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return fmt.Errorf("%s error (status %d): %s", provider, resp.StatusCode, truncate(body))
}

// RetryAfter parses a Retry-After header given in seconds or as an HTTP date.
// It returns zero when the header is absent or malformed.
func RetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodyInError {
		return s[:maxBodyInError] + "..."
	}
	return s
}
