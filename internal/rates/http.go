package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"TaxSentinel/internal/retry"

	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

// HTTPSource implements Source against a JSON rate feed.
type HTTPSource struct {
	URL    string
	APIKey string
	Client *http.Client
}

// NewHTTPSource creates a new source with optional proxy support.
func NewHTTPSource(feedURL, apiKey, proxyURL string, timeout time.Duration) *HTTPSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		URL:    feedURL,
		APIKey: apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (s *HTTPSource) Name() string { return "http" }

// feedPayload is the expected JSON shape of the rate feed. Rates decode
// straight into decimals, so no value passes through float64.
type feedPayload struct {
	Source string                     `json:"source"`
	AsOf   time.Time                  `json:"as_of"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

// HTTPStatusError is a non-200 response from the feed.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("rate feed: status %d", e.StatusCode)
}

// Retryable reports whether the status is transient.
func (e *HTTPStatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// IsRetryable is the retry predicate for HTTPSource errors: transport failures
// and transient statuses are retried, everything else is not.
func IsRetryable(err error) bool {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}

func (s *HTTPSource) Fetch(ctx context.Context) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read rates: %w", err)
	}
	var payload feedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, retry.Permanent(fmt.Errorf("decode rates: %w", err))
	}

	origin := payload.Source
	if origin == "" {
		origin = s.Name()
	}
	return &Table{Rates: payload.Rates, Origin: origin, AsOf: payload.AsOf}, nil
}
