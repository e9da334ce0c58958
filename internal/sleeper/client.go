package sleeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
)

const DefaultBaseURL = "https://api.sleeper.app/v1"

// ErrNotFound is returned when Sleeper answers 404 (unknown draft id)
var ErrNotFound = errors.New("sleeper: not found")

// Options configures a Client
type Options struct {
	BaseURL    string
	RateLimit  float64 // requests per second, 0 = 2
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the public Sleeper API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	userAgent  string
}

// NewClient creates a Sleeper client with rate limiting and a circuit breaker
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limit := opts.RateLimit
	if limit <= 0 {
		limit = 2
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sleeper",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(limit), 1),
		breaker:    breaker,
		userAgent:  "fantasy-draft-aid/1.0",
	}
}

// getJSON performs a rate limited GET through the breaker and decodes the body into dest
func (c *Client) getJSON(ctx context.Context, path string, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.baseURL + path
	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", path, err)
		}
		defer resp.Body.Close()

		logger.Debug("Sleeper request", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("GET %s: %s - %s", path, resp.Status, strings.TrimSpace(string(body)))
		}

		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return nil, nil
	})
	return err
}

// sports are the path segments Sleeper puts between /draft/ and the id
var sports = map[string]bool{"nfl": true, "nba": true, "lcs": true}

// ParseDraftID accepts a bare draft id or a sleeper.app draft URL and returns the id
func ParseDraftID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "/") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "draft" && i+1 < len(parts) {
			// /draft/<id> or /draft/<sport>/<id>
			rest := parts[i+1:]
			if len(rest) == 1 && sports[rest[0]] {
				return ""
			}
			return rest[len(rest)-1]
		}
	}
	return ""
}
