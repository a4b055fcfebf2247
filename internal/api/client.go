package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
)

// Defaults for the control-plane HTTP client.
const (
	defaultTimeout      = 30 * time.Second
	defaultRetryCount   = 5
	defaultRetryWait    = 1 * time.Second
	defaultRetryMaxWait = 60 * time.Second
)

// Config configures the API client.
type Config struct {
	// BaseURL is the API root, e.g. https://api.assetvault.example.com.
	BaseURL string
	// TokenSource supplies bearer tokens. Optional; requests go out
	// unauthenticated when nil.
	TokenSource oauth2.TokenSource
	// Timeout bounds each control-plane call. Defaults to 30s.
	Timeout time.Duration
	// RetryCount bounds automatic retries of throttled calls. Defaults to 5.
	RetryCount int
	// Logger receives request debug logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client talks to the AssetVault REST API. Presigned transfer targets are
// not reached through this client; they carry their own authorization.
type Client struct {
	rc  *resty.Client
	log *slog.Logger
}

// New validates the configuration and builds a client. Throttled calls
// (429) are retried with backoff, honoring the server's Retry-After header.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &ValidationError{Field: "BaseURL", Message: "is required"}
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Host == "" {
		return nil, &ValidationError{Field: "BaseURL", Message: "must be a valid URL"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &ValidationError{Field: "BaseURL", Message: "must use http or https"}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	retries := cfg.RetryCount
	if retries == 0 {
		retries = defaultRetryCount
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(retries).
		SetRetryWaitTime(defaultRetryWait).
		SetRetryMaxWaitTime(defaultRetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests
		}).
		SetRetryAfter(func(c *resty.Client, r *resty.Response) (time.Duration, error) {
			if r == nil {
				return 0, nil
			}
			if ra := r.Header().Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
					d := time.Duration(secs) * time.Second
					if d > defaultRetryMaxWait {
						d = defaultRetryMaxWait
					}
					return d, nil
				}
			}
			return 0, nil
		})

	if cfg.TokenSource != nil {
		ts := cfg.TokenSource
		rc.OnBeforeRequest(func(c *resty.Client, r *resty.Request) error {
			tok, err := ts.Token()
			if err != nil {
				return fmt.Errorf("fetching auth token: %w", err)
			}
			r.SetHeader("Authorization", "Bearer "+tok.AccessToken)
			return nil
		})
	}

	rc.OnAfterResponse(func(c *resty.Client, r *resty.Response) error {
		log.Debug("api call",
			"method", r.Request.Method,
			"path", r.Request.URL,
			"status", r.StatusCode(),
			"duration", r.Time(),
			"attempt", r.Request.Attempt,
		)
		return nil
	})

	return &Client{rc: rc, log: log}, nil
}

// do executes one control-plane call and maps non-2xx replies onto the
// error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.rc.R().SetContext(ctx).SetError(&apiErrorBody{})
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		msg := ""
		if eb, ok := resp.Error().(*apiErrorBody); ok {
			msg = eb.text()
		}
		return newAPIError(resp.StatusCode(), msg)
	}
	return nil
}
