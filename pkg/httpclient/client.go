package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"
)

// Client wraps http.Client with bounded retries and a circuit breaker. Used
// for every outbound provider call so a flapping provider stops consuming
// its rate limit budget.
type Client struct {
	client     *http.Client
	cb         *CircuitBreaker
	maxRetries int
}

type Options struct {
	Timeout     time.Duration
	MaxRetries  int
	MaxFailures int
	OpenTimeout time.Duration
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	return &Client{
		client:     &http.Client{Timeout: opts.Timeout},
		cb:         NewCircuitBreaker(opts.MaxFailures, opts.OpenTimeout),
		maxRetries: opts.MaxRetries,
	}
}

func (c *Client) Get(ctx context.Context, baseURL string, queryParams map[string]string, headers map[string]string) (*http.Response, error) {
	return c.attemptRequestWithRetry(ctx, func() (*http.Request, error) {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, err
		}

		q := u.Query()
		for k, v := range queryParams {
			q.Add(k, v)
		}
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}

		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
}

func (c *Client) Post(ctx context.Context, url string, body any, headers map[string]string) (*http.Response, error) {
	return c.attemptRequestWithRetry(ctx, func() (*http.Request, error) {
		var bodyReader io.Reader
		if body != nil {
			jsonData, err := json.Marshal(body)
			if err != nil {
				return nil, err
			}
			bodyReader = bytes.NewBuffer(jsonData)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bodyReader)
		if err != nil {
			return nil, err
		}

		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
}

func (c *Client) attemptRequestWithRetry(ctx context.Context, reqFactory func() (*http.Request, error)) (*http.Response, error) {
	if err := c.cb.CheckBeforeRequest(); err != nil {
		return nil, err
	}

	const baseDelay = 100 * time.Millisecond
	const maxJitterMs = 100

	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	var response *http.Response

	for i := 0; i <= c.maxRetries; i++ {
		req, err := reqFactory()
		if err != nil {
			return nil, fmt.Errorf("error creating request: %w", err)
		}

		response, err = c.client.Do(req)
		lastErr = err

		if err == nil && response.StatusCode < 500 {
			c.cb.OnSuccess()
			return response, nil
		}

		if i == c.maxRetries {
			break
		}

		backoff := baseDelay * time.Duration(math.Pow(2, float64(i)))
		jitter := time.Duration(r.Intn(maxJitterMs)) * time.Millisecond

		if response != nil {
			response.Body.Close()
		}

		slog.Warn("provider request failed, retrying",
			slog.Int("attempt", i+1),
			slog.String("backoff", (backoff + jitter).String()),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}

	c.cb.OnFailure()

	if lastErr != nil {
		return nil, fmt.Errorf("all retries failed, last network error: %w", lastErr)
	}

	response.Body.Close()
	return nil, fmt.Errorf("all retries failed, last status: %s", response.Status)
}
