// Package api provides an HTTP client for the Zammad REST API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/basher83/zammad-mcp/internal/config"
	"github.com/basher83/zammad-mcp/internal/output"
	"github.com/basher83/zammad-mcp/internal/version"
)

// Client is an HTTP client for one Zammad instance. Requests carry a
// finite timeout and are never retried; callers see a typed error per
// failure class and decide themselves whether to try again.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        *config.Config
	limiter    *rate.Limiter
}

// Response wraps an API response body.
type Response struct {
	Data       json.RawMessage
	StatusCode int
	Headers    http.Header
}

// UnmarshalData unmarshals the response data into the given value.
func (r *Response) UnmarshalData(v any) error {
	return json.Unmarshal(r.Data, v)
}

// NewClient builds a client from validated configuration. OAuth tokens
// ride on an oauth2 transport; HTTP tokens and basic credentials are
// attached per request.
func NewClient(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	base := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	if cfg.HTTPToken == "" && cfg.OAuth2Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.OAuth2Token})
		base = oauth2.NewClient(ctx, src)
		base.Timeout = timeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		httpClient: base,
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		cfg:        cfg,
		limiter:    limiter,
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, output.ErrTimeout(err)
		}
	}

	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = strings.NewReader(string(raw))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("api request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	slog.Debug("api response", "method", method, "path", path, "status", resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, output.ErrUnavailable("reading response body failed", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return &Response{Data: respBody, StatusCode: resp.StatusCode, Headers: resp.Header}, nil
	}
	return nil, classifyStatus(resp.StatusCode, resp.Header, respBody)
}

// authorize sets the Authorization header for token and basic
// credentials. OAuth tokens are handled by the transport instead.
func (c *Client) authorize(req *http.Request) {
	switch {
	case c.cfg.HTTPToken != "":
		req.Header.Set("Authorization", "Token token="+c.cfg.HTTPToken)
	case c.cfg.OAuth2Token != "":
		// transport-level
	case c.cfg.Username != "":
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
}

func classifyTransportError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return output.ErrTimeout(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return output.ErrTimeout(err)
	}
	return output.ErrUnavailable("Zammad API is unreachable", err)
}

func classifyStatus(status int, headers http.Header, body []byte) error {
	msg := apiMessage(body)
	switch status {
	case http.StatusUnauthorized:
		return output.ErrAuth(msg)
	case http.StatusForbidden:
		return output.ErrForbidden(msg)
	case http.StatusNotFound:
		return output.ErrNotFound("resource", msg)
	case http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(headers.Get("Retry-After"))
		return output.ErrRateLimit(retryAfter)
	}
	if status >= 500 {
		return output.ErrUnavailable(fmt.Sprintf("Zammad returned HTTP %d", status), nil)
	}
	return output.ErrAPI(status, msg)
}

// apiMessage pulls the human-readable error out of a Zammad error
// body, falling back to the raw body when it is not the usual shape.
func apiMessage(body []byte) string {
	var parsed struct {
		Error      string `json:"error"`
		ErrorHuman string `json:"error_human"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.ErrorHuman != "" {
			return parsed.ErrorHuman
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
