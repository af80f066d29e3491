package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/storefront/permission"
)

const (
	headerRequestID   = "X-Request-ID"
	headerIdempotency = "Idempotency-Key"

	maxErrorBody = 64 << 10
)

// TokenSource yields the current bearer token, "" when logged out.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token calls f.
func (f TokenFunc) Token() string { return f() }

// UnauthorizedFunc is called when a request carrying a bearer token gets a
// 401. token is the bearer the request was sent with.
type UnauthorizedFunc func(ctx context.Context, token string, err error)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler sets the 401 hook.
func WithUnauthorizedHandler(fn UnauthorizedFunc) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithRoleManager sets the source of default permission tags.
func WithRoleManager(rm *permission.RoleManager) Option {
	return func(c *Client) {
		if rm != nil {
			c.roles = rm
		}
	}
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client talks to the inventory service.
type Client struct {
	base           *url.URL
	http           *http.Client
	tokens         TokenSource
	onUnauthorized UnauthorizedFunc
	roles          *permission.RoleManager
	logger         *slog.Logger
}

// New returns a client for the service rooted at baseURL
// (for example "http://localhost:8080/api").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: base url %q must be http or https", baseURL)
	}

	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: 15 * time.Second},
		roles:  permission.NewRoleManager(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// call describes one request.
type call struct {
	op     string
	method string
	path   string
	body   any
	header http.Header
	// anonymous requests never carry a bearer token and never fire the
	// unauthorized hook.
	anonymous bool
}

// do sends c and returns the response on 2xx. The caller closes the body.
func (c *Client) do(ctx context.Context, cl call) (*http.Response, error) {
	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", cl.op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.base.String()+cl.path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", cl.op, err)
	}
	for k, vs := range cl.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(headerRequestID, requestID)

	var bearer string
	if !cl.anonymous && c.tokens != nil {
		bearer = c.tokens.Token()
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "api: transport failure",
			slog.String("op", cl.op), slog.String("request_id", requestID), slog.Any("err", err))
		return nil, fmt.Errorf("%s: %w: %w", cl.op, ErrNetwork, err)
	}
	c.logger.DebugContext(ctx, "api: response",
		slog.String("op", cl.op),
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	apiErr := readError(cl.op, resp)
	if resp.StatusCode == http.StatusUnauthorized && bearer != "" && c.onUnauthorized != nil {
		c.onUnauthorized(ctx, bearer, apiErr)
	}
	return nil, apiErr
}

// doJSON sends cl and decodes a 2xx body into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, cl call, out any) error {
	resp, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w: %v", cl.op, ErrDecode, err)
	}
	return nil
}

type errorBody struct {
	Message     string   `json:"message"`
	Error       string   `json:"error"`
	FailedItems []string `json:"failedItems"`
}

func readError(op string, resp *http.Response) *Error {
	defer func() { _ = resp.Body.Close() }()
	e := &Error{Op: op, Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		e.Message = eb.Message
		if e.Message == "" {
			e.Message = eb.Error
		}
		e.Details = eb.FailedItems
	} else if s := strings.TrimSpace(string(raw)); s != "" && len(s) < 512 {
		e.Message = s
	}
	return e
}
