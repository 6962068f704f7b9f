// Package client is the typed REST transport for the koiconsult API. Every
// call decodes the {statusCode,isSuccess,message,result} envelope and
// reports failures as *Error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Envelope is the response wrapper shared by every endpoint.
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	IsSuccess  bool            `json:"isSuccess"`
	Message    string          `json:"message"`
	Result     json.RawMessage `json:"result"`

	raw []byte
}

// Client calls the API on behalf of a Session.
type Client struct {
	base    *url.URL
	http    *http.Client
	session *Session
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithSession shares a session between clients.
func WithSession(s *Session) Option {
	return func(c *Client) {
		if s != nil {
			c.session = s
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("client: invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute http(s)", baseURL)
	}
	c := &Client{
		base:    u,
		http:    &http.Client{Timeout: defaultTimeout},
		session: NewSession(""),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the session whose token authorizes requests.
func (c *Client) Session() *Session {
	return c.session
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ResolveURL turns a server-relative path such as /uploads/x.jpg into an
// absolute URL.
func (c *Client) ResolveURL(path string) string {
	if path == "" {
		return ""
	}
	ref, err := url.Parse(path)
	if err != nil || ref.IsAbs() {
		return path
	}
	return c.base.ResolveReference(ref).String()
}

// endpoint joins the base URL with path, which callers pass already escaped.
func (c *Client) endpoint(path string) string {
	u := *c.base
	raw := strings.TrimRight(c.base.EscapedPath(), "/") + path
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		unescaped = raw
	}
	u.Path, u.RawPath = unescaped, raw
	return u.String()
}

// call sends a JSON request and decodes the envelope result into out.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return transportError(method+" "+path, fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(data)
	}
	env, err := c.send(ctx, method, path, reader, "application/json")
	if err != nil {
		return err
	}
	return decodeResult(method+" "+path, env, out)
}

// upload sends one file as multipart form data under field.
func (c *Client) upload(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	op := http.MethodPost + " " + path
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return transportError(op, err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return transportError(op, fmt.Errorf("read %s: %w", filename, err))
	}
	if err := mw.Close(); err != nil {
		return transportError(op, err)
	}
	env, err := c.send(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	return decodeResult(op, env, out)
}

// send performs the request and returns the raw envelope of a successful
// response.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*Envelope, error) {
	op := method + " " + path
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, transportError(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "request failed", slog.String("op", op), slog.String("error", err.Error()))
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()
	c.logger.DebugContext(ctx, "request completed",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(op, fmt.Errorf("read response: %w", err))
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, businessError(op, resp.StatusCode, "")
		}
		return nil, transportError(op, fmt.Errorf("decode envelope: %w", err))
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.IsSuccess {
		status := resp.StatusCode
		if status < http.StatusBadRequest && env.StatusCode >= http.StatusBadRequest {
			status = env.StatusCode
		}
		return nil, businessError(op, status, env.Message)
	}
	if len(env.Result) == 0 {
		env.Result = json.RawMessage("null")
	}
	env.raw = data
	return &env, nil
}

func decodeResult(op string, env *Envelope, out any) error {
	if out == nil || bytes.Equal(env.Result, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return transportError(op, fmt.Errorf("decode result: %w", err))
	}
	return nil
}
