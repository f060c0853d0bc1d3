package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/fridaykickers/kickers/pkg/auth"
)

// Requester is the request function the rest of the client consumes.
type Requester interface {
	Request(ctx context.Context, method, path string, body, out any) error
}

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks JSON to the club service.
type Client struct {
	baseURL  string
	doer     Doer
	tokens   auth.TokenStore
	onUnauth func()
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDoer sets the HTTP executor. Default: http.DefaultClient.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

// WithUnauthenticated sets the callback fired after a 401 answer.
func WithUnauthenticated(fn func()) Option {
	return func(c *Client) { c.onUnauth = fn }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL. tokens may be nil for anonymous use.
func New(baseURL string, tokens auth.TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    http.DefaultClient,
		tokens:  tokens,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET and decodes the answer into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Request(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Request(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Request(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Request(ctx, http.MethodDelete, path, nil, out)
}

// Request executes method on path. A nil body sends no payload; a nil out
// discards the answer. An empty 2xx answer leaves out untouched.
func (c *Client) Request(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: encode body: %w", err)
		}
		payload = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, payload, contentType, out)
}

// PostForm sends fields as multipart/form-data.
func (c *Client) PostForm(ctx context.Context, path string, fields map[string]string, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("gateway: encode form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("gateway: encode form: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, path string, payload io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return &Error{Kind: KindTransport, Message: MsgUnknown, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.Debug("gateway request failed", "method", method, "path", path, "error", err)
		return &Error{Kind: KindTransport, Message: MsgNoResponse, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Message: MsgNoResponse, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gerr := &Error{
			Kind:    KindServer,
			Status:  resp.StatusCode,
			Message: serverMessage(data, resp.StatusCode),
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.unauthenticated()
		}
		c.logger.Debug("gateway request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return gerr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindDecode, Status: resp.StatusCode, Message: MsgUnknown, Err: err}
	}
	return nil
}

func (c *Client) unauthenticated() {
	if c.tokens != nil {
		if err := c.tokens.RemoveToken(); err != nil {
			c.logger.Warn("remove token after 401", "error", err)
		}
	}
	if c.onUnauth != nil {
		c.onUnauth()
	}
}

// serverMessage prefers the service's {"message": "..."} body.
func serverMessage(data []byte, status int) string {
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil && body.Message != "" {
		return body.Message
	}
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("Request failed with status code %d (%s)", status, text)
	}
	return MsgUnknown
}
