// Package api provides a typed client for the LexAI backend REST API.
//
// Every call takes a context and makes exactly one attempt. Failures are
// reported with the types from internal/errors: TransportError when no HTTP
// response arrived, RequestError for a non-2xx status and AuthError for a
// rejected login or registration.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/logging"
)

// DefaultTimeout applies when no timeout option is given.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read to find the detail.
const maxErrorBody = 64 << 10

// TokenSource supplies the bearer token for authenticated requests.
// It is consulted on every request so a login or logout takes effect
// immediately.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() string { return string(s) }

// Client is a typed client for the LexAI API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *logging.Logger
}

// Option configures the client.
type Option func(*Client)

// New creates a Client for baseURL (for example "http://localhost:8001").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		tokens: StaticToken(""),
		logger: logging.NopLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTokenSource sets where the bearer token comes from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		if ts != nil {
			c.tokens = ts
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody is the FastAPI error envelope. Detail is a string for
// HTTPException and a list of objects for request validation failures.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, eb.Detail); err != nil {
		return string(eb.Detail)
	}
	return buf.String()
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, body any, out any) error {
	var token string
	if auth {
		token = c.tokens.Token()
		if token == "" {
			return errors.ErrNotAuthenticated
		}
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.NewTransportError(method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			"method", method,
			"path", path,
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return errors.NewTransportError(method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.NewRequestError(method, path, resp.StatusCode, parseDetail(raw))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// A body cut short by the timeout or a dropped connection is a
		// transport problem, not a malformed payload.
		if ctx.Err() != nil || errors.Is(err, io.ErrUnexpectedEOF) {
			return errors.NewTransportError(method, path, err)
		}
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) authenticate(ctx context.Context, action, path string, body any) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, path, false, body, &out); err != nil {
		var reqErr *errors.RequestError
		if errors.As(err, &reqErr) {
			return nil, errors.NewAuthError(action, reqErr)
		}
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("%s response did not include a token", action)
	}
	return &out, nil
}

// Login calls POST /api/auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, errors.ActionLogin, "/api/auth/login", LoginRequest{
		Email:    email,
		Password: password,
	})
}

// Register calls POST /api/auth/register.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, errors.ActionRegister, "/api/auth/register", req)
}

// DashboardStats calls GET /api/dashboard/stats.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCases calls GET /api/cases. Cases come back most recently updated first.
func (c *Client) ListCases(ctx context.Context) ([]Case, error) {
	var out casesResponse
	if err := c.do(ctx, http.MethodGet, "/api/cases", true, nil, &out); err != nil {
		return nil, err
	}
	return out.Cases, nil
}

// CreateCase calls POST /api/cases.
func (c *Client) CreateCase(ctx context.Context, nc NewCase) (*CaseCreated, error) {
	var out CaseCreated
	if err := c.do(ctx, http.MethodPost, "/api/cases", true, nc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCase calls GET /api/cases/{id}.
func (c *Client) GetCase(ctx context.Context, id string) (*Case, error) {
	var out Case
	if err := c.do(ctx, http.MethodGet, "/api/cases/"+url.PathEscape(id), true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatHistory calls GET /api/chat/history.
func (c *Client) ChatHistory(ctx context.Context) ([]Conversation, error) {
	var out historyResponse
	if err := c.do(ctx, http.MethodGet, "/api/chat/history", true, nil, &out); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

// SendMessage calls POST /api/chat/message.
func (c *Client) SendMessage(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	var out ChatReply
	if err := c.do(ctx, http.MethodPost, "/api/chat/message", true, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetConversation calls GET /api/chat/conversation/{id}.
func (c *Client) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var out Conversation
	if err := c.do(ctx, http.MethodGet, "/api/chat/conversation/"+url.PathEscape(id), true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LegalCategories calls GET /api/legal-categories.
func (c *Client) LegalCategories(ctx context.Context) ([]Category, error) {
	var out categoriesResponse
	if err := c.do(ctx, http.MethodGet, "/api/legal-categories", true, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// AnalyzeDocument calls POST /api/documents/analyze.
func (c *Client) AnalyzeDocument(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	var out Analysis
	if err := c.do(ctx, http.MethodPost, "/api/documents/analyze", true, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls GET /api/health. It needs no token.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/api/health", false, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
