// Package client is a typed Go client for the catalog REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"boutique-catalog/internal/catalog"
	"boutique-catalog/internal/domain"
)

// The client can feed a storefront page directly.
var (
	_ catalog.ProductSource    = (*ProductsClient)(nil)
	_ catalog.CollectionSource = (*CollectionsClient)(nil)
)

// Client talks to the catalog API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string

	Products   *ProductsClient
	Categories *CollectionsClient
	Lookbooks  *CollectionsClient
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithToken starts the client with an existing session token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a client for the API at baseURL, e.g. http://localhost:5002.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Products = &ProductsClient{c: c}
	c.Categories = &CollectionsClient{c: c, kind: domain.KindCategory, path: "/api/categories"}
	c.Lookbooks = &CollectionsClient{c: c, kind: domain.KindLookbook, path: "/api/lookbook"}
	return c
}

// Token returns the current session token, empty when logged out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Session is an admin session returned by Login.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges admin credentials for a session token, which the client
// then sends on every mutating request.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, domain.NewValidationError("Username and password are required")
	}

	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, err
	}

	var session Session
	if err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/auth/login",
		body:        body,
		contentType: "application/json",
		entity:      "Session",
	}, &session); err != nil {
		return nil, err
	}

	c.setToken(session.Token)
	return &session, nil
}

// Logout revokes the session token and forgets it.
func (c *Client) Logout(ctx context.Context) error {
	if c.Token() == "" {
		return nil
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/api/auth/logout", auth: true, entity: "Session"}, nil)
	c.setToken("")
	return err
}

type request struct {
	method      string
	path        string
	body        []byte
	contentType string
	auth        bool
	// entity names the record in not found and conflict errors.
	entity string
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do sends req and decodes the envelope data into out. Unsuccessful
// envelopes become domain errors where the status has a domain meaning.
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	op := req.method + " " + req.path

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.auth {
		if token := c.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return &FormatError{Status: resp.StatusCode, Reason: fmt.Sprintf("unexpected content type %q", mediaType)}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &FormatError{Status: resp.StatusCode, Reason: err.Error()}
	}
	if env.Success == nil {
		return &FormatError{Status: resp.StatusCode, Reason: "missing success flag"}
	}

	if !*env.Success || resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, env.Message, req.entity)
	}

	if out != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return &FormatError{Status: resp.StatusCode, Reason: "missing data"}
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &FormatError{Status: resp.StatusCode, Reason: err.Error()}
		}
	}
	return nil
}

func statusError(status int, message, entity string) error {
	switch status {
	case http.StatusBadRequest:
		return domain.NewValidationError(message)
	case http.StatusNotFound:
		return &domain.NotFoundError{Entity: entity}
	case http.StatusConflict:
		return &domain.ConflictError{Entity: entity}
	}
	if status < 400 {
		return &FormatError{Status: status, Reason: "unsuccessful envelope: " + message}
	}
	return &APIError{Status: status, Message: message}
}
