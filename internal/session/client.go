package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	apperrors "expensely/internal/errors"
)

// DefaultTimeout bounds every call to the authentication API.
const DefaultTimeout = 10 * time.Second

// Credentials are the login inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration are the sign-up inputs.
type Registration struct {
	Name     string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Info is the user as reported by the authentication API.
type Info struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
}

// AuthClient is the remote authentication collaborator.
type AuthClient interface {
	Login(ctx context.Context, c Credentials) (*Info, error)
	Register(ctx context.Context, r Registration) (*Info, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*Info, error)
}

// HTTPClient talks to the /auth endpoints. Its cookie jar carries the
// server's httpOnly session cookies between calls.
type HTTPClient struct {
	base *url.URL
	http *http.Client
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *HTTPClient) { c.http.Transport = rt }
}

// NewHTTPClient returns a client for the API rooted at baseURL, e.g.
// http://localhost:8080/api/v1.
func NewHTTPClient(baseURL string, opts ...ClientOption) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &HTTPClient{
		base: base,
		http: &http.Client{Jar: jar, Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Cookies returns the session cookies currently held for the API.
func (c *HTTPClient) Cookies() []*http.Cookie {
	return c.http.Jar.Cookies(c.base)
}

// SetCookies restores cookies saved from an earlier run.
func (c *HTTPClient) SetCookies(cookies []*http.Cookie) {
	c.http.Jar.SetCookies(c.base, cookies)
}

// Login implements AuthClient.
func (c *HTTPClient) Login(ctx context.Context, creds Credentials) (*Info, error) {
	var info Info
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Register implements AuthClient.
func (c *HTTPClient) Register(ctx context.Context, r Registration) (*Info, error) {
	var info Info
	if err := c.do(ctx, http.MethodPost, "/auth/register", r, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Logout implements AuthClient.
func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me implements AuthClient.
func (c *HTTPClient) Me(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// do sends body as JSON and decodes a 2xx response into out. A non-2xx
// response becomes an AppError carrying the status and the body's message.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, r)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrAuthUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrAuthUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeFailure(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Wrap(apperrors.ErrAuthUnavailable, err)
	}
	return nil
}

func decodeFailure(status int, raw []byte) *apperrors.AppError {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	text := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &body); err != nil {
		body.Message = text
	}
	if body.Message == "" {
		body.Message = "Request failed"
	}
	if body.Code == "" {
		body.Code = "REQUEST_FAILED"
	}
	return apperrors.New(body.Code, body.Message, status)
}
