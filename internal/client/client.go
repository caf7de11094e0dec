// Package client talks to the Program Service REST API.
package client

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
)

// Cookie and header names used by the Program Service.
const (
	SessionCookie = "sessionid"
	CSRFCookie    = "csrftoken"
	CSRFHeader    = "X-CSRFToken"
)

// Client calls the Program Service with the configured session cookie.
type Client struct {
	baseURL    string
	base       *url.URL
	httpClient *http.Client
}

// New creates a Client targeting baseURL. sessionID, when set, is sent as the
// session cookie on every request.
func New(baseURL, sessionID string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	if sessionID != "" {
		jar.SetCookies(base, []*http.Cookie{{Name: SessionCookie, Value: sessionID, Path: "/"}})
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		base:       base,
		httpClient: &http.Client{Timeout: timeout, Jar: jar},
	}, nil
}

// FetchCSRF asks the service for a CSRF token. The service also sets it as
// a cookie, which later mutations echo back.
func (c *Client) FetchCSRF(ctx context.Context) (string, error) {
	var resp struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/csrf/", nil, nil, &resp); err != nil {
		return "", err
	}
	if tok := c.cookie(CSRFCookie); tok != "" {
		return tok, nil
	}
	if resp.CSRFToken != "" {
		c.httpClient.Jar.SetCookies(c.base, []*http.Cookie{{Name: CSRFCookie, Value: resp.CSRFToken, Path: "/"}})
	}
	return resp.CSRFToken, nil
}

func (c *Client) cookie(name string) string {
	for _, ck := range c.httpClient.Jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) csrfToken(ctx context.Context) (string, error) {
	if tok := c.cookie(CSRFCookie); tok != "" {
		return tok, nil
	}
	return c.FetchCSRF(ctx)
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// do sends one JSON request. in, when non-nil, is encoded as the body; out,
// when non-nil, receives the decoded response.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if isMutation(method) {
		tok, err := c.csrfToken(ctx)
		if err != nil {
			return fmt.Errorf("client: csrf token: %w", err)
		}
		req.Header.Set(CSRFHeader, tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseServiceError(method+" "+path, resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &NetworkError{Op: method + " " + path, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
