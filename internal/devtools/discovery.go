// File: internal/devtools/discovery.go

// Package devtools speaks the browser's REST-like discovery surface: target
// listing, tab lifecycle, and version info. The protocol client consumes
// only the WebSocket debugger URL resolved here.
package devtools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cdpctl/internal/netutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Target is one browser-inspectable unit as reported by /json/list. The
// browser owns a Target's lifetime; this is only a reference.
type Target struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	Description          string `json:"description,omitempty"`
	FaviconURL           string `json:"faviconUrl,omitempty"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl,omitempty"`
}

// VersionInfo is the browser build metadata from /json/version.
type VersionInfo struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	UserAgent            string `json:"User-Agent"`
	V8Version            string `json:"V8-Version"`
	WebKitVersion        string `json:"WebKit-Version"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Client performs discovery calls against one remote-debugging endpoint.
type Client struct {
	base   string
	http   *netutil.Client
	logger *zap.Logger
}

// NewClient builds a discovery client for the given host:port endpoint.
func NewClient(endpoint string, httpClient *netutil.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = netutil.NewClient(nil)
	}
	return &Client{
		base:   "http://" + endpoint,
		http:   httpClient,
		logger: logger.Named("devtools"),
	}
}

// Targets lists the inspectable targets. Newer browsers serve /json/list;
// older ones only /json, so the latter is the fallback.
func (c *Client) Targets(ctx context.Context) ([]Target, error) {
	var lastErr error
	for _, path := range []string{"/json/list", "/json"} {
		body, err := c.get(ctx, path)
		if err != nil {
			lastErr = err
			continue
		}
		var targets []Target
		if err := json.Unmarshal(body, &targets); err != nil {
			lastErr = fmt.Errorf("devtools: decode %s: %w", path, err)
			continue
		}
		return targets, nil
	}
	return nil, fmt.Errorf("devtools: list targets: %w", lastErr)
}

// Version fetches the browser build metadata.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	body, err := c.get(ctx, "/json/version")
	if err != nil {
		return nil, fmt.Errorf("devtools: version: %w", err)
	}
	var info VersionInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("devtools: decode version: %w", err)
	}
	return &info, nil
}

// NewTab opens a new tab, optionally pre-navigated to the given URL, and
// returns its Target. Modern browsers require PUT on /json/new.
func (c *Client) NewTab(ctx context.Context, targetURL string) (*Target, error) {
	path := "/json/new"
	if targetURL != "" {
		path += "?" + url.QueryEscape(targetURL)
	}
	body, err := c.do(ctx, http.MethodPut, path)
	if err != nil {
		// Browsers predating the PUT requirement accept GET only and reject
		// the verb itself. Anything else (timeout, refused connection, 5xx)
		// must not trigger a retry: the PUT may have opened a tab already.
		if !rejectsPut(err) {
			return nil, fmt.Errorf("devtools: new tab: %w", err)
		}
		c.logger.Debug("PUT /json/new rejected, retrying with GET", zap.Error(err))
		body, err = c.get(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("devtools: new tab: %w", err)
		}
	}
	var target Target
	if err := json.Unmarshal(body, &target); err != nil {
		return nil, fmt.Errorf("devtools: decode new tab: %w", err)
	}
	return &target, nil
}

// CloseTab asks the browser to close the target. The browser answers with a
// short status line, returned verbatim.
func (c *Client) CloseTab(ctx context.Context, targetID string) (string, error) {
	body, err := c.get(ctx, "/json/close/"+targetID)
	if err != nil {
		return "", fmt.Errorf("devtools: close tab %s: %w", targetID, err)
	}
	return strings.TrimSpace(string(body)), nil
}

// ActivateTab brings the target's tab to the foreground.
func (c *Client) ActivateTab(ctx context.Context, targetID string) (string, error) {
	body, err := c.get(ctx, "/json/activate/"+targetID)
	if err != nil {
		return "", fmt.Errorf("devtools: activate tab %s: %w", targetID, err)
	}
	return strings.TrimSpace(string(body)), nil
}

// ResolveWebSocketURL turns a target identifier into its WebSocket debugger
// URL. Values that already look like WebSocket URLs pass through untouched.
func (c *Client) ResolveWebSocketURL(ctx context.Context, targetOrURL string) (string, error) {
	if strings.HasPrefix(targetOrURL, "ws://") || strings.HasPrefix(targetOrURL, "wss://") {
		return targetOrURL, nil
	}

	targets, err := c.Targets(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range targets {
		if t.ID != targetOrURL {
			continue
		}
		if t.WebSocketDebuggerURL == "" {
			return "", fmt.Errorf("devtools: target %s has no webSocketDebuggerUrl (another client may be attached)", targetOrURL)
		}
		return t.WebSocketDebuggerURL, nil
	}
	return "", fmt.Errorf("devtools: no target with id %s", targetOrURL)
}

// rejectsPut reports whether the error is the browser refusing the HTTP verb
// rather than a transport or server failure.
func rejectsPut(err error) bool {
	var status *statusError
	if !errors.As(err, &status) {
		return false
	}
	return status.code == http.StatusMethodNotAllowed || status.code == http.StatusBadRequest
}

// statusError reports a discovery call answered with a non-200 status.
type statusError struct {
	method string
	path   string
	code   int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.method, e.path, e.code, e.body)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path)
}

func (c *Client) do(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{
			method: method,
			path:   path,
			code:   resp.StatusCode,
			body:   strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}
