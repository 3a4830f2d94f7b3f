// Package redfish implements the session-scoped transport against one
// BMC's Redfish service: a TCP connectivity probe, session login and
// logout, and authenticated resource fetches returning loose documents.
package redfish

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
)

const sessionsPath = "/redfish/v1/SessionService/Sessions"

// State tracks the session lifecycle of a Client. Transitions are
// strictly forward: Disconnected -> Probed -> Authenticated -> Closed.
type State int

const (
	StateDisconnected State = iota
	StateProbed
	StateAuthenticated
	StateClosed
)

// Client is an authenticated session handle bound to one BMC endpoint,
// valid for a single poll cycle.
type Client struct {
	endpoint string
	username string
	password string
	http     *http.Client
	logger   *slog.Logger

	state      State
	token      string
	sessionURI string
}

// NewClient creates a client for the given endpoint, e.g.
// "https://host-ipmi". The timeout bounds every request made through
// the session.
func NewClient(endpoint, username, password string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		username: username,
		password: password,
		logger:   logger,
		state:    StateDisconnected,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				// BMCs ship self-signed certificates.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// State returns the current session lifecycle state.
func (c *Client) State() State {
	return c.state
}

// Probe opens a short-lived TCP connection to the management port to
// confirm the target is reachable before attempting the expensive
// session login.
func (c *Client) Probe(timeout time.Duration) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.endpoint, err)
	}

	host := u.Host
	if u.Port() == "" {
		port := "443"
		if u.Scheme == "http" {
			port = "80"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	conn, err := net.DialTimeout("tcp", host, timeout)
	if err != nil {
		return fmt.Errorf("connection check failed for %s: %w", host, err)
	}
	conn.Close()

	c.state = StateProbed
	return nil
}

// Login establishes a Redfish session and stores its token. Transport
// failures are retried up to maxRetries additional times; an explicit
// rejection from the BMC (4xx) is not retried.
func (c *Client) Login(ctx context.Context, maxRetries int) error {
	body, err := json.Marshal(map[string]string{
		"UserName": c.username,
		"Password": c.password,
	})
	if err != nil {
		return fmt.Errorf("marshal session request: %w", err)
	}

	err = retry.Do(
		func() error { return c.createSession(ctx, body) },
		retry.Attempts(uint(maxRetries)+1),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	c.state = StateAuthenticated
	return nil
}

func (c *Client) createSession(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+sessionsPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("session create failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("session create returned HTTP %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Credential rejection will not heal on retry.
			return retry.Unrecoverable(err)
		}
		return err
	}

	token := resp.Header.Get("X-Auth-Token")
	if token == "" {
		return retry.Unrecoverable(errors.New("session create returned no X-Auth-Token"))
	}

	c.token = token
	c.sessionURI = resp.Header.Get("Location")
	return nil
}

// Get fetches one resource path through the active session. Any
// transport error or non-200 status is returned as an error; callers
// decide whether the resource was load-bearing.
func (c *Client) Get(ctx context.Context, path string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, path)
	}

	var doc map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

// Logout deletes the session on the BMC. Safe to call from any state;
// without an established session it is a no-op.
func (c *Client) Logout(ctx context.Context) error {
	defer func() { c.state = StateClosed }()

	if c.token == "" || c.sessionURI == "" {
		return nil
	}

	uri := c.sessionURI
	if !strings.HasPrefix(uri, "http") {
		uri = c.endpoint + uri
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, uri, nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	req.Header.Set("X-Auth-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	c.token = ""
	c.sessionURI = ""

	if resp.StatusCode >= 300 {
		return fmt.Errorf("logout returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Members extracts the member resource paths from a collection
// document. A missing or malformed Members field yields an empty
// slice, never an error.
func Members(doc map[string]interface{}) []string {
	raw, ok := doc["Members"].([]interface{})
	if !ok {
		return nil
	}

	paths := make([]string, 0, len(raw))
	for _, entry := range raw {
		member, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if id, ok := member["@odata.id"].(string); ok && id != "" {
			paths = append(paths, id)
		}
	}
	return paths
}
