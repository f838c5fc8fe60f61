// Package client talks to a running codeclock daemon over its HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderramin/codeclock/internal/ledger"
	"github.com/alexanderramin/codeclock/internal/server"
	"github.com/alexanderramin/codeclock/internal/summary"
)

// ErrDaemonUnavailable is returned when the daemon cannot be reached.
var ErrDaemonUnavailable = errors.New("codeclock daemon is not running")

// APIError is a non-2xx answer from the daemon.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	base string
	http *http.Client
}

// New returns a client for the daemon listening on addr (host:port or URL).
func New(addr string) *Client {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Status(ctx context.Context) (server.StatusResponse, error) {
	var out server.StatusResponse
	err := c.do(ctx, http.MethodGet, "/status", nil, nil, &out)
	return out, err
}

func (c *Client) Totals(ctx context.Context) (summary.Totals, error) {
	var out summary.Totals
	err := c.do(ctx, http.MethodGet, "/totals", nil, nil, &out)
	return out, err
}

func (c *Client) Summary(ctx context.Context, q ledger.Query) (summary.Report, error) {
	var out summary.Report
	err := c.do(ctx, http.MethodGet, "/summary", queryValues(q), nil, &out)
	return out, err
}

func (c *Client) Entries(ctx context.Context, q ledger.Query) ([]server.Entry, error) {
	var out []server.Entry
	err := c.do(ctx, http.MethodGet, "/entries", queryValues(q), nil, &out)
	return out, err
}

func (c *Client) Branches(ctx context.Context, project string) ([]string, error) {
	var out server.BranchesResponse
	err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(project)+"/branches", nil, nil, &out)
	return out.Branches, err
}

// Command runs one of start, stop, pause, resume or save and returns the
// resulting status.
func (c *Client) Command(ctx context.Context, action string) (server.StatusResponse, error) {
	var out server.StatusResponse
	err := c.do(ctx, http.MethodPost, "/tracking/"+action, nil, nil, &out)
	return out, err
}

func (c *Client) ResetToday(ctx context.Context) (int, error) {
	var out server.ResetResponse
	err := c.do(ctx, http.MethodPost, "/reset/today", nil, nil, &out)
	return out.Removed, err
}

func (c *Client) ResetAll(ctx context.Context, confirm string) (int, error) {
	body, err := json.Marshal(server.ResetAllRequest{Confirm: confirm})
	if err != nil {
		return 0, err
	}
	var out server.ResetResponse
	err = c.do(ctx, http.MethodPost, "/reset/all", nil, bytes.NewReader(body), &out)
	return out.Removed, err
}

// Import uploads a legacy JSON export.
func (c *Client) Import(ctx context.Context, export io.Reader) (int, error) {
	var out server.ImportResponse
	err := c.do(ctx, http.MethodPost, "/import", nil, export, &out)
	return out.Imported, err
}

func (c *Client) TestReminder(ctx context.Context) (server.ReminderTestResponse, error) {
	var out server.ReminderTestResponse
	err := c.do(ctx, http.MethodPost, "/reminders/test", nil, nil, &out)
	return out, err
}

func queryValues(q ledger.Query) url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("start", q.StartDate)
	set("end", q.EndDate)
	set("project", q.Project)
	set("branch", q.Branch)
	return v
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w at %s: %v", ErrDaemonUnavailable, c.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e server.ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
