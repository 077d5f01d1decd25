package remote

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

	"github.com/umputun/newsdesk/pkg/domain"
)

const (
	// DefaultTimeout bounds every call to the remote store
	DefaultTimeout = 30 * time.Second

	// maxBodySize limits how much of a response is read
	maxBodySize = 10 * 1024 * 1024
)

// Client talks to the remote news store. The store owns all persistent state,
// the client never caches or retries anything.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient makes a client for the store at baseURL. Zero timeout means DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// ListNews reads the news collection, optionally filtered by asset and source
func (c *Client) ListNews(ctx context.Context, filter domain.NewsFilter) ([]domain.NewsItem, error) {
	path := "/news"
	if q := filter.Query(); len(q) > 0 {
		path += "?" + q.Encode()
	}
	var items []domain.NewsItem
	if err := c.call(ctx, "list news", http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.NewsItem{}
	}
	return items, nil
}

// UpdateNewsField sends a partial update of a single field
func (c *Client) UpdateNewsField(ctx context.Context, id domain.ID, field domain.Field, value string) error {
	body := map[string]string{string(field): value}
	return c.call(ctx, "update news field", http.MethodPut, "/news/"+url.PathEscape(id.String()), body, nil)
}

// DeleteNews removes one news item
func (c *Client) DeleteNews(ctx context.Context, id domain.ID) error {
	return c.call(ctx, "delete news", http.MethodDelete, "/news/"+url.PathEscape(id.String()), nil, nil)
}

// DeleteAllNews removes every news item
func (c *Client) DeleteAllNews(ctx context.Context) error {
	return c.call(ctx, "delete all news", http.MethodDelete, "/news/all", nil, nil)
}

// PublishNews publishes one news item
func (c *Client) PublishNews(ctx context.Context, id domain.ID) error {
	return c.call(ctx, "publish news", http.MethodPost, "/news/"+url.PathEscape(id.String())+"/publish", nil, nil)
}

// ListSchedules reads the schedule collection
func (c *Client) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	var res []domain.Schedule
	if err := c.call(ctx, "list schedules", http.MethodGet, "/schedules", nil, &res); err != nil {
		return nil, err
	}
	if res == nil {
		res = []domain.Schedule{}
	}
	return res, nil
}

// CreateSchedule creates a schedule from a validated request
func (c *Client) CreateSchedule(ctx context.Context, req domain.CreateScheduleRequest) error {
	return c.call(ctx, "create schedule", http.MethodPost, "/schedules", req, nil)
}

// ToggleSchedule flips the active flag of a schedule
func (c *Client) ToggleSchedule(ctx context.Context, id domain.ID) error {
	return c.call(ctx, "toggle schedule", http.MethodPut, "/schedules/"+url.PathEscape(id.String())+"/toggle", nil, nil)
}

// DeleteSchedule removes a schedule
func (c *Client) DeleteSchedule(ctx context.Context, id domain.ID) error {
	return c.call(ctx, "delete schedule", http.MethodDelete, "/schedules/"+url.PathEscape(id.String()), nil, nil)
}

// RunSchedule triggers an immediate one-off run, regardless of the active flag
func (c *Client) RunSchedule(ctx context.Context, id domain.ID) error {
	return c.call(ctx, "run schedule", http.MethodPost, "/schedules/"+url.PathEscape(id.String())+"/run", nil, nil)
}

// call performs a request, classifying failures as transport, rejected or malformed.
// out is decoded only for successful responses and only when not nil.
func (c *Client) call(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return transportError(op, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Kind: KindRejected, Op: op, Status: resp.StatusCode, Detail: errorDetail(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindMalformed, Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}

// errorDetail extracts a message from error bodies like {"detail": "..."} or {"error": "..."}
func errorDetail(data []byte) string {
	var payload struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	switch v := payload.Detail.(type) {
	case string:
		return v
	case nil:
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return payload.Error
}
