// Package client provides a programmatic client for the weekplanner API and
// the Planner view-model that mirrors server state for a weekly calendar.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"weekplanner/domain"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Client talks to the weekplanner HTTP API.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New creates a client for the API at baseURL (e.g. "http://localhost:3000").
// When hc is nil, http.DefaultClient is used.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

// ListTasks fetches tasks matching the filter. Zero-valued filter fields are
// omitted from the query string.
func (c *Client) ListTasks(ctx context.Context, f domain.Filter) ([]domain.Task, error) {
	q := url.Values{}
	if f.Member != "" {
		q.Set("member", f.Member)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	target := c.baseURL + "/api/tasks"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, target, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// GetTask fetches a single task by id.
func (c *Client) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	var task domain.Task
	err := c.do(ctx, http.MethodGet, c.taskURL(id), nil, &task)
	return task, err
}

// CreateTask creates a new task and returns it with its assigned id.
func (c *Client) CreateTask(ctx context.Context, n domain.NewTask) (domain.Task, error) {
	var task domain.Task
	err := c.do(ctx, http.MethodPost, c.baseURL+"/api/tasks", n, &task)
	return task, err
}

// UpdateTask applies a partial update and returns the full updated record.
func (c *Client) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error) {
	var task domain.Task
	err := c.do(ctx, http.MethodPut, c.taskURL(id), patch, &task)
	return task, err
}

// DeleteTask removes a task permanently.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, c.taskURL(id), nil, nil)
}

func (c *Client) taskURL(id int64) string {
	return c.baseURL + "/api/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	return sonic.ConfigStd.NewDecoder(resp.Body).Decode(out)
}

func errorMessage(body io.Reader) string {
	var resp struct {
		Error string `json:"error"`
	}
	if err := sonic.ConfigStd.NewDecoder(body).Decode(&resp); err != nil || resp.Error == "" {
		return "request failed"
	}
	return resp.Error
}
