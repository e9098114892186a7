package teamlinesdk

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
)

// Client is a minimal Teamline HTTP API client.
type Client struct {
	BaseURL     string
	ProjectID   string
	BearerToken string
	UserID      string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL, projectID string) *Client {
	return &Client{
		BaseURL:   baseURL,
		ProjectID: projectID,
		Timeout:   10 * time.Second,
	}
}

// Task represents the API task model (partial).
type Task struct {
	ID                  string  `json:"id"`
	ProjectID           string  `json:"project_id"`
	Title               string  `json:"title"`
	StatusID            int64   `json:"status_id"`
	WorkloadWeight      float64 `json:"workload_weight"`
	AssigneeID          *string `json:"assignee_id,omitempty"`
	SuggestedAssigneeID *string `json:"suggested_assignee_id,omitempty"`
}

// WorkloadEntry is one user's row of the workload report.
type WorkloadEntry struct {
	UserID                string  `json:"user_id"`
	Name                  string  `json:"name"`
	UserScore             float64 `json:"user_score"`
	GlobalTasksCount      int     `json:"global_tasks_count"`
	TotalTasksDone        int     `json:"total_tasks_done"`
	TotalProjectsInvolved int     `json:"total_projects_involved"`
	GlobalWorkload        float64 `json:"global_workload"`
	WorkloadAssessment    string  `json:"workload_assessment"`
	WorkloadBalanceIndex  float64 `json:"workload_balance_index"`
}

// Suggestion is the recorded outcome of an assignee suggestion.
type Suggestion struct {
	Found       bool     `json:"found"`
	CandidateID string   `json:"candidate_id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	Message     string   `json:"message"`
}

// Notification is a per-user inbox entry.
type Notification struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Kind      string  `json:"kind"`
	Message   string  `json:"message"`
	TaskID    *string `json:"task_id,omitempty"`
	Read      bool    `json:"read"`
	CreatedAt string  `json:"created_at"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// CreateTask creates a task in the client's project.
func (c *Client) CreateTask(ctx context.Context, title string, workloadWeight float64, requiredSkills string) (Task, error) {
	body := map[string]any{
		"title": title,
	}
	if workloadWeight > 0 {
		body["workload_weight"] = workloadWeight
	}
	if requiredSkills != "" {
		body["required_skills"] = requiredSkills
	}
	var resp struct {
		Task Task `json:"task"`
	}
	err := c.do(ctx, http.MethodPost, c.projectPath("tasks"), body, &resp)
	return resp.Task, err
}

// GetTask fetches a task by id.
func (c *Client) GetTask(ctx context.Context, taskID string) (Task, error) {
	var resp struct {
		Task Task `json:"task"`
	}
	endpoint := fmt.Sprintf("v0/tasks/%s", url.PathEscape(taskID))
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Task, err
}

// WorkloadSummary returns the global per-user workload report.
func (c *Client) WorkloadSummary(ctx context.Context) ([]WorkloadEntry, error) {
	var resp struct {
		Entries []WorkloadEntry `json:"entries"`
	}
	err := c.do(ctx, http.MethodGet, "v0/reports/workload", nil, &resp)
	return resp.Entries, err
}

// SuggestAssignee scores the task's team members and records the best
// candidate on the task.
func (c *Client) SuggestAssignee(ctx context.Context, taskID string) (Suggestion, error) {
	var resp struct {
		Result Suggestion `json:"result"`
	}
	endpoint := fmt.Sprintf("v0/tasks/%s/suggest-assignee", url.PathEscape(taskID))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp.Result, err
}

// Notifications lists the acting user's notifications.
func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]Notification, error) {
	endpoint := "v0/notifications"
	if unreadOnly {
		endpoint += "?unread_only=true"
	}
	var resp struct {
		Notifications []Notification `json:"notifications"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Notifications, err
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("v0/notifications/%s/read", url.PathEscape(id))
	return c.do(ctx, http.MethodPost, endpoint, nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.UserID != "":
		req.Header.Set("X-User-Id", c.UserID)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) projectPath(p string) string {
	project := url.PathEscape(c.ProjectID)
	return fmt.Sprintf("v0/projects/%s/%s", project, strings.TrimLeft(p, "/"))
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
