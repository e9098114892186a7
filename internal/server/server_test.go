package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"

	"teamline/internal/config"
	"teamline/internal/db"
	"teamline/internal/engine"
	"teamline/internal/migrate"
)

type testServer struct {
	URL    string
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	workspace := t.TempDir()
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	cfg := config.Default("teamline")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := engine.New(conn, cfg)
	handler, err := New(Config{
		Engine:   e,
		BasePath: "/v0",
		Auth:     AuthConfig{AllowLegacyUserHeader: true},
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

var actorHeader = map[string]string{"X-User-Id": "tester"}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func createForTest(t *testing.T, srv *testServer, method, path string, body any) map[string]any {
	t.Helper()
	res, data := doJSON(t, srv.Client(), method, srv.URL+path, body, actorHeader)
	if res.StatusCode >= 300 {
		t.Fatalf("%s %s status %d: %s", method, path, res.StatusCode, string(data))
	}
	var out map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("unmarshal %s: %v", path, err)
		}
	}
	return out
}

func TestAuthRequired(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	res, _ := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/users", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}
	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", res.StatusCode)
	}
}

func TestWorkloadReportEndpoint(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	createForTest(t, srv, http.MethodPost, "/v0/projects", map[string]any{
		"id": "p1", "name": "alpha", "workload_factor": 2.0,
	})
	createForTest(t, srv, http.MethodPost, "/v0/users", map[string]any{
		"id": "u1", "name": "Alice", "score": 2.0,
	})
	createForTest(t, srv, http.MethodPost, "/v0/projects/p1/tasks", map[string]any{
		"title": "heavy", "workload_weight": 10.0, "assignee_id": "u1",
	})

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/reports/workload", nil, actorHeader)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", res.StatusCode, string(data))
	}
	var report struct {
		Entries []struct {
			UserID               string  `json:"user_id"`
			GlobalWorkload       float64 `json:"global_workload"`
			WorkloadBalanceIndex float64 `json:"workload_balance_index"`
			WorkloadAssessment   string  `json:"workload_assessment"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(report.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(report.Entries))
	}
	e := report.Entries[0]
	if e.UserID != "u1" || e.GlobalWorkload != 10.00 || e.WorkloadBalanceIndex != 0.50 || e.WorkloadAssessment != "Optimal" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestSuggestAssigneeEndpoint(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	createForTest(t, srv, http.MethodPost, "/v0/projects", map[string]any{"id": "p1", "name": "alpha"})
	createForTest(t, srv, http.MethodPost, "/v0/users", map[string]any{
		"id": "u1", "name": "Alice", "availability": 1.0,
		"assignment_rules": `[{"skill":"react","priority":3}]`,
	})
	team := createForTest(t, srv, http.MethodPost, "/v0/projects/p1/teams", map[string]any{"name": "core"})
	teamID := team["team"].(map[string]any)["id"].(string)
	createForTest(t, srv, http.MethodPut, "/v0/teams/"+teamID+"/members/u1", nil)
	task := createForTest(t, srv, http.MethodPost, "/v0/projects/p1/tasks", map[string]any{
		"title": "build ui", "required_skills": "react,testing",
	})
	taskID := task["task"].(map[string]any)["id"].(string)

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks/"+taskID+"/suggest-assignee", nil, actorHeader)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", res.StatusCode, string(data))
	}
	var out struct {
		Result struct {
			Found       bool     `json:"found"`
			CandidateID string   `json:"candidate_id"`
			Score       *float64 `json:"score"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Result.Found || out.Result.CandidateID != "u1" {
		t.Fatalf("result = %+v", out.Result)
	}
	if out.Result.Score == nil || *out.Result.Score != 13.00 {
		t.Fatalf("score = %v, want 13.00", out.Result.Score)
	}

	// suggestion is recorded on the task but does not assign it
	got := createForTest(t, srv, http.MethodGet, "/v0/tasks/"+taskID, nil)
	taskBody := got["task"].(map[string]any)
	if taskBody["suggested_assignee_id"] != "u1" {
		t.Fatalf("suggested_assignee_id = %v", taskBody["suggested_assignee_id"])
	}
	if _, assigned := taskBody["assignee_id"]; assigned {
		t.Fatalf("task must not be assigned by a suggestion")
	}
}

func TestSuggestAssigneeUnknownTask(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks/missing/suggest-assignee", nil, actorHeader)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d: %s", res.StatusCode, string(data))
	}
	var out struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Error.Code != "not_found" {
		t.Fatalf("code = %s, want not_found", out.Error.Code)
	}
}

func TestSuggestAssigneeEmptyPool(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	createForTest(t, srv, http.MethodPost, "/v0/projects", map[string]any{"id": "p1", "name": "alpha"})
	task := createForTest(t, srv, http.MethodPost, "/v0/projects/p1/tasks", map[string]any{"title": "orphan"})
	taskID := task["task"].(map[string]any)["id"].(string)

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks/"+taskID+"/suggest-assignee", nil, actorHeader)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", res.StatusCode, string(data))
	}
	var out struct {
		Result struct {
			Found   bool   `json:"found"`
			Message string `json:"message"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Result.Found || out.Result.Message == "" {
		t.Fatalf("result = %+v", out.Result)
	}
}

func TestNotificationFlow(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	createForTest(t, srv, http.MethodPost, "/v0/projects", map[string]any{"id": "p1", "name": "alpha"})
	createForTest(t, srv, http.MethodPost, "/v0/users", map[string]any{"id": "u1", "name": "Alice"})
	createForTest(t, srv, http.MethodPost, "/v0/projects/p1/tasks", map[string]any{
		"title": "t", "assignee_id": "u1",
	})

	aliceHeader := map[string]string{"X-User-Id": "u1"}
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/notifications?unread_only=true", nil, aliceHeader)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", res.StatusCode, string(data))
	}
	var out struct {
		Notifications []struct {
			ID   string `json:"id"`
			Kind string `json:"kind"`
		} `json:"notifications"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Notifications) != 1 || out.Notifications[0].Kind != "task.assigned" {
		t.Fatalf("notifications = %+v", out.Notifications)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/notifications/"+out.Notifications[0].ID+"/read", nil, aliceHeader)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("read status = %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/notifications?unread_only=true", nil, aliceHeader)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Notifications) != 0 {
		t.Fatalf("unread after read = %d, want 0", len(out.Notifications))
	}
}
