package engine_test

import (
	"context"
	"testing"
	"time"

	"teamline/internal/config"
	"teamline/internal/db"
	"teamline/internal/domain"
	"teamline/internal/engine"
	"teamline/internal/migrate"
	"teamline/internal/repo"
)

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Default("proj-1")
	eng := engine.New(conn, cfg)
	// deterministic clock that still orders rows by creation
	tick := 0
	eng.Now = func() time.Time {
		tick++
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(tick) * time.Second)
	}
	return testEnv{Engine: eng, Ctx: context.Background()}
}

func (env testEnv) mustUser(t *testing.T, opts engine.UserCreateOptions) domain.User {
	t.Helper()
	if opts.ActorID == "" {
		opts.ActorID = "tester"
	}
	u, err := env.Engine.CreateUser(env.Ctx, opts)
	if err != nil {
		t.Fatalf("create user %s: %v", opts.Name, err)
	}
	return u
}

func (env testEnv) mustProject(t *testing.T, opts engine.ProjectCreateOptions) domain.Project {
	t.Helper()
	if opts.ActorID == "" {
		opts.ActorID = "tester"
	}
	p, err := env.Engine.CreateProject(env.Ctx, opts)
	if err != nil {
		t.Fatalf("create project %s: %v", opts.Name, err)
	}
	return p
}

func (env testEnv) mustTask(t *testing.T, opts engine.TaskCreateOptions) domain.Task {
	t.Helper()
	if opts.ActorID == "" {
		opts.ActorID = "tester"
	}
	task, err := env.Engine.CreateTask(env.Ctx, opts)
	if err != nil {
		t.Fatalf("create task %s: %v", opts.Title, err)
	}
	return task
}

func (env testEnv) mustTeamWith(t *testing.T, projectID string, userIDs ...string) domain.Team {
	t.Helper()
	team, err := env.Engine.CreateTeam(env.Ctx, projectID, "core", "tester")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	for _, id := range userIDs {
		if err := env.Engine.AddTeamMember(env.Ctx, team.ID, id, "tester"); err != nil {
			t.Fatalf("add member %s: %v", id, err)
		}
	}
	return team
}

func (env testEnv) statusID(t *testing.T, name string) int64 {
	t.Helper()
	s, err := env.Engine.Repo.GetStatusByName(env.Ctx, name)
	if err != nil {
		t.Fatalf("status %s: %v", name, err)
	}
	return s.ID
}

func TestCreateTaskDefaultsToBacklog(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "alpha"})
	task := env.mustTask(t, engine.TaskCreateOptions{ProjectID: p.ID, Title: "first"})
	if task.StatusID != env.statusID(t, "Backlog") {
		t.Fatalf("status = %d, want Backlog", task.StatusID)
	}
}

func TestAssignmentAdjustsCounterAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "alpha"})
	alice := env.mustUser(t, engine.UserCreateOptions{Name: "Alice"})
	bob := env.mustUser(t, engine.UserCreateOptions{Name: "Bob"})

	task := env.mustTask(t, engine.TaskCreateOptions{ProjectID: p.ID, Title: "wire it", AssigneeID: alice.ID})
	got, err := env.Engine.Repo.GetUser(env.Ctx, alice.ID)
	if err != nil || got.CurrentTasks != 1 {
		t.Fatalf("alice current_tasks = %d (%v), want 1", got.CurrentTasks, err)
	}

	// reassign: alice decremented, bob incremented and notified
	if _, err := env.Engine.UpdateTask(env.Ctx, engine.TaskUpdateOptions{
		ID: task.ID, Assign: &bob.ID, AssignProvided: true, ActorID: "tester",
	}); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	got, _ = env.Engine.Repo.GetUser(env.Ctx, alice.ID)
	if got.CurrentTasks != 0 {
		t.Fatalf("alice current_tasks = %d, want 0", got.CurrentTasks)
	}
	got, _ = env.Engine.Repo.GetUser(env.Ctx, bob.ID)
	if got.CurrentTasks != 1 {
		t.Fatalf("bob current_tasks = %d, want 1", got.CurrentTasks)
	}
	notes, err := env.Engine.Repo.ListNotifications(env.Ctx, repo.NotificationFilters{UserID: bob.ID})
	if err != nil || len(notes) != 1 {
		t.Fatalf("bob notifications = %d (%v), want 1", len(notes), err)
	}
	if notes[0].Kind != "task.assigned" {
		t.Fatalf("kind = %s", notes[0].Kind)
	}
}

func TestUnassignClampsCounterAtZero(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "alpha"})
	alice := env.mustUser(t, engine.UserCreateOptions{Name: "Alice"})
	task := env.mustTask(t, engine.TaskCreateOptions{ProjectID: p.ID, Title: "t", AssigneeID: alice.ID})

	var empty string
	for i := 0; i < 2; i++ {
		if _, err := env.Engine.UpdateTask(env.Ctx, engine.TaskUpdateOptions{
			ID: task.ID, Assign: &empty, AssignProvided: true, ActorID: "tester",
		}); err != nil {
			t.Fatalf("unassign: %v", err)
		}
	}
	got, _ := env.Engine.Repo.GetUser(env.Ctx, alice.ID)
	if got.CurrentTasks != 0 {
		t.Fatalf("current_tasks = %d, want 0", got.CurrentTasks)
	}
}

func TestCommentNotifiesAssignee(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "alpha"})
	alice := env.mustUser(t, engine.UserCreateOptions{Name: "Alice"})
	bob := env.mustUser(t, engine.UserCreateOptions{Name: "Bob"})
	task := env.mustTask(t, engine.TaskCreateOptions{ProjectID: p.ID, Title: "t", AssigneeID: alice.ID})

	if _, err := env.Engine.AddComment(env.Ctx, task.ID, bob.ID, "looks off"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	// self-comment does not notify
	if _, err := env.Engine.AddComment(env.Ctx, task.ID, alice.ID, "on it"); err != nil {
		t.Fatalf("self comment: %v", err)
	}
	notes, err := env.Engine.Repo.ListNotifications(env.Ctx, repo.NotificationFilters{UserID: alice.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var commented int
	for _, n := range notes {
		if n.Kind == "task.commented" {
			commented++
		}
	}
	if commented != 1 {
		t.Fatalf("task.commented notifications = %d, want 1", commented)
	}
}
