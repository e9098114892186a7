package engine_test

import (
	"errors"
	"testing"

	"teamline/internal/engine"
	"teamline/internal/repo"
)

func TestSuggestScenarioSkillAndPriority(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "alpha"})
	rules := `[{"skill":"react","priority":3}]`
	c := env.mustUser(t, engine.UserCreateOptions{
		Name: "C", Availability: 1.0, AssignmentRules: rules,
	})
	var two = 2
	if err := env.Engine.Repo.UpdateUser(env.Ctx, c.ID, repo.UserUpdate{CurrentTasks: &two}); err != nil {
		t.Fatalf("seed current_tasks: %v", err)
	}
	env.mustTeamWith(t, p.ID, c.ID)
	task := env.mustTask(t, engine.TaskCreateOptions{
		ProjectID: p.ID, Title: "build ui", RequiredSkills: "react,testing",
	})

	res, err := env.Engine.SuggestAssignee(env.Ctx, task.ID, "tester")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !res.Found || res.CandidateID != c.ID {
		t.Fatalf("candidate = %+v", res)
	}
	// (10 + 3) * 1.0 - 2*0.5 = 12.00
	if res.Score == nil || *res.Score != 12.00 {
		t.Fatalf("score = %v, want 12.00", res.Score)
	}
	got, err := env.Engine.Repo.GetTask(env.Ctx, task.ID)
	if err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if got.SuggestedAssigneeID == nil || *got.SuggestedAssigneeID != c.ID {
		t.Fatalf("suggested_assignee_id not persisted: %+v", got.SuggestedAssigneeID)
	}
	if got.AssigneeID != nil {
		t.Fatalf("suggestion must not assign the task")
	}
}

func TestSuggestEmptyPoolIsInformational(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "alpha"})
	task := env.mustTask(t, engine.TaskCreateOptions{ProjectID: p.ID, Title: "orphan"})

	res, err := env.Engine.SuggestAssignee(env.Ctx, task.ID, "tester")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.Found || res.CandidateID != "" || res.Score != nil {
		t.Fatalf("expected no-candidate result, got %+v", res)
	}
	if res.Message == "" {
		t.Fatalf("empty pool should carry a message")
	}
}

func TestSuggestMalformedRulesScoreZero(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "alpha"})
	c := env.mustUser(t, engine.UserCreateOptions{
		Name: "C", Availability: 1.0, AssignmentRules: "not-json",
	})
	env.mustTeamWith(t, p.ID, c.ID)
	task := env.mustTask(t, engine.TaskCreateOptions{ProjectID: p.ID, Title: "t", RequiredSkills: "react"})

	res, err := env.Engine.SuggestAssignee(env.Ctx, task.ID, "tester")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !res.Found || res.Score == nil || *res.Score != 0 {
		t.Fatalf("malformed rules should score 0, got %+v", res)
	}
}

func TestSuggestUnknownTaskNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.SuggestAssignee(env.Ctx, "missing-task", "tester")
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSuggestTypeMatchAndTieBreak(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "alpha"})
	// both candidates match the task type for the same score; the first
	// created wins the tie
	first := env.mustUser(t, engine.UserCreateOptions{
		Name: "First", Availability: 1.0, AssignmentRules: `[{"type_id":7}]`,
	})
	second := env.mustUser(t, engine.UserCreateOptions{
		Name: "Second", Availability: 1.0, AssignmentRules: `[{"type_id":"7"}]`,
	})
	env.mustTeamWith(t, p.ID, first.ID, second.ID)
	typeID := int64(7)
	task := env.mustTask(t, engine.TaskCreateOptions{ProjectID: p.ID, Title: "t", TypeID: &typeID})

	res, err := env.Engine.SuggestAssignee(env.Ctx, task.ID, "tester")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if res.CandidateID != first.ID {
		t.Fatalf("tie went to %s, want first-created %s", res.CandidateID, first.ID)
	}
	if res.Score == nil || *res.Score != 15.00 {
		t.Fatalf("score = %v, want 15.00", res.Score)
	}
}

func TestSuggestAvailabilityFloorAndNegativeScore(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "alpha"})
	// zero availability gets floored at 0.1 instead of zeroing the match
	floored := env.mustUser(t, engine.UserCreateOptions{
		Name: "Floored", AssignmentRules: `[{"skill":"go"}]`,
	})
	busy := env.mustUser(t, engine.UserCreateOptions{Name: "Busy", Availability: 1.0})
	var load = 4
	if err := env.Engine.Repo.UpdateUser(env.Ctx, busy.ID, repo.UserUpdate{CurrentTasks: &load}); err != nil {
		t.Fatalf("seed load: %v", err)
	}
	env.mustTeamWith(t, p.ID, floored.ID, busy.ID)
	task := env.mustTask(t, engine.TaskCreateOptions{ProjectID: p.ID, Title: "t", RequiredSkills: "golang"})

	res, err := env.Engine.SuggestAssignee(env.Ctx, task.ID, "tester")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	// floored: 10*0.1 = 1.00 beats busy: 0 - 4*0.5 = -2.00
	if res.CandidateID != floored.ID {
		t.Fatalf("candidate = %s, want %s", res.CandidateID, floored.ID)
	}
	if res.Score == nil || *res.Score != 1.00 {
		t.Fatalf("score = %v, want 1.00", res.Score)
	}
}

func TestSuggestAllNegativeStillPicksBest(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "alpha"})
	only := env.mustUser(t, engine.UserCreateOptions{Name: "Only", Availability: 1.0})
	var load = 3
	if err := env.Engine.Repo.UpdateUser(env.Ctx, only.ID, repo.UserUpdate{CurrentTasks: &load}); err != nil {
		t.Fatalf("seed load: %v", err)
	}
	env.mustTeamWith(t, p.ID, only.ID)
	task := env.mustTask(t, engine.TaskCreateOptions{ProjectID: p.ID, Title: "t"})

	res, err := env.Engine.SuggestAssignee(env.Ctx, task.ID, "tester")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !res.Found || res.CandidateID != only.ID {
		t.Fatalf("result = %+v", res)
	}
	if res.Score == nil || *res.Score != -1.50 {
		t.Fatalf("score = %v, want -1.50", res.Score)
	}
}
