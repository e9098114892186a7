package engine_test

import (
	"testing"

	"teamline/internal/domain"
	"teamline/internal/engine"
)

func findEntry(t *testing.T, entries []domain.WorkloadSummaryEntry, userID string) domain.WorkloadSummaryEntry {
	t.Helper()
	for _, e := range entries {
		if e.UserID == userID {
			return e
		}
	}
	t.Fatalf("no summary entry for %s", userID)
	return domain.WorkloadSummaryEntry{}
}

func TestWorkloadIdleUserIsUnderutilized(t *testing.T) {
	env := newTestEnv(t)
	u := env.mustUser(t, engine.UserCreateOptions{Name: "Idle"})

	entries, err := env.Engine.ComputeGlobalWorkloadSummary(env.Ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	e := findEntry(t, entries, u.ID)
	if e.GlobalWorkload != 0 || e.WorkloadBalanceIndex != 0 {
		t.Fatalf("workload = %v index = %v, want 0", e.GlobalWorkload, e.WorkloadBalanceIndex)
	}
	// zero index falls in the <0.5 band
	if e.WorkloadAssessment != "Underutilized" {
		t.Fatalf("assessment = %s, want Underutilized", e.WorkloadAssessment)
	}
	if e.UserScore != 1.0 {
		t.Fatalf("score defaulted to %v, want 1.0", e.UserScore)
	}
}

func TestWorkloadScenarioWeightedProject(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "hard", WorkloadFactor: 2.0})
	u := env.mustUser(t, engine.UserCreateOptions{Name: "U", Score: 2.0})
	env.mustTask(t, engine.TaskCreateOptions{ProjectID: p.ID, Title: "heavy", WorkloadWeight: 10, AssigneeID: u.ID})

	entries, err := env.Engine.ComputeGlobalWorkloadSummary(env.Ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	e := findEntry(t, entries, u.ID)
	// raw 10*2.0=20, /score 2.0 => 10, /threshold 20 => 0.50
	if e.GlobalWorkload != 10.00 {
		t.Fatalf("global workload = %v, want 10.00", e.GlobalWorkload)
	}
	if e.WorkloadBalanceIndex != 0.50 {
		t.Fatalf("balance index = %v, want 0.50", e.WorkloadBalanceIndex)
	}
	// 0.50 is not strictly below 0.5
	if e.WorkloadAssessment != "Optimal" {
		t.Fatalf("assessment = %s, want Optimal", e.WorkloadAssessment)
	}
	if e.GlobalTasksCount != 1 || e.TotalTasksDone != 0 || e.TotalProjectsInvolved != 1 {
		t.Fatalf("counts = %d/%d/%d", e.GlobalTasksCount, e.TotalTasksDone, e.TotalProjectsInvolved)
	}
}

func TestWorkloadDoneTasksAddNoLoad(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "alpha"})
	u := env.mustUser(t, engine.UserCreateOptions{Name: "U"})
	env.mustTask(t, engine.TaskCreateOptions{
		ProjectID: p.ID, Title: "shipped", WorkloadWeight: 100,
		StatusID: env.statusID(t, "Done"), AssigneeID: u.ID,
	})
	env.mustTask(t, engine.TaskCreateOptions{
		ProjectID: p.ID, Title: "wrapped", WorkloadWeight: 50,
		StatusID: env.statusID(t, "Closed"), AssigneeID: u.ID,
	})

	entries, err := env.Engine.ComputeGlobalWorkloadSummary(env.Ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	e := findEntry(t, entries, u.ID)
	if e.GlobalWorkload != 0 {
		t.Fatalf("global workload = %v, want 0", e.GlobalWorkload)
	}
	if e.TotalTasksDone != 2 || e.GlobalTasksCount != 0 {
		t.Fatalf("done = %d pending = %d", e.TotalTasksDone, e.GlobalTasksCount)
	}
	// done tasks still count toward project involvement
	if e.TotalProjectsInvolved != 1 {
		t.Fatalf("projects = %d, want 1", e.TotalProjectsInvolved)
	}
}

func TestWorkloadDistinctProjectsCountedOnce(t *testing.T) {
	env := newTestEnv(t)
	p1 := env.mustProject(t, engine.ProjectCreateOptions{Name: "p1"})
	p2 := env.mustProject(t, engine.ProjectCreateOptions{Name: "p2"})
	u := env.mustUser(t, engine.UserCreateOptions{Name: "U"})
	env.mustTask(t, engine.TaskCreateOptions{ProjectID: p1.ID, Title: "a", WorkloadWeight: 1, AssigneeID: u.ID})
	env.mustTask(t, engine.TaskCreateOptions{ProjectID: p1.ID, Title: "b", WorkloadWeight: 1, AssigneeID: u.ID})
	env.mustTask(t, engine.TaskCreateOptions{ProjectID: p2.ID, Title: "c", WorkloadWeight: 1, AssigneeID: u.ID})

	entries, err := env.Engine.ComputeGlobalWorkloadSummary(env.Ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	e := findEntry(t, entries, u.ID)
	if e.TotalProjectsInvolved != 2 {
		t.Fatalf("projects = %d, want 2", e.TotalProjectsInvolved)
	}
	if e.GlobalTasksCount != 3 {
		t.Fatalf("pending = %d, want 3", e.GlobalTasksCount)
	}
}

func TestWorkloadOverloadBands(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "alpha"})
	over := env.mustUser(t, engine.UserCreateOptions{Name: "Over"})
	hot := env.mustUser(t, engine.UserCreateOptions{Name: "Hot"})
	// threshold 20: weight 25 -> index 1.25, weight 40 -> index 2.0
	env.mustTask(t, engine.TaskCreateOptions{ProjectID: p.ID, Title: "a", WorkloadWeight: 25, AssigneeID: over.ID})
	env.mustTask(t, engine.TaskCreateOptions{ProjectID: p.ID, Title: "b", WorkloadWeight: 40, AssigneeID: hot.ID})

	entries, err := env.Engine.ComputeGlobalWorkloadSummary(env.Ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got := findEntry(t, entries, over.ID).WorkloadAssessment; got != "Overloaded" {
		t.Fatalf("assessment = %s, want Overloaded", got)
	}
	if got := findEntry(t, entries, hot.ID).WorkloadAssessment; got != "Highly Overloaded" {
		t.Fatalf("assessment = %s, want Highly Overloaded", got)
	}
}

func TestWorkloadRoundingIsStable(t *testing.T) {
	env := newTestEnv(t)
	p := env.mustProject(t, engine.ProjectCreateOptions{Name: "alpha"})
	u := env.mustUser(t, engine.UserCreateOptions{Name: "U", Score: 3.0})
	env.mustTask(t, engine.TaskCreateOptions{ProjectID: p.ID, Title: "a", WorkloadWeight: 10, AssigneeID: u.ID})

	entries, err := env.Engine.ComputeGlobalWorkloadSummary(env.Ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	e := findEntry(t, entries, u.ID)
	// 10/3 rounds to 3.33 and stays there on re-rounding
	if e.GlobalWorkload != 3.33 {
		t.Fatalf("global workload = %v, want 3.33", e.GlobalWorkload)
	}
	again, err := env.Engine.ComputeGlobalWorkloadSummary(env.Ctx)
	if err != nil {
		t.Fatalf("second summary: %v", err)
	}
	if findEntry(t, again, u.ID) != e {
		t.Fatalf("summary not stable across runs")
	}
}
