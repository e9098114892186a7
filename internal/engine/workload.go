package engine

import (
	"context"
	"math"

	"teamline/internal/config"
	"teamline/internal/domain"
)

// workloadAcc accumulates one user's load across the whole workspace.
type workloadAcc struct {
	raw      float64
	pending  int
	done     int
	projects map[string]struct{}
}

// ComputeGlobalWorkloadSummary builds the per-user workload report over
// every task in the workspace. Every user appears, including ones with no
// assignments. Terminal tasks count toward the done total but add no load;
// malformed task rows (dangling project, status, or assignee) are dropped
// by the repo query before they reach the fold.
func (e Engine) ComputeGlobalWorkloadSummary(ctx context.Context) ([]domain.WorkloadSummaryEntry, error) {
	sc := e.scoring()
	done := make(map[string]struct{}, len(sc.DoneStatuses))
	for _, name := range sc.DoneStatuses {
		done[name] = struct{}{}
	}

	users, err := e.Repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	accs := make(map[string]*workloadAcc, len(users))
	for _, u := range users {
		accs[u.ID] = &workloadAcc{projects: make(map[string]struct{})}
	}

	loads, err := e.Repo.ListAssignedTaskLoads(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range loads {
		acc, ok := accs[row.AssigneeID]
		if !ok {
			continue
		}
		acc.projects[row.ProjectID] = struct{}{}
		if _, terminal := done[row.StatusName]; terminal {
			acc.done++
			continue
		}
		acc.pending++
		weight := 0.0
		if row.WorkloadWeight.Valid && row.WorkloadWeight.Float64 > 0 {
			weight = row.WorkloadWeight.Float64
		}
		factor := 1.0
		if row.WorkloadFactor.Valid && row.WorkloadFactor.Float64 > 0 {
			factor = row.WorkloadFactor.Float64
		}
		acc.raw += weight * factor
	}

	entries := make([]domain.WorkloadSummaryEntry, 0, len(users))
	for _, u := range users {
		acc := accs[u.ID]
		score := u.Score
		if score <= 0 {
			score = 1.0
		}
		final := acc.raw / score
		index := final / sc.WorkloadThreshold
		entries = append(entries, domain.WorkloadSummaryEntry{
			UserID:                u.ID,
			Name:                  u.Name,
			UserScore:             round2(score),
			GlobalTasksCount:      acc.pending,
			TotalTasksDone:        acc.done,
			TotalProjectsInvolved: len(acc.projects),
			GlobalWorkload:        round2(final),
			WorkloadAssessment:    assessWorkload(index),
			WorkloadBalanceIndex:  round2(index),
		})
	}
	return entries, nil
}

// assessWorkload maps a balance index onto its label. The bands cascade
// from the top, so a user with zero load lands in Underutilized.
func assessWorkload(index float64) string {
	switch {
	case index > 1.5:
		return "Highly Overloaded"
	case index > 1.0:
		return "Overloaded"
	case index < 0.5:
		return "Underutilized"
	default:
		return "Optimal"
	}
}

func (e Engine) scoring() config.Scoring {
	if e.Config != nil {
		return e.Config.Scoring
	}
	return config.Default("").Scoring
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
