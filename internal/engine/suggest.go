package engine

import (
	"context"
	"strings"
	"time"

	"teamline/internal/domain"
	"teamline/internal/events"
)

// SuggestAssignee scores every team member of the task's project against
// the task and records the best candidate on the task row. The recorded
// suggestion is advisory; it does not assign the task. A project with no
// team members yields Found=false, which is not an error.
func (e Engine) SuggestAssignee(ctx context.Context, taskID, actorID string) (domain.SuggestionResult, error) {
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.SuggestionResult{}, err
	}
	pool, err := e.Repo.ListProjectMembers(ctx, t.ProjectID)
	if err != nil {
		return domain.SuggestionResult{}, err
	}
	if len(pool) == 0 {
		return domain.SuggestionResult{
			Found:   false,
			Message: "no team members in project; assign manually",
		}, nil
	}

	skills := SplitSkills(t.RequiredSkills)
	var best *domain.User
	var bestScore float64
	for i := range pool {
		score := e.scoreCandidate(pool[i], t, skills)
		if best == nil || score > bestScore {
			best = &pool[i]
			bestScore = score
		}
	}

	now := e.now().UTC().Format(time.RFC3339)
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.SuggestionResult{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.SetSuggestedAssigneeTx(ctx, tx, t.ID, best.ID, now); err != nil {
		return domain.SuggestionResult{}, err
	}
	if err := e.Events.Append(ctx, tx, "task.suggestion.recorded", t.ProjectID, "task", t.ID, actorID, events.EventPayload{
		"candidate_id": best.ID,
		"score":        round2(bestScore),
	}); err != nil {
		return domain.SuggestionResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.SuggestionResult{}, err
	}

	score := round2(bestScore)
	return domain.SuggestionResult{
		Found:       true,
		CandidateID: best.ID,
		Name:        best.Name,
		Score:       &score,
		Message:     "suggestion recorded",
	}, nil
}

// scoreCandidate computes the affinity of one candidate for a task.
//
// Each of the candidate's rules contributes points when it matches the
// task (skill substring against the task's skill tokens, exact type id)
// and always contributes its own priority. The sum is scaled by availability and
// reduced by the current task count. Negative scores are legitimate; a
// busy candidate can still win a thin pool.
func (e Engine) scoreCandidate(u domain.User, t domain.Task, skills []string) float64 {
	sc := e.scoring()
	total := 0.0
	for _, r := range ParseRules(u.AssignmentRules) {
		if r.Skill != "" {
			needle := strings.ToLower(r.Skill)
			for _, tok := range skills {
				if strings.Contains(tok, needle) {
					total += sc.SkillMatchPoints
					break
				}
			}
		}
		if r.TypeID != nil && t.TypeID != nil && *r.TypeID == *t.TypeID {
			total += sc.TypeMatchPoints
		}
		if r.Priority != nil {
			total += *r.Priority
		}
	}
	availability := u.Availability
	if availability <= 0 {
		availability = sc.AvailabilityFloor
	}
	total *= availability
	total -= float64(u.CurrentTasks) * sc.LoadPenaltyPerTask
	return total
}
