package repo

import (
	"context"
	"database/sql"

	"teamline/internal/domain"
)

func (r Repo) InsertTeam(ctx context.Context, t domain.Team) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO teams(id,project_id,name,created_at) VALUES (?,?,?,?)`,
		t.ID, t.ProjectID, t.Name, t.CreatedAt)
	return err
}

func (r Repo) GetTeam(ctx context.Context, id string) (domain.Team, error) {
	var t domain.Team
	err := r.DB.QueryRowContext(ctx, `SELECT id,project_id,name,created_at FROM teams WHERE id=?`, id).
		Scan(&t.ID, &t.ProjectID, &t.Name, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	members, err := r.ListTeamMembers(ctx, t.ID)
	if err != nil {
		return t, err
	}
	t.MemberIDs = members
	return t, nil
}

func (r Repo) ListTeams(ctx context.Context, projectID string) ([]domain.Team, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,project_id,name,created_at FROM teams WHERE project_id=? ORDER BY created_at ASC, id ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r Repo) DeleteTeam(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM teams WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) AddTeamMember(ctx context.Context, teamID, userID string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT OR IGNORE INTO team_members(team_id,user_id) VALUES (?,?)`, teamID, userID)
	return err
}

func (r Repo) RemoveTeamMember(ctx context.Context, teamID, userID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM team_members WHERE team_id=? AND user_id=?`, teamID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) ListTeamMembers(ctx context.Context, teamID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT user_id FROM team_members WHERE team_id=? ORDER BY user_id ASC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListProjectMembers returns the distinct users belonging to any team under
// the project, in stable creation order. Team membership is the sole source
// of candidacy for assignment suggestions; project leaders who are not on a
// team are not included.
func (r Repo) ListProjectMembers(ctx context.Context, projectID string) ([]domain.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT DISTINCT u.id,u.name,u.email,u.score,u.availability,u.current_tasks,u.assignment_rules,u.expertise,u.created_at
FROM users u
JOIN team_members tm ON tm.user_id=u.id
JOIN teams t ON t.id=tm.team_id
WHERE t.project_id=?
ORDER BY u.created_at ASC, u.id ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}
