package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"teamline/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

func (r Repo) InsertUser(ctx context.Context, u domain.User) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO users(id,name,email,score,availability,current_tasks,assignment_rules,expertise,created_at) VALUES (?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Name, nullable(u.Email), nullableFloat(u.Score), nullableFloat(u.Availability), u.CurrentTasks, nullableStringPtr(u.AssignmentRules), nullable(u.Expertise), u.CreatedAt)
	return err
}

func scanUser(scan func(dest ...any) error) (domain.User, error) {
	var u domain.User
	var email, rules, expertise sql.NullString
	var score, availability sql.NullFloat64
	err := scan(&u.ID, &u.Name, &email, &score, &availability, &u.CurrentTasks, &rules, &expertise, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	if err != nil {
		return u, err
	}
	if email.Valid {
		u.Email = email.String
	}
	if score.Valid {
		u.Score = score.Float64
	}
	if availability.Valid {
		u.Availability = availability.Float64
	}
	if rules.Valid {
		u.AssignmentRules = &rules.String
	}
	if expertise.Valid {
		u.Expertise = expertise.String
	}
	return u, nil
}

const userColumns = `id,name,email,score,availability,current_tasks,assignment_rules,expertise,created_at`

func (r Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id)
	return scanUser(row.Scan)
}

func (r Repo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
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

type UserUpdate struct {
	Name            *string
	Email           *string
	Score           *float64
	Availability    *float64
	CurrentTasks    *int
	AssignmentRules *string
	Expertise       *string
}

func (r Repo) UpdateUser(ctx context.Context, id string, upd UserUpdate) error {
	var (
		fields []string
		args   []any
	)
	if upd.Name != nil {
		fields = append(fields, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.Email != nil {
		fields = append(fields, "email=?")
		args = append(args, nullable(*upd.Email))
	}
	if upd.Score != nil {
		fields = append(fields, "score=?")
		args = append(args, *upd.Score)
	}
	if upd.Availability != nil {
		fields = append(fields, "availability=?")
		args = append(args, *upd.Availability)
	}
	if upd.CurrentTasks != nil {
		fields = append(fields, "current_tasks=?")
		args = append(args, *upd.CurrentTasks)
	}
	if upd.AssignmentRules != nil {
		fields = append(fields, "assignment_rules=?")
		args = append(args, nullable(*upd.AssignmentRules))
	}
	if upd.Expertise != nil {
		fields = append(fields, "expertise=?")
		args = append(args, nullable(*upd.Expertise))
	}
	if len(fields) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`UPDATE users SET %s WHERE id=?`, strings.Join(fields, ",")), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustCurrentTasksTx shifts a user's active assignment counter. The
// counter never goes below zero even if assignments are unwound twice.
func (r Repo) AdjustCurrentTasksTx(ctx context.Context, tx *sql.Tx, userID string, delta int) error {
	_, err := tx.ExecContext(ctx, `UPDATE users SET current_tasks=MAX(current_tasks + ?, 0) WHERE id=?`, delta, userID)
	return err
}

func (r Repo) InsertProject(ctx context.Context, p domain.Project) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO projects(id,name,description,workload_factor,created_at) VALUES (?,?,?,?,?)`,
		p.ID, p.Name, nullable(p.Description), nullableFloat(p.WorkloadFactor), p.CreatedAt)
	return err
}

func scanProject(scan func(dest ...any) error) (domain.Project, error) {
	var p domain.Project
	var desc sql.NullString
	var factor sql.NullFloat64
	err := scan(&p.ID, &p.Name, &desc, &factor, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	if desc.Valid {
		p.Description = desc.String
	}
	if factor.Valid {
		p.WorkloadFactor = factor.Float64
	}
	return p, nil
}

func (r Repo) GetProject(ctx context.Context, id string) (domain.Project, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT id,name,description,workload_factor,created_at FROM projects WHERE id=?`, id)
	return scanProject(row.Scan)
}

func (r Repo) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name,description,workload_factor,created_at FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r Repo) UpdateProject(ctx context.Context, id string, name, description *string, workloadFactor *float64) error {
	var (
		fields []string
		args   []any
	)
	if name != nil {
		fields = append(fields, "name=?")
		args = append(args, *name)
	}
	if description != nil {
		fields = append(fields, "description=?")
		args = append(args, nullable(*description))
	}
	if workloadFactor != nil {
		fields = append(fields, "workload_factor=?")
		args = append(args, *workloadFactor)
	}
	if len(fields) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`UPDATE projects SET %s WHERE id=?`, strings.Join(fields, ",")), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteProject(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM projects WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) ListStatuses(ctx context.Context) ([]domain.Status, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name FROM statuses ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Status
	for rows.Next() {
		var s domain.Status
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r Repo) GetStatus(ctx context.Context, id int64) (domain.Status, error) {
	var s domain.Status
	err := r.DB.QueryRowContext(ctx, `SELECT id,name FROM statuses WHERE id=?`, id).Scan(&s.ID, &s.Name)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}

func (r Repo) GetStatusByName(ctx context.Context, name string) (domain.Status, error) {
	var s domain.Status
	err := r.DB.QueryRowContext(ctx, `SELECT id,name FROM statuses WHERE name=?`, name).Scan(&s.ID, &s.Name)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}

func (r Repo) InsertStatus(ctx context.Context, name string) (domain.Status, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO statuses(name) VALUES (?)`, name)
	if err != nil {
		return domain.Status{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Status{}, err
	}
	return domain.Status{ID: id, Name: name}, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil {
		return nil
	}
	if *v == "" {
		return nil
	}
	return *v
}

func nullableFloat(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}
