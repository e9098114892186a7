package repo

import (
	"context"
	"database/sql"
	"strings"

	"teamline/internal/domain"
)

const taskColumns = `id,project_id,title,description,status_id,type_id,workload_weight,due_date,assignee_id,suggested_assignee_id,required_skills,created_at,updated_at`

func (r Repo) InsertTask(ctx context.Context, tx *sql.Tx, t domain.Task) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO tasks(`+taskColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.ProjectID, t.Title, nullable(t.Description), t.StatusID, nullableInt64Ptr(t.TypeID), nullableFloat(t.WorkloadWeight),
		nullableStringPtr(t.DueDate), nullableStringPtr(t.AssigneeID), nullableStringPtr(t.SuggestedAssigneeID), nullableStringPtr(t.RequiredSkills),
		t.CreatedAt, t.UpdatedAt)
	return err
}

func (r Repo) UpdateTask(ctx context.Context, tx *sql.Tx, t domain.Task) error {
	_, err := tx.ExecContext(ctx, `UPDATE tasks SET title=?, description=?, status_id=?, type_id=?, workload_weight=?, due_date=?, assignee_id=?, suggested_assignee_id=?, required_skills=?, updated_at=? WHERE id=?`,
		t.Title, nullable(t.Description), t.StatusID, nullableInt64Ptr(t.TypeID), nullableFloat(t.WorkloadWeight),
		nullableStringPtr(t.DueDate), nullableStringPtr(t.AssigneeID), nullableStringPtr(t.SuggestedAssigneeID), nullableStringPtr(t.RequiredSkills),
		t.UpdatedAt, t.ID)
	return err
}

func scanTask(scan func(dest ...any) error) (domain.Task, error) {
	var t domain.Task
	var description, dueDate, assigneeID, suggestedID, skills sql.NullString
	var typeID sql.NullInt64
	var weight sql.NullFloat64
	err := scan(&t.ID, &t.ProjectID, &t.Title, &description, &t.StatusID, &typeID, &weight, &dueDate, &assigneeID, &suggestedID, &skills, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	if description.Valid {
		t.Description = description.String
	}
	if typeID.Valid {
		t.TypeID = &typeID.Int64
	}
	if weight.Valid {
		t.WorkloadWeight = weight.Float64
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.String
	}
	if assigneeID.Valid {
		t.AssigneeID = &assigneeID.String
	}
	if suggestedID.Valid {
		t.SuggestedAssigneeID = &suggestedID.String
	}
	if skills.Valid {
		t.RequiredSkills = &skills.String
	}
	return t, nil
}

func (r Repo) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=?`, id)
	return scanTask(row.Scan)
}

type TaskFilters struct {
	ProjectID  string
	StatusID   int64
	AssigneeID string
	Limit      int
}

func (r Repo) ListTasks(ctx context.Context, f TaskFilters) ([]domain.Task, error) {
	var clauses []string
	var args []any
	if f.ProjectID != "" {
		clauses = append(clauses, "project_id=?")
		args = append(args, f.ProjectID)
	}
	if f.StatusID > 0 {
		clauses = append(clauses, "status_id=?")
		args = append(args, f.StatusID)
	}
	if f.AssigneeID != "" {
		clauses = append(clauses, "assignee_id=?")
		args = append(args, f.AssigneeID)
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}
	query := `SELECT ` + taskColumns + ` FROM tasks ` + where + ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r Repo) DeleteTask(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSuggestedAssigneeTx records an advisory suggestion on the task. The
// field is last-write-wins under concurrent suggestions; it never represents
// a committed assignment.
func (r Repo) SetSuggestedAssigneeTx(ctx context.Context, tx *sql.Tx, taskID, userID, updatedAt string) error {
	res, err := tx.ExecContext(ctx, `UPDATE tasks SET suggested_assignee_id=?, updated_at=? WHERE id=?`, userID, updatedAt, taskID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// TaskLoadRow is one assigned task with its project factor and status name
// joined in, as consumed by the workload aggregator. Inner joins drop rows
// whose project, status, or assignee no longer resolve.
type TaskLoadRow struct {
	TaskID         string
	AssigneeID     string
	ProjectID      string
	WorkloadWeight sql.NullFloat64
	WorkloadFactor sql.NullFloat64
	StatusName     string
}

func (r Repo) ListAssignedTaskLoads(ctx context.Context) ([]TaskLoadRow, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT t.id, t.assignee_id, t.project_id, t.workload_weight, p.workload_factor, s.name
FROM tasks t
JOIN projects p ON p.id=t.project_id
JOIN statuses s ON s.id=t.status_id
JOIN users u ON u.id=t.assignee_id
WHERE t.assignee_id IS NOT NULL
ORDER BY t.created_at ASC, t.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []TaskLoadRow
	for rows.Next() {
		var row TaskLoadRow
		if err := rows.Scan(&row.TaskID, &row.AssigneeID, &row.ProjectID, &row.WorkloadWeight, &row.WorkloadFactor, &row.StatusName); err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

func nullableInt64Ptr(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
