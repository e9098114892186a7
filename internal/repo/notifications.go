package repo

import (
	"context"
	"database/sql"

	"teamline/internal/domain"
)

func (r Repo) InsertNotificationTx(ctx context.Context, tx *sql.Tx, n domain.Notification) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO notifications(id,user_id,kind,message,task_id,read,created_at) VALUES (?,?,?,?,?,?,?)`,
		n.ID, n.UserID, n.Kind, n.Message, nullableStringPtr(n.TaskID), boolToInt(n.Read), n.CreatedAt)
	return err
}

type NotificationFilters struct {
	UserID     string
	UnreadOnly bool
	Limit      int
}

func (r Repo) ListNotifications(ctx context.Context, f NotificationFilters) ([]domain.Notification, error) {
	query := `SELECT id,user_id,kind,message,task_id,read,created_at FROM notifications WHERE user_id=?`
	args := []any{f.UserID}
	if f.UnreadOnly {
		query += ` AND read=0`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var taskID sql.NullString
		var read int
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &taskID, &read, &n.CreatedAt); err != nil {
			return nil, err
		}
		if taskID.Valid {
			n.TaskID = &taskID.String
		}
		n.Read = read != 0
		res = append(res, n)
	}
	return res, rows.Err()
}

func (r Repo) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE notifications SET read=1 WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
