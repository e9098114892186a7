package repo

import (
	"context"
	"database/sql"

	"teamline/internal/domain"
)

func (r Repo) InsertCommentTx(ctx context.Context, tx *sql.Tx, c domain.Comment) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO comments(id,task_id,author_id,body,created_at) VALUES (?,?,?,?,?)`,
		c.ID, c.TaskID, c.AuthorID, c.Body, c.CreatedAt)
	return err
}

func (r Repo) ListComments(ctx context.Context, taskID string) ([]domain.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,task_id,author_id,body,created_at FROM comments WHERE task_id=? ORDER BY created_at ASC, id ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r Repo) DeleteComment(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM comments WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) InsertAttachment(ctx context.Context, a domain.Attachment) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO attachments(id,task_id,file_name,size_bytes,storage_id,created_at) VALUES (?,?,?,?,?,?)`,
		a.ID, a.TaskID, a.FileName, a.SizeBytes, nullable(a.StorageID), a.CreatedAt)
	return err
}

func (r Repo) ListAttachments(ctx context.Context, taskID string) ([]domain.Attachment, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,task_id,file_name,size_bytes,storage_id,created_at FROM attachments WHERE task_id=? ORDER BY created_at ASC, id ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Attachment
	for rows.Next() {
		var a domain.Attachment
		var storageID sql.NullString
		if err := rows.Scan(&a.ID, &a.TaskID, &a.FileName, &a.SizeBytes, &storageID, &a.CreatedAt); err != nil {
			return nil, err
		}
		if storageID.Valid {
			a.StorageID = storageID.String
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r Repo) DeleteAttachment(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM attachments WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
