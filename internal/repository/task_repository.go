package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/taskflow-api/internal/model"
)

// TaskRepo manages persistence for tasks. All queries are filtered by
// owner_id.
type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = "id, owner_id, project_id, title, description, completed, priority, due_date, created_at, updated_at"

// Create inserts a task and populates its ID and timestamps.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	const q = `INSERT INTO tasks (owner_id, project_id, title, description, completed, priority, due_date, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	ts := now()
	res, err := r.db.ExecContext(ctx, q, t.OwnerID, t.ProjectID, t.Title, t.Description, t.Completed, t.Priority, t.DueDate, ts, ts)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.CreatedAt, t.UpdatedAt = ts, ts
	return nil
}

// GetByIDAndOwner returns ErrNotFound for missing and foreign tasks alike.
func (r *TaskRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Task, error) {
	const q = "SELECT " + taskColumns + " FROM tasks WHERE id = ? AND owner_id = ?"
	t, err := scanTask(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListByOwner returns one page of the owner's tasks ordered by id.
func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID uint64, skip, limit int) ([]model.Task, error) {
	const q = "SELECT " + taskColumns + " FROM tasks WHERE owner_id = ? ORDER BY id LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes every mutable column of t and bumps updated_at.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	const q = `UPDATE tasks
	           SET project_id = ?, title = ?, description = ?, completed = ?, priority = ?, due_date = ?, updated_at = ?
	           WHERE id = ? AND owner_id = ?`
	ts := now()
	res, err := r.db.ExecContext(ctx, q, t.ProjectID, t.Title, t.Description, t.Completed, t.Priority, t.DueDate, ts, t.ID, t.OwnerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	t.UpdatedAt = ts
	return nil
}

// DeleteByIDAndOwner removes the task if it belongs to ownerID.
func (r *TaskRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(s scanner) (*model.Task, error) {
	var (
		t         model.Task
		projectID sql.NullInt64
		desc      sql.NullString
	)
	if err := s.Scan(&t.ID, &t.OwnerID, &projectID, &t.Title, &desc, &t.Completed, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if projectID.Valid {
		id := uint64(projectID.Int64)
		t.ProjectID = &id
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	t.CreatedAt, t.UpdatedAt = t.CreatedAt.UTC(), t.UpdatedAt.UTC()
	return &t, nil
}
