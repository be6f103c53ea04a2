// Package repository contains data access logic separated from HTTP handlers.
// This file implements owner-scoped persistence for projects. Every lookup
// that takes an id also takes the owner id so that a project belonging to
// someone else is indistinguishable from a missing one.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/taskflow-api/internal/model"
)

// ProjectRepo encapsulates all database queries related to projects.
type ProjectRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewProjectRepo constructs a ProjectRepo with the provided DB handle.
func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

const projectColumns = "id, owner_id, name, description, status, start_date, end_date, created_at, updated_at"

// Create inserts a new project. On success the ID and both timestamps are
// populated on p.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	const q = `INSERT INTO projects (owner_id, name, description, status, start_date, end_date, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	ts := now()
	res, err := r.db.ExecContext(ctx, q, p.OwnerID, p.Name, p.Description, p.Status, p.StartDate, p.EndDate, ts, ts)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.CreatedAt, p.UpdatedAt = ts, ts
	return nil
}

// GetByIDAndOwner fetches a project by id but only if it belongs to the
// specified owner. If the project doesn't exist or is owned by someone
// else, ErrNotFound is returned.
func (r *ProjectRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Project, error) {
	const q = "SELECT " + projectColumns + " FROM projects WHERE id = ? AND owner_id = ?"
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// ExistsForOwner reports whether the owner has a project with this id.
func (r *ProjectRepo) ExistsForOwner(ctx context.Context, id, ownerID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM projects WHERE id = ? AND owner_id = ?", id, ownerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ListByOwner returns one page of the owner's projects ordered by id.
func (r *ProjectRepo) ListByOwner(ctx context.Context, ownerID uint64, skip, limit int) ([]model.Project, error) {
	const q = "SELECT " + projectColumns + " FROM projects WHERE owner_id = ? ORDER BY id LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes every mutable column of p and bumps updated_at. The row
// must belong to p.OwnerID; otherwise ErrNotFound is returned.
func (r *ProjectRepo) Update(ctx context.Context, p *model.Project) error {
	const q = `UPDATE projects
	           SET name = ?, description = ?, status = ?, start_date = ?, end_date = ?, updated_at = ?
	           WHERE id = ? AND owner_id = ?`
	ts := now()
	res, err := r.db.ExecContext(ctx, q, p.Name, p.Description, p.Status, p.StartDate, p.EndDate, ts, p.ID, p.OwnerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	p.UpdatedAt = ts
	return nil
}

// DeleteByIDAndOwner removes a project owned by ownerID. Tasks attached to
// it are detached (project_id set to NULL) in the same transaction, so the
// result does not depend on the dialect's foreign key enforcement.
func (r *ProjectRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`UPDATE tasks SET project_id = NULL WHERE project_id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProject(s scanner) (*model.Project, error) {
	var (
		p    model.Project
		desc sql.NullString
	)
	if err := s.Scan(&p.ID, &p.OwnerID, &p.Name, &desc, &p.Status, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		p.Description = &desc.String
	}
	p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
	return &p, nil
}
