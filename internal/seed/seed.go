// Package seed loads the demo account used in local development.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/taskflow-api/internal/cache"
	"github.com/iliyamo/taskflow-api/internal/model"
	"github.com/iliyamo/taskflow-api/internal/repository"
	"github.com/iliyamo/taskflow-api/internal/service"
	"github.com/iliyamo/taskflow-api/internal/utils"
)

// Demo account credentials.
const (
	Username    = "testuser"
	Email       = "test@example.com"
	Password    = "password123"
	ProjectName = "Sample Project"
)

// Result reports what Run created.
type Result struct {
	UserCreated    bool
	ProjectCreated bool
	TasksCreated   int
}

// Run creates the demo user, a sample project and three tasks attached to
// it. Rows that already exist are left untouched, so it can run on every
// start. When rows are written the demo owner's cached listings are
// dropped from c; a nil c skips that step.
func Run(ctx context.Context, db *sql.DB, hasher utils.PasswordHasher, c cache.Cache) (res Result, err error) {
	users := repository.NewUserRepo(db)
	projects := repository.NewProjectRepo(db)
	tasks := repository.NewTaskRepo(db)

	u, err := users.GetByUsername(ctx, Username)
	if errors.Is(err, repository.ErrNotFound) {
		hash, herr := hasher.Hash(Password)
		if herr != nil {
			return res, fmt.Errorf("hash password: %w", herr)
		}
		u = &model.User{Username: Username, Email: Email, PasswordHash: hash, IsActive: true}
		if err := users.Create(ctx, u); err != nil {
			return res, fmt.Errorf("create user: %w", err)
		}
		res.UserCreated = true
	} else if err != nil {
		return res, fmt.Errorf("load user: %w", err)
	}

	if c != nil {
		defer func() {
			if !res.ProjectCreated {
				return
			}
			if cerr := service.InvalidateOwner(ctx, c, u.ID); cerr != nil {
				err = errors.Join(err, fmt.Errorf("invalidate cache: %w", cerr))
			}
		}()
	}

	existing, err := projects.ListByOwner(ctx, u.ID, 0, 1000)
	if err != nil {
		return res, fmt.Errorf("list projects: %w", err)
	}
	for _, p := range existing {
		if p.Name == ProjectName {
			return res, nil
		}
	}

	desc := "A sample project to get started"
	p := &model.Project{OwnerID: u.ID, Name: ProjectName, Description: &desc, Status: "In Progress"}
	if err := projects.Create(ctx, p); err != nil {
		return res, fmt.Errorf("create project: %w", err)
	}
	res.ProjectCreated = true

	for _, s := range []struct {
		title, priority string
		done            bool
	}{
		{"Set up development environment", "High", true},
		{"Design database schema", "High", false},
		{"Write API documentation", "Medium", false},
	} {
		t := &model.Task{OwnerID: u.ID, ProjectID: &p.ID, Title: s.title, Priority: s.priority, Completed: s.done}
		if err := tasks.Create(ctx, t); err != nil {
			return res, fmt.Errorf("create task %q: %w", s.title, err)
		}
		res.TasksCreated++
	}
	return res, nil
}
