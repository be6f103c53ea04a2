package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/taskflow-api/internal/model"
	"github.com/iliyamo/taskflow-api/internal/queue"
	"github.com/iliyamo/taskflow-api/internal/repository"
)

// ProjectStore is the persistence used by ProjectService.
// *repository.ProjectRepo implements it.
type ProjectStore interface {
	Create(ctx context.Context, p *model.Project) error
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Project, error)
	ListByOwner(ctx context.Context, ownerID uint64, skip, limit int) ([]model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
}

// ProjectService implements owner scoped project CRUD with a cached
// listing.
type ProjectService struct {
	store ProjectStore
	deps  Deps
}

// NewProjectService wires a ProjectService. Zero fields of deps fall back
// to no-op implementations.
func NewProjectService(store ProjectStore, deps Deps) *ProjectService {
	return &ProjectService{store: store, deps: deps.withDefaults()}
}

// Create persists a project for owner and invalidates the owner's project
// listings.
func (s *ProjectService) Create(ctx context.Context, owner *model.User, in model.ProjectInput) (*model.Project, error) {
	ctx, span := startSpan(ctx, "ProjectService.Create", owner.ID)
	defer span.End()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	p := &model.Project{
		OwnerID:     owner.ID,
		Name:        name,
		Description: in.Description,
		Status:      model.DefaultProjectStatus,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		p.Status = strings.TrimSpace(*in.Status)
	}
	if err := checkRange(p.StartDate, p.EndDate); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	invalidate(ctx, s.deps, ownerPrefix(kindProjects, owner.ID))
	publish(ctx, s.deps, projectEvent(queue.ActionCreated, p))
	return p, nil
}

// List returns one page of the owner's projects as a JSON array, served
// from the cache when possible.
func (s *ProjectService) List(ctx context.Context, owner *model.User, skip, limit int) (Listing, error) {
	ctx, span := startSpan(ctx, "ProjectService.List", owner.ID)
	defer span.End()

	skip, limit = Page(skip, limit)
	key := listKey(kindProjects, owner.ID, skip, limit)
	return readThrough(ctx, s.deps, key, func(ctx context.Context) ([]model.Project, error) {
		items, err := s.store.ListByOwner(ctx, owner.ID, skip, limit)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		return items, nil
	})
}

// Get returns one of the owner's projects. Projects of other users are
// reported as not found.
func (s *ProjectService) Get(ctx context.Context, owner *model.User, id uint64) (*model.Project, error) {
	p, err := s.store.GetByIDAndOwner(ctx, id, owner.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Project")
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// Update applies the fields present in patch.
func (s *ProjectService) Update(ctx context.Context, owner *model.User, id uint64, patch model.ProjectPatch) (*model.Project, error) {
	ctx, span := startSpan(ctx, "ProjectService.Update", owner.ID)
	defer span.End()

	p, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := applyProjectPatch(p, patch); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Project")
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	invalidate(ctx, s.deps, ownerPrefix(kindProjects, owner.ID))
	publish(ctx, s.deps, projectEvent(queue.ActionUpdated, p))
	return p, nil
}

// Delete removes the project. Its tasks stay but lose the reference, so the
// owner's task listings are invalidated too.
func (s *ProjectService) Delete(ctx context.Context, owner *model.User, id uint64) error {
	ctx, span := startSpan(ctx, "ProjectService.Delete", owner.ID)
	defer span.End()

	p, err := s.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByIDAndOwner(ctx, id, owner.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Project")
		}
		return fmt.Errorf("delete project: %w", err)
	}
	invalidate(ctx, s.deps, ownerPrefix(kindProjects, owner.ID), ownerPrefix(kindTasks, owner.ID))
	publish(ctx, s.deps, projectEvent(queue.ActionDeleted, p))
	return nil
}

func applyProjectPatch(p *model.Project, patch model.ProjectPatch) error {
	if patch.Name.Set {
		if patch.Name.IsNull() || strings.TrimSpace(*patch.Name.Value) == "" {
			return invalid("name is required")
		}
		p.Name = strings.TrimSpace(*patch.Name.Value)
	}
	if patch.Description.Set {
		p.Description = patch.Description.Value
	}
	if patch.Status.Set {
		if patch.Status.IsNull() || strings.TrimSpace(*patch.Status.Value) == "" {
			return invalid("status must not be empty")
		}
		p.Status = strings.TrimSpace(*patch.Status.Value)
	}
	if patch.StartDate.Set {
		p.StartDate = patch.StartDate.Value
	}
	if patch.EndDate.Set {
		p.EndDate = patch.EndDate.Value
	}
	return checkRange(p.StartDate, p.EndDate)
}

func checkRange(start, end *model.Date) error {
	if start != nil && end != nil && end.Before(start.Time) {
		return invalid("end_date must not be before start_date")
	}
	return nil
}

func projectEvent(action string, p *model.Project) queue.ActivityEvent {
	return queue.ActivityEvent{
		Action:   action,
		Entity:   queue.EntityProject,
		EntityID: p.ID,
		OwnerID:  p.OwnerID,
		Title:    p.Name,
	}
}
