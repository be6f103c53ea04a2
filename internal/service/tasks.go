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

// TaskStore is the persistence used by TaskService. *repository.TaskRepo
// implements it.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) error
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Task, error)
	ListByOwner(ctx context.Context, ownerID uint64, skip, limit int) ([]model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
}

// ProjectChecker reports whether a project belongs to an owner.
type ProjectChecker interface {
	ExistsForOwner(ctx context.Context, id, ownerID uint64) (bool, error)
}

// TaskService implements owner scoped task CRUD with a cached listing.
type TaskService struct {
	store    TaskStore
	projects ProjectChecker
	deps     Deps
}

// NewTaskService wires a TaskService.
func NewTaskService(store TaskStore, projects ProjectChecker, deps Deps) *TaskService {
	return &TaskService{store: store, projects: projects, deps: deps.withDefaults()}
}

// Create persists a task for owner. A project_id must name one of the
// owner's projects.
func (s *TaskService) Create(ctx context.Context, owner *model.User, in model.TaskInput) (*model.Task, error) {
	ctx, span := startSpan(ctx, "TaskService.Create", owner.ID)
	defer span.End()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	t := &model.Task{
		OwnerID:     owner.ID,
		ProjectID:   in.ProjectID,
		Title:       title,
		Description: in.Description,
		Completed:   in.Completed,
		Priority:    model.DefaultTaskPriority,
		DueDate:     in.DueDate,
	}
	if in.Priority != nil && strings.TrimSpace(*in.Priority) != "" {
		t.Priority = strings.TrimSpace(*in.Priority)
	}
	if err := s.checkProject(ctx, owner.ID, t.ProjectID); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	invalidate(ctx, s.deps, ownerPrefix(kindTasks, owner.ID))
	publish(ctx, s.deps, taskEvent(queue.ActionCreated, t))
	return t, nil
}

// List returns one page of the owner's tasks as a JSON array.
func (s *TaskService) List(ctx context.Context, owner *model.User, skip, limit int) (Listing, error) {
	ctx, span := startSpan(ctx, "TaskService.List", owner.ID)
	defer span.End()

	skip, limit = Page(skip, limit)
	key := listKey(kindTasks, owner.ID, skip, limit)
	return readThrough(ctx, s.deps, key, func(ctx context.Context) ([]model.Task, error) {
		items, err := s.store.ListByOwner(ctx, owner.ID, skip, limit)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		return items, nil
	})
}

// Get returns one of the owner's tasks.
func (s *TaskService) Get(ctx context.Context, owner *model.User, id uint64) (*model.Task, error) {
	t, err := s.store.GetByIDAndOwner(ctx, id, owner.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Task")
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// Update applies the fields present in patch.
func (s *TaskService) Update(ctx context.Context, owner *model.User, id uint64, patch model.TaskPatch) (*model.Task, error) {
	ctx, span := startSpan(ctx, "TaskService.Update", owner.ID)
	defer span.End()

	t, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := applyTaskPatch(t, patch); err != nil {
		return nil, err
	}
	if patch.ProjectID.Set {
		if err := s.checkProject(ctx, owner.ID, t.ProjectID); err != nil {
			return nil, err
		}
	}
	if err := s.store.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Task")
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	invalidate(ctx, s.deps, ownerPrefix(kindTasks, owner.ID))
	publish(ctx, s.deps, taskEvent(queue.ActionUpdated, t))
	return t, nil
}

// Delete removes the task.
func (s *TaskService) Delete(ctx context.Context, owner *model.User, id uint64) error {
	ctx, span := startSpan(ctx, "TaskService.Delete", owner.ID)
	defer span.End()

	t, err := s.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByIDAndOwner(ctx, id, owner.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Task")
		}
		return fmt.Errorf("delete task: %w", err)
	}
	invalidate(ctx, s.deps, ownerPrefix(kindTasks, owner.ID))
	publish(ctx, s.deps, taskEvent(queue.ActionDeleted, t))
	return nil
}

func (s *TaskService) checkProject(ctx context.Context, ownerID uint64, projectID *uint64) error {
	if projectID == nil {
		return nil
	}
	ok, err := s.projects.ExistsForOwner(ctx, *projectID, ownerID)
	if err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	if !ok {
		return invalid("project not found")
	}
	return nil
}

func applyTaskPatch(t *model.Task, patch model.TaskPatch) error {
	if patch.Title.Set {
		if patch.Title.IsNull() || strings.TrimSpace(*patch.Title.Value) == "" {
			return invalid("title is required")
		}
		t.Title = strings.TrimSpace(*patch.Title.Value)
	}
	if patch.Description.Set {
		t.Description = patch.Description.Value
	}
	if patch.Completed.Set {
		if patch.Completed.IsNull() {
			return invalid("completed must be true or false")
		}
		t.Completed = *patch.Completed.Value
	}
	if patch.Priority.Set {
		if patch.Priority.IsNull() || strings.TrimSpace(*patch.Priority.Value) == "" {
			return invalid("priority must not be empty")
		}
		t.Priority = strings.TrimSpace(*patch.Priority.Value)
	}
	if patch.DueDate.Set {
		t.DueDate = patch.DueDate.Value
	}
	if patch.ProjectID.Set {
		t.ProjectID = patch.ProjectID.Value
	}
	return nil
}

func taskEvent(action string, t *model.Task) queue.ActivityEvent {
	return queue.ActivityEvent{
		Action:   action,
		Entity:   queue.EntityTask,
		EntityID: t.ID,
		OwnerID:  t.OwnerID,
		Title:    t.Title,
	}
}
