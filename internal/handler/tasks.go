package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskflow-api/internal/model"
	"github.com/iliyamo/taskflow-api/internal/service"
)

// TaskHandler serves /tasks for the authenticated owner. A task may name
// one of the owner's projects in project_id.
type TaskHandler struct {
	Tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	if tasks == nil {
		panic("nil task service passed to NewTaskHandler")
	}
	return &TaskHandler{Tasks: tasks}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(c echo.Context) error {
	u, err := owner(c)
	if u == nil {
		return err
	}
	var in model.TaskInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, detail("invalid request body"))
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	t, err := h.Tasks.Create(ctx, u, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// List handles GET /tasks?skip=&limit=.
func (h *TaskHandler) List(c echo.Context) error {
	u, err := owner(c)
	if u == nil {
		return err
	}
	skip, limit, ok := paging(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, detail("skip and limit must be integers"))
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	l, err := h.Tasks.List(ctx, u, skip, limit)
	if err != nil {
		return writeError(c, err)
	}
	return writeListing(c, l)
}

// Get handles GET /tasks/:id.
func (h *TaskHandler) Get(c echo.Context) error {
	u, err := owner(c)
	if u == nil {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, detail("Task not found"))
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	t, err := h.Tasks.Get(ctx, u, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Update handles PUT /tasks/:id. Only fields present in the body change.
func (h *TaskHandler) Update(c echo.Context) error {
	u, err := owner(c)
	if u == nil {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, detail("Task not found"))
	}
	var patch model.TaskPatch
	if err := bindBody(c, &patch); err != nil {
		return c.JSON(http.StatusBadRequest, detail("invalid request body"))
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	t, err := h.Tasks.Update(ctx, u, id, patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /tasks/:id.
func (h *TaskHandler) Delete(c echo.Context) error {
	u, err := owner(c)
	if u == nil {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, detail("Task not found"))
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Tasks.Delete(ctx, u, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
