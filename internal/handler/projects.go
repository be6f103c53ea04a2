package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskflow-api/internal/model"
	"github.com/iliyamo/taskflow-api/internal/service"
)

// ProjectHandler serves /projects for the authenticated owner.
type ProjectHandler struct {
	Projects *service.ProjectService
}

func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	if projects == nil {
		panic("nil project service passed to NewProjectHandler")
	}
	return &ProjectHandler{Projects: projects}
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(c echo.Context) error {
	u, err := owner(c)
	if u == nil {
		return err
	}
	var in model.ProjectInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, detail("invalid request body"))
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	p, err := h.Projects.Create(ctx, u, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// List handles GET /projects?skip=&limit=. The body is the cached JSON when
// X-Cache is HIT.
func (h *ProjectHandler) List(c echo.Context) error {
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

	l, err := h.Projects.List(ctx, u, skip, limit)
	if err != nil {
		return writeError(c, err)
	}
	return writeListing(c, l)
}

// Get handles GET /projects/:id.
func (h *ProjectHandler) Get(c echo.Context) error {
	u, err := owner(c)
	if u == nil {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, detail("Project not found"))
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	p, err := h.Projects.Get(ctx, u, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Update handles PUT /projects/:id. Only fields present in the body change.
func (h *ProjectHandler) Update(c echo.Context) error {
	u, err := owner(c)
	if u == nil {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, detail("Project not found"))
	}
	var patch model.ProjectPatch
	if err := bindBody(c, &patch); err != nil {
		return c.JSON(http.StatusBadRequest, detail("invalid request body"))
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	p, err := h.Projects.Update(ctx, u, id, patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /projects/:id.
func (h *ProjectHandler) Delete(c echo.Context) error {
	u, err := owner(c)
	if u == nil {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, detail("Project not found"))
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Projects.Delete(ctx, u, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// paging reads the optional skip and limit query parameters.
func paging(c echo.Context) (skip, limit int, ok bool) {
	limit = service.DefaultLimit
	err := echo.QueryParamsBinder(c).
		Int("skip", &skip).
		Int("limit", &limit).
		BindError()
	return skip, limit, err == nil
}

// writeListing writes a cached or freshly encoded JSON array and reports
// where it came from in X-Cache.
func writeListing(c echo.Context, l service.Listing) error {
	state := "MISS"
	if l.Cached {
		state = "HIT"
	}
	c.Response().Header().Set("X-Cache", state)
	return c.JSONBlob(http.StatusOK, l.Body)
}

// bindBody decodes only the request body. Partial updates must not pick up
// path parameters.
func bindBody(c echo.Context, dst any) error {
	return (&echo.DefaultBinder{}).BindBody(c, dst)
}
