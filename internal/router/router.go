package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskflow-api/internal/handler"
)

// RegisterRoutes registers the routes that do not require authentication:
// the root banner and the health probes.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.GET("/health/detailed", h.Detailed)
}

// RegisterAuth registers the authentication routes. Registration and token
// issue are public; /auth/me goes through the bearer middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/token", a.Token)
	g.GET("/me", a.Me, auth)
}

// RegisterProjects registers the owner scoped project routes. Collection
// paths answer with and without a trailing slash.
func RegisterProjects(e *echo.Echo, p *handler.ProjectHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/projects", auth)
	collection(g, p.Create, p.List)
	g.GET("/:id", p.Get)
	g.PUT("/:id", p.Update)
	g.DELETE("/:id", p.Delete)
}

// RegisterTasks registers the owner scoped task routes.
func RegisterTasks(e *echo.Echo, t *handler.TaskHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/tasks", auth)
	collection(g, t.Create, t.List)
	g.GET("/:id", t.Get)
	g.PUT("/:id", t.Update)
	g.DELETE("/:id", t.Delete)
}

func collection(g *echo.Group, create, list echo.HandlerFunc) {
	for _, path := range []string{"", "/"} {
		g.POST(path, create)
		g.GET(path, list)
	}
}
