package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskflow-api/internal/cache"
)

const serviceName = "TaskFlow API"

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves the liveness and dependency probes used by load
// balancers and monitoring systems.
type HealthHandler struct {
	DB    Pinger
	Cache cache.Cache
}

func NewHealthHandler(db Pinger, c cache.Cache) *HealthHandler {
	if c == nil {
		c = cache.Noop{}
	}
	return &HealthHandler{DB: db, Cache: c}
}

// Root handles GET /.
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "healthy", "message": serviceName + " is running"})
}

// Health handles GET /health. It does not touch any dependency.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "healthy", "service": serviceName})
}

type healthReport struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

// Detailed handles GET /health/detailed. The store is required: when it
// cannot be reached the probe answers 503. A cache outage only degrades
// the report because every request still succeeds without it.
func (h *HealthHandler) Detailed(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	report := healthReport{
		Status:  "healthy",
		Service: serviceName,
		Checks:  map[string]string{"database": "healthy", "cache": "healthy"},
	}
	if err := h.DB.PingContext(ctx); err != nil {
		c.Logger().Errorf("health: database: %v", err)
		report.Checks["database"] = "unhealthy"
		report.Status = "unhealthy"
	}
	if err := h.Cache.Ping(ctx); err != nil {
		c.Logger().Warnf("health: cache: %v", err)
		report.Checks["cache"] = "unhealthy"
		if report.Status == "healthy" {
			report.Status = "degraded"
		}
	}

	code := http.StatusOK
	if report.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, report)
}
