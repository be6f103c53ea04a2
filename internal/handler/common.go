package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskflow-api/internal/middleware"
	"github.com/iliyamo/taskflow-api/internal/model"
	"github.com/iliyamo/taskflow-api/internal/service"
)

// requestTimeout bounds the store and cache work done for one request.
const requestTimeout = 5 * time.Second

// detail builds the error body returned by every endpoint.
func detail(msg string) echo.Map { return echo.Map{"detail": msg} }

// reqContext derives the per-request context with the standard timeout.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// owner returns the authenticated user or writes a 401.
func owner(c echo.Context) (*model.User, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, middleware.Unauthorized(c)
	}
	return u, nil
}

// parseID reads the :id path parameter. Ids are capped at 63 bits, the
// range the database driver accepts; larger values cannot name a row.
func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 63)
	return id, err == nil && id > 0
}

// writeError maps service errors to HTTP responses. Errors it does not
// recognise are returned so the server's error handler logs them and
// answers with a generic 500.
func writeError(c echo.Context, err error) error {
	var (
		inputErr    *service.InputError
		conflictErr *service.ConflictError
	)
	switch {
	case errors.As(err, &inputErr):
		return c.JSON(http.StatusBadRequest, detail(inputErr.Msg))
	case errors.As(err, &conflictErr):
		return c.JSON(http.StatusBadRequest, detail(conflictErr.Msg))
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, detail(err.Error()))
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusBadRequest, detail("Username or email already registered"))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, detail(err.Error()))
	case errors.Is(err, service.ErrUnauthenticated):
		return middleware.Unauthorized(c)
	case errors.Is(err, service.ErrInvalidCredentials):
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return c.JSON(http.StatusUnauthorized, detail("Incorrect username or password"))
	}
	return err
}

// ErrorHandler replaces echo's default error handler. HTTP errors raised by
// echo itself (404 routes, 405, bind failures) keep their status; anything
// else, including recovered panics, is logged and reported as a bare 500.
func ErrorHandler(logger echo.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "Internal server error"

		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code != http.StatusInternalServerError {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		} else {
			logger.Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, detail(msg))
		}
		if err != nil {
			logger.Error(err)
		}
	}
}
