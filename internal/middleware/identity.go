package middleware

// identity.go defines helpers for the authenticated user stored in the Echo
// context by BearerAuth.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskflow-api/internal/model"
)

const userKey = "user"

// CurrentUser returns the user stored by BearerAuth. ok is false on routes
// that are not wrapped by it.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(userKey).(*model.User)
	return u, ok && u != nil
}

// userID returns the authenticated username for request logs, or "guest".
func userID(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return u.Username
	}
	return "guest"
}
