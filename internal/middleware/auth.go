package middleware // package middleware contains reusable HTTP middleware functions

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskflow-api/internal/model"
	"github.com/iliyamo/taskflow-api/internal/service"
)

// UserResolver maps a bearer token to its user. *service.Resolver
// implements it.
type UserResolver interface {
	Resolve(ctx context.Context, bearer string) (*model.User, error)
}

// BearerAuth returns an Echo middleware that resolves the Bearer access
// token on every request and stores the authenticated user in the context.
// Handlers read it back with CurrentUser. A missing, invalid or expired
// token and an unknown or inactive user all produce the same 401.
func BearerAuth(resolver UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return Unauthorized(c)
			}
			u, err := resolver.Resolve(c.Request().Context(), raw)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					return Unauthorized(c)
				}
				return err
			}
			c.Set(userKey, u)
			return next(c)
		}
	}
}

// Unauthorized writes the 401 response shared by every protected route.
func Unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Could not validate credentials"})
}

// bearerToken extracts the token from an Authorization header. The scheme
// is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
