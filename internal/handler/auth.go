package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/taskflow-api/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Accounts *service.AccountService
}

func NewAuthHandler(accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{Accounts: accounts}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

// Register: POST /auth/register creates an active user and returns it.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detail("invalid request body"))
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Accounts.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Token: POST /auth/token exchanges form credentials for a bearer token.
func (h *AuthHandler) Token(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return writeError(c, service.ErrInvalidCredentials)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	tok, err := h.Accounts.Login(ctx, username, password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResp{
		AccessToken: tok.Token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.Accounts.TokenTTL().Seconds()),
	})
}

// Me: GET /auth/me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	u, err := owner(c)
	if u == nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}
