package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/taskflow-api/internal/model"
	"github.com/iliyamo/taskflow-api/internal/repository"
	"github.com/iliyamo/taskflow-api/internal/utils"
)

// TokenVerifier checks an access token. *utils.TokenService implements it.
type TokenVerifier interface {
	Verify(raw string) (utils.Claims, error)
}

// UserStore is the user persistence used by the resolver and account
// service.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Resolver turns a bearer token into the user it was issued to.
type Resolver struct {
	tokens TokenVerifier
	users  UserStore
}

// NewResolver constructs a Resolver.
func NewResolver(tokens TokenVerifier, users UserStore) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve verifies the token and loads its subject. An invalid token, an
// unknown subject and an inactive account all return ErrUnauthenticated.
// Store failures are returned as is.
func (r *Resolver) Resolve(ctx context.Context, bearer string) (*model.User, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := r.tokens.Verify(bearer)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	u, err := r.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrUnauthenticated
	}
	return u, nil
}
