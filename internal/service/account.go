package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/iliyamo/taskflow-api/internal/model"
	"github.com/iliyamo/taskflow-api/internal/repository"
	"github.com/iliyamo/taskflow-api/internal/utils"
)

// TokenIssuer signs access tokens. *utils.TokenService implements it.
type TokenIssuer interface {
	Issue(subject string) (utils.AccessToken, error)
	TTL() time.Duration
}

// PasswordHasher hashes and checks passwords. utils.PasswordHasher
// implements it.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// AccountService registers users and exchanges credentials for tokens.
type AccountService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewAccountService wires an AccountService.
func NewAccountService(users UserStore, hasher PasswordHasher, tokens TokenIssuer) *AccountService {
	return &AccountService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates an active user. Username and email are trimmed and the
// email is lower-cased; a taken username or email returns a ConflictError
// naming the field. The unique constraints still decide concurrent
// registrations.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case username == "":
		return nil, invalid("username is required")
	case email == "":
		return nil, invalid("email is required")
	case password == "":
		return nil, invalid("password is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email is not valid")
	}

	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, invalid("password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Username: username, Email: email, PasswordHash: hash, IsActive: true}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("Username or email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks the credentials and issues an access token. Unknown users,
// wrong passwords and inactive accounts all return ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, password string) (utils.AccessToken, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.AccessToken{}, ErrInvalidCredentials
		}
		return utils.AccessToken{}, fmt.Errorf("load user: %w", err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) || !u.IsActive {
		return utils.AccessToken{}, ErrInvalidCredentials
	}
	return s.tokens.Issue(u.Username)
}

// TokenTTL is the lifetime of the tokens Login issues.
func (s *AccountService) TokenTTL() time.Duration { return s.tokens.TTL() }

func (s *AccountService) checkAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return conflict("Username already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check username: %w", err)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return conflict("Email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}
