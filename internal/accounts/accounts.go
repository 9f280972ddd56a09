// Package accounts covers registration and password login.
package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/socialhub/internal/domain/user"
	"github.com/geocoder89/socialhub/internal/security"
	pkgerrors "github.com/pkg/errors"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type Service struct {
	users  UserStore
	tokens TokenIssuer
}

func NewService(users UserStore, tokens TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register stores a new user with a bcrypt hash and returns its id.
// A duplicate email yields user.ErrEmailTaken, a password over the bcrypt
// byte limit user.ErrPasswordTooLong.
func (s *Service) Register(ctx context.Context, req user.RegisterRequest) (string, error) {
	if len(req.Password) > security.MaxPasswordBytes {
		return "", user.ErrPasswordTooLong
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return "", pkgerrors.Wrap(err, "accounts.register: hash password")
	}

	created, err := s.users.Create(ctx, user.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Bio:          req.Bio,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return "", user.ErrEmailTaken
		}
		return "", pkgerrors.Wrap(err, "accounts.register: create user")
	}

	return created.ID, nil
}

// Login checks the password and issues a session token.
// Unknown email yields user.ErrNotFound, a wrong password user.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, user.Public, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", user.Public{}, user.ErrNotFound
		}
		return "", user.Public{}, pkgerrors.Wrap(err, "accounts.login: get user")
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return "", user.Public{}, user.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return "", user.Public{}, pkgerrors.Wrap(err, "accounts.login: issue token")
	}

	return token, u.Public(), nil
}
