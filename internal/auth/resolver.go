package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/socialhub/internal/domain/user"
	pkgerrors "github.com/pkg/errors"
)

// ErrUnauthenticated marks an operation attempted without a resolved actor.
var ErrUnauthenticated = errors.New("unauthenticated")

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type Resolver struct {
	tokens TokenVerifier
	users  UserFinder
}

func NewResolver(tokens TokenVerifier, users UserFinder) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// ResolveUser returns the acting user for an Authorization header value.
// ok=false means anonymous. err is only set when the store itself failed.
func (r *Resolver) ResolveUser(ctx context.Context, authorization string) (u user.User, ok bool, err error) {
	raw, found := BearerToken(authorization)
	if !found {
		return user.User{}, false, nil
	}

	claims, verr := r.tokens.Verify(raw)
	if verr != nil {
		return user.User{}, false, nil
	}

	u, err = r.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, false, nil
		}
		return user.User{}, false, pkgerrors.Wrap(err, "auth.resolve_user")
	}

	u.PasswordHash = ""
	return u, true, nil
}

// BearerToken extracts <token> from "Bearer <token>".
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}

	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if raw == "" {
		return "", false
	}
	return raw, true
}
