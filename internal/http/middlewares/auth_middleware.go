package middlewares

import (
	"context"
	"net/http"

	"github.com/geocoder89/socialhub/internal/actorctx"
	"github.com/geocoder89/socialhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type UserResolver interface {
	ResolveUser(ctx context.Context, authorization string) (user.User, bool, error)
}

type AuthMiddleware struct {
	resolver UserResolver
}

func NewAuthMiddleware(resolver UserResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireUser resolves the bearer token to a stored user. Anonymous requests
// stop here with 401 so nothing downstream runs.
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok, err := m.resolver.ResolveUser(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Could not authenticate request")
			return
		}
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}

		c.Set(CtxUser, u)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), u.ID))

		c.Next()
	}
}

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok && u.ID != ""
}
