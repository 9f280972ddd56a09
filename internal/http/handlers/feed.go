package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/socialhub/internal/config"
	"github.com/geocoder89/socialhub/internal/domain/post"
	"github.com/geocoder89/socialhub/internal/domain/user"
	"github.com/geocoder89/socialhub/internal/feed"
	"github.com/gin-gonic/gin"
)

type FeedService interface {
	ListPosts(ctx context.Context, limit, skip int) ([]post.View, error)
	GetUserProfile(ctx context.Context, userID string) (feed.Profile, error)
}

type FeedHandler struct {
	svc     FeedService
	timeout time.Duration
}

func NewFeedHandler(svc FeedService, timeout time.Duration) *FeedHandler {
	return &FeedHandler{svc: svc, timeout: timeout}
}

// GET /posts?limit=10&skip=0
func (h *FeedHandler) ListPosts(ctx *gin.Context) {
	limit := parseIntDefault(ctx.Query("limit"), feed.DefaultLimit)
	skip := parseIntDefault(ctx.Query("skip"), 0)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	items, err := h.svc.ListPosts(cctx, limit, skip)
	if err != nil {
		RespondInternal(ctx, "Could not fetch posts", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"posts": items})
}

// GET /users/:id
func (h *FeedHandler) GetUserProfile(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	prof, err := h.svc.GetUserProfile(cctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, prof)
}
