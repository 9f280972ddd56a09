package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/socialhub/internal/auth"
	"github.com/geocoder89/socialhub/internal/config"
	"github.com/geocoder89/socialhub/internal/domain/post"
	"github.com/geocoder89/socialhub/internal/domain/user"
	"github.com/geocoder89/socialhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type PostService interface {
	CreatePost(ctx context.Context, actor user.User, content string) (post.View, error)
	ToggleLike(ctx context.Context, actor user.User, postID string) (post.LikeResult, error)
	AddComment(ctx context.Context, actor user.User, postID, text string) (post.CommentView, int, error)
}

type PostsHandler struct {
	svc     PostService
	timeout time.Duration
}

func NewPostsHandler(svc PostService, timeout time.Duration) *PostsHandler {
	return &PostsHandler{svc: svc, timeout: timeout}
}

// POST /posts/new
func (h *PostsHandler) CreatePost(ctx *gin.Context) {
	actor, _ := middlewares.UserFromContext(ctx)

	var req post.CreatePostRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	p, err := h.svc.CreatePost(cctx, actor, req.Content)
	if err != nil {
		h.respondMutationError(ctx, err, "Could not create post")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Post created",
		"post":    p,
	})
}

// POST /posts/:id/like
func (h *PostsHandler) ToggleLike(ctx *gin.Context) {
	actor, _ := middlewares.UserFromContext(ctx)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.svc.ToggleLike(cctx, actor, ctx.Param("id"))
	if err != nil {
		h.respondMutationError(ctx, err, "Could not update like")
		return
	}

	ctx.JSON(http.StatusOK, res)
}

// POST /posts/:id/comment
func (h *PostsHandler) AddComment(ctx *gin.Context) {
	actor, _ := middlewares.UserFromContext(ctx)

	var req post.AddCommentRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	c, total, err := h.svc.AddComment(cctx, actor, ctx.Param("id"), req.Text)
	if err != nil {
		h.respondMutationError(ctx, err, "Could not add comment")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":       "Comment added",
		"comment":       c,
		"totalComments": total,
	})
}

func (h *PostsHandler) respondMutationError(ctx *gin.Context, err error, internalMsg string) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		RespondUnauthorized(ctx, "Unauthorized")
	case errors.Is(err, post.ErrNotFound):
		RespondNotFound(ctx, "Post not found")
	case errors.Is(err, post.ErrContentRequired):
		RespondBadRequest(ctx, "Post content is required", nil)
	case errors.Is(err, post.ErrCommentTextRequired):
		RespondBadRequest(ctx, "Comment text is required", nil)
	default:
		RespondInternal(ctx, internalMsg, err)
	}
}
