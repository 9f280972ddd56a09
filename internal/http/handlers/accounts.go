package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/socialhub/internal/config"
	"github.com/geocoder89/socialhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, req user.RegisterRequest) (string, error)
	Login(ctx context.Context, email, password string) (string, user.Public, error)
}

type AccountsHandler struct {
	svc     AccountService
	timeout time.Duration
}

func NewAccountsHandler(svc AccountService, timeout time.Duration) *AccountsHandler {
	return &AccountsHandler{svc: svc, timeout: timeout}
}

// POST /register
func (h *AccountsHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	id, err := h.svc.Register(cctx, req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			RespondError(ctx, http.StatusBadRequest, "email_taken", "Email already exists", nil)
		case errors.Is(err, user.ErrPasswordTooLong):
			RespondBadRequest(ctx, "Password must be at most 72 bytes", map[string]string{"password": "max_bytes"})
		default:
			RespondInternal(ctx, "Could not register user", err)
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  id,
	})
}

// POST /login
func (h *AccountsHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	token, u, err := h.svc.Login(cctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrInvalidCredentials):
			RespondError(ctx, http.StatusBadRequest, "invalid_credentials", "Invalid credentials", nil)
		default:
			RespondInternal(ctx, "Could not log in", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    u,
	})
}
