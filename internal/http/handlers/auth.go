package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/newsy/internal/domain/user"
	"github.com/geocoder89/newsy/internal/service"
)

type Authenticator interface {
	Register(ctx context.Context, req user.RegisterRequest) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (user.User, string, error)
}

type AuthHandler struct {
	users Authenticator
}

func NewAuthHandler(users Authenticator) *AuthHandler {
	return &AuthHandler{users: users}
}

type AuthenticateResponse struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.users.Register(ctx.Request.Context(), req)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already in use.", nil)
		case errors.Is(err, service.ErrWeakPassword):
			RespondError(ctx, http.StatusBadRequest, "weak_password", "Password is too weak.",
				[]FieldError{{Field: "password", Rule: "entropy", Message: err.Error()}})
		default:
			RespondInternal(ctx, "Could not create user", err)
		}
		return
	}

	ctx.Header("Location", "/api/users/"+u.ID)
	ctx.JSON(http.StatusCreated, u)
}

// Authenticate answers an unknown email and a wrong password identically.
func (h *AuthHandler) Authenticate(ctx *gin.Context) {
	var req user.AuthenticateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, token, err := h.users.Authenticate(ctx.Request.Context(), req.Email, req.Password)

	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}
		RespondInternal(ctx, "Could not authenticate", err)
		return
	}

	ctx.JSON(http.StatusOK, AuthenticateResponse{User: u, Token: token})
}
