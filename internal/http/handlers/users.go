package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/geocoder89/newsy/internal/authz"
	"github.com/geocoder89/newsy/internal/domain/user"
	"github.com/geocoder89/newsy/internal/service"
)

type UserManager interface {
	Get(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context, filter user.ListFilter) ([]user.User, error)
	Update(ctx context.Context, id string, req user.UpdateRequest) error
	Delete(ctx context.Context, id string) error
}

type UsersHandler struct {
	users UserManager
}

func NewUsersHandler(users UserManager) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) List(ctx *gin.Context) {
	var filter user.ListFilter

	if v, ok := ctx.GetQuery("lastName"); ok {
		filter.LastName = &v
	}

	users, err := h.users.List(ctx.Request.Context(), filter)
	if err != nil {
		RespondInternal(ctx, "Could not list users", err)
		return
	}
	if users == nil {
		users = []user.User{}
	}

	ctx.JSON(http.StatusOK, users)
}

func (h *UsersHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "Invalid user id", gin.H{"field": "id"})
		return
	}

	u, err := h.users.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not fetch user", err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// Update is self only; ownership is checked before the body is looked at.
func (h *UsersHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	if !requireOwner(ctx, id, authz.Self, "You cannot update another user!") {
		return
	}

	var req user.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	err := h.users.Update(ctx.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIDMismatch):
			RespondBadRequest(ctx, "Id in path and body differ", gin.H{"field": "id"})
		case errors.Is(err, user.ErrEmailTaken):
			RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already in use.", nil)
		case errors.Is(err, service.ErrWeakPassword):
			RespondError(ctx, http.StatusBadRequest, "weak_password", "Password is too weak.",
				[]FieldError{{Field: "password", Rule: "entropy", Message: err.Error()}})
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		default:
			RespondInternal(ctx, "Could not update user", err)
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if !requireOwner(ctx, id, authz.Self, "You cannot delete another user!") {
		return
	}

	if err := h.users.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not delete user", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
