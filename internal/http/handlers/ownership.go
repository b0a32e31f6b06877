package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/newsy/internal/authz"
	"github.com/geocoder89/newsy/internal/domain/article"
	"github.com/geocoder89/newsy/internal/domain/user"
)

// requireOwner gates a mutation on the caller owning resourceID. It writes the
// error response itself and reports whether the handler may continue.
func requireOwner(ctx *gin.Context, resourceID string, lookup authz.OwnerLookup, deniedMessage string) bool {
	err := authz.Authorize(ctx.Request.Context(), resourceID, lookup)

	switch {
	case err == nil:
		return true
	case errors.Is(err, authz.ErrForbidden):
		RespondUnauthorized(ctx, "unauthorized", deniedMessage)
	case errors.Is(err, article.ErrNotFound):
		RespondNotFound(ctx, "Article not found")
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	default:
		RespondInternal(ctx, "Could not verify ownership", err)
	}
	return false
}
