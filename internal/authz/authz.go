// Package authz decides whether the authenticated caller may mutate a resource.
package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/geocoder89/newsy/internal/actorctx"
)

var ErrForbidden = errors.New("caller does not own the resource")

// OwnerLookup resolves the id of the user that owns resourceID.
type OwnerLookup func(ctx context.Context, resourceID string) (string, error)

// Validate reports whether callerID and ownerID name the same user.
// Empty or malformed ids never match.
func Validate(callerID, ownerID string) bool {
	caller, err := uuid.Parse(callerID)
	if err != nil {
		return false
	}
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return false
	}
	return caller == owner
}

// Authorize resolves the owner of resourceID and compares it with the caller in ctx.
// Lookup errors are returned unchanged so callers can map not-found separately.
func Authorize(ctx context.Context, resourceID string, lookup OwnerLookup) error {
	callerID, ok := actorctx.UserIDFrom(ctx)
	if !ok {
		return ErrForbidden
	}

	ownerID, err := lookup(ctx, resourceID)
	if err != nil {
		return err
	}

	if !Validate(callerID, ownerID) {
		return ErrForbidden
	}

	return nil
}

// Self is the owner lookup for user records.
func Self(_ context.Context, userID string) (string, error) {
	return userID, nil
}
