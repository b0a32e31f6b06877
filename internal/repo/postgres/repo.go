package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/newsy/internal/observability"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type base struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func (b base) observe(op string, fn func() error) error {
	if b.prom != nil {
		return b.prom.ObserveDB(op, fn)
	}
	return fn()
}

// execOne runs a statement keyed by args[0] that must touch exactly one row.
// Zero rows or a malformed id map to notFound.
func (b base) execOne(ctx context.Context, op string, notFound error, query string, args ...any) error {
	var affected int64

	if len(args) > 0 {
		if id, ok := args[0].(string); ok && !validID(id) {
			return notFound
		}
	}

	err := b.observe(op, func() error {
		tag, err := b.pool.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		if IsInvalidText(err) {
			return notFound
		}
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

// validID keeps malformed ids away from uuid columns.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}
