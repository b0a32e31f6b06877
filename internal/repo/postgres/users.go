package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/newsy/internal/domain/user"
	"github.com/geocoder89/newsy/internal/observability"
)

const userColumns = "id, first_name, last_name, email, password_hash, password_salt"

type UsersRepo struct {
	base
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{base{pool: pool, prom: prom}}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.PasswordSalt)
	if err != nil {
		return user.User{}, err
	}
	u.FullName = user.FullName(u.FirstName, u.LastName)
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	var out user.User

	err := r.observe("users.create", func() error {
		var err error
		out, err = scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (`+userColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+userColumns,
			u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.PasswordSalt,
		))
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}

	return out, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if !validID(id) {
		return user.User{}, user.ErrNotFound
	}
	return r.getOne(ctx, "users.get_by_id", "id", id)
}

// GetByEmail is an exact, case-sensitive match.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", "email", email)
}

func (r *UsersRepo) getOne(ctx context.Context, op, column, value string) (user.User, error) {
	var u user.User

	err := r.observe(op, func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || IsInvalidText(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context, filter user.ListFilter) ([]user.User, error) {
	qb := psql.Select(userColumns).From("users").OrderBy("last_name ASC", "id ASC")

	if filter.LastName != nil {
		qb = qb.Where("last_name = ?", *filter.LastName)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build users list query: %w", err)
	}

	out := make([]user.User, 0)

	err = r.observe("users.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) error {
	err := r.execOne(ctx, "users.update", user.ErrNotFound,
		`UPDATE users
		SET first_name = $2,
			last_name = $3,
			email = $4,
			password_hash = $5,
			password_salt = $6
		WHERE id = $1`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.PasswordSalt,
	)

	if IsUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

// Delete removes the user; articles go with it through ON DELETE CASCADE.
func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "users.delete", user.ErrNotFound, `DELETE FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	if !validID(id) {
		return false, nil
	}

	err := r.observe("users.exists", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	})

	if err != nil {
		if IsInvalidText(err) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}
