package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/newsy/internal/domain/article"
	"github.com/geocoder89/newsy/internal/domain/user"
	"github.com/geocoder89/newsy/internal/observability"
)

var articleColumns = []string{
	"a.id", "a.title", "a.description", "a.body", "a.created_on", "a.last_edited_on",
	"u.id", "u.first_name", "u.last_name", "u.email",
}

type ArticlesRepo struct {
	base
}

func NewArticlesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ArticlesRepo {
	return &ArticlesRepo{base{pool: pool, prom: prom}}
}

func selectArticles() sq.SelectBuilder {
	return psql.Select(articleColumns...).
		From("articles a").
		Join("users u ON u.id = a.author_id")
}

func scanArticle(row pgx.Row) (article.Article, error) {
	var a article.Article
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.Body, &a.CreatedOn, &a.LastEditedOn,
		&a.Author.ID, &a.Author.FirstName, &a.Author.LastName, &a.Author.Email,
	)
	if err != nil {
		return article.Article{}, err
	}
	a.CreatedOn = a.CreatedOn.UTC()
	a.LastEditedOn = a.LastEditedOn.UTC()
	a.Author.FullName = user.FullName(a.Author.FirstName, a.Author.LastName)
	return a, nil
}

func (r *ArticlesRepo) Create(ctx context.Context, a article.Article) (article.Article, error) {
	err := r.observe("articles.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO articles (id, author_id, title, description, body, created_on, last_edited_on)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			a.ID, a.Author.ID, a.Title, a.Description, a.Body, a.CreatedOn, a.LastEditedOn,
		)
		return err
	})

	if err != nil {
		if IsForeignKeyViolation(err) {
			return article.Article{}, user.ErrNotFound
		}
		return article.Article{}, fmt.Errorf("insert article: %w", err)
	}

	return r.GetByID(ctx, a.ID)
}

func (r *ArticlesRepo) GetByID(ctx context.Context, id string) (article.Article, error) {
	if !validID(id) {
		return article.Article{}, article.ErrNotFound
	}

	query, args, err := selectArticles().Where(sq.Eq{"a.id": id}).ToSql()
	if err != nil {
		return article.Article{}, fmt.Errorf("build article query: %w", err)
	}

	var a article.Article
	err = r.observe("articles.get_by_id", func() error {
		var err error
		a, err = scanArticle(r.pool.QueryRow(ctx, query, args...))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || IsInvalidText(err) {
			return article.Article{}, article.ErrNotFound
		}
		return article.Article{}, err
	}
	return a, nil
}

func (r *ArticlesRepo) AuthorID(ctx context.Context, id string) (string, error) {
	var authorID string

	if !validID(id) {
		return "", article.ErrNotFound
	}

	err := r.observe("articles.author_id", func() error {
		return r.pool.QueryRow(ctx, `SELECT author_id FROM articles WHERE id = $1`, id).Scan(&authorID)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || IsInvalidText(err) {
			return "", article.ErrNotFound
		}
		return "", err
	}
	return authorID, nil
}

func (r *ArticlesRepo) List(ctx context.Context, filter article.ListFilter) ([]article.Article, error) {
	qb := selectArticles().OrderBy("a.created_on ASC", "a.id ASC")

	// filtered conditional checks, combined with AND
	if filter.AuthorID != nil {
		if !validID(*filter.AuthorID) {
			return []article.Article{}, nil
		}
		qb = qb.Where(sq.Eq{"a.author_id": *filter.AuthorID})
	}
	if filter.AuthorLastName != nil {
		qb = qb.Where(sq.Eq{"u.last_name": *filter.AuthorLastName})
	}
	if filter.CreatedOn != nil {
		start, end := article.DayBounds(*filter.CreatedOn)
		qb = qb.Where(sq.GtOrEq{"a.created_on": start}).Where(sq.Lt{"a.created_on": end})
	}
	if filter.TitlePart != nil {
		// strpos is case sensitive and needs no LIKE escaping
		qb = qb.Where(sq.Expr("strpos(a.title, ?) > 0", *filter.TitlePart))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build articles list query: %w", err)
	}

	out := make([]article.Article, 0)

	err = r.observe("articles.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			a, err := scanArticle(rows)
			if err != nil {
				return err
			}
			out = append(out, a)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites the editable fields only; author and created_on are immutable.
func (r *ArticlesRepo) Update(ctx context.Context, a article.Article) error {
	return r.execOne(ctx, "articles.update", article.ErrNotFound,
		`UPDATE articles
		SET title = $2,
			description = $3,
			body = $4,
			last_edited_on = $5
		WHERE id = $1`,
		a.ID, a.Title, a.Description, a.Body, a.LastEditedOn,
	)
}

func (r *ArticlesRepo) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "articles.delete", article.ErrNotFound, `DELETE FROM articles WHERE id = $1`, id)
}
