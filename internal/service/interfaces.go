package service

import (
	"context"

	"github.com/geocoder89/newsy/internal/domain/article"
	"github.com/geocoder89/newsy/internal/domain/user"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/repositories_mock.go -package=mock

type UserRepository interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context, filter user.ListFilter) ([]user.User, error)
	Update(ctx context.Context, u user.User) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type ArticleRepository interface {
	Create(ctx context.Context, a article.Article) (article.Article, error)
	GetByID(ctx context.Context, id string) (article.Article, error)
	AuthorID(ctx context.Context, id string) (string, error)
	List(ctx context.Context, filter article.ListFilter) ([]article.Article, error)
	Update(ctx context.Context, a article.Article) error
	Delete(ctx context.Context, id string) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type PasswordHasher interface {
	Hash(plain string) (hash string, salt string, err error)
	Verify(plain, hash, salt string) bool
	CheckStrength(plain string) error
}
