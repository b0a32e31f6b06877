package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/geocoder89/newsy/internal/cache"
	"github.com/geocoder89/newsy/internal/domain/article"
	"github.com/geocoder89/newsy/internal/observability"
)

const listCacheName = "articles_list"

type ArticleService struct {
	articles ArticleRepository
	cache    cache.Store
	prom     *observability.Prom
	log      *slog.Logger
	now      func() time.Time
}

// NewArticleService wires article flows. listCache and prom are optional.
func NewArticleService(articles ArticleRepository, listCache cache.Store, prom *observability.Prom, log *slog.Logger) *ArticleService {
	if log == nil {
		log = slog.Default()
	}
	return &ArticleService{
		articles: articles,
		cache:    listCache,
		prom:     prom,
		log:      log,
		now:      time.Now,
	}
}

// Create stamps id and timestamps server side. An unknown author surfaces as user.ErrNotFound.
func (s *ArticleService) Create(ctx context.Context, req article.CreateRequest) (article.Article, error) {
	a, err := s.articles.Create(ctx, article.NewFromCreateRequest(req, s.now()))
	if err != nil {
		return article.Article{}, err
	}

	invalidate(ctx, s.cache, s.log)
	return a, nil
}

func (s *ArticleService) Get(ctx context.Context, id string) (article.Article, error) {
	return s.articles.GetByID(ctx, id)
}

// List serves from the cache when possible. Cache failures fall through to the store.
// The key carries the generation read before the store query, so a write that
// invalidates meanwhile leaves this result under a key nobody reads again.
func (s *ArticleService) List(ctx context.Context, filter article.ListFilter) ([]article.Article, error) {
	if s.cache == nil {
		return s.articles.List(ctx, filter)
	}

	gen, err := s.cache.Generation(ctx, cache.ArticlesListPrefix)
	if err != nil {
		s.observeCache("error")
		s.log.WarnContext(ctx, "article list cache generation read failed", "err", err)
		return s.articles.List(ctx, filter)
	}

	key := cache.BuildArticlesListKey(gen, filter)

	raw, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.observeCache("error")
		s.log.WarnContext(ctx, "article list cache read failed", "err", err, "key", key)
	case ok:
		var cached []article.Article
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.observeCache("hit")
			return cached, nil
		}
		s.observeCache("error")
		s.log.WarnContext(ctx, "article list cache entry corrupt", "key", key)
	default:
		s.observeCache("miss")
	}

	items, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(items); err == nil {
		if err := s.cache.Set(ctx, key, b); err != nil {
			s.log.WarnContext(ctx, "article list cache write failed", "err", err, "key", key)
		}
	}

	return items, nil
}

// Update overwrites title, description and body. Concurrent updates are last write wins.
func (s *ArticleService) Update(ctx context.Context, id string, req article.UpdateRequest) error {
	if req.ID != id {
		return ErrIDMismatch
	}

	current, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.articles.Update(ctx, current.Apply(req, s.now())); err != nil {
		return err
	}

	invalidate(ctx, s.cache, s.log)
	return nil
}

func (s *ArticleService) Delete(ctx context.Context, id string) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}

	invalidate(ctx, s.cache, s.log)
	return nil
}

// OwnerOf resolves the author of an article for authorization checks.
func (s *ArticleService) OwnerOf(ctx context.Context, id string) (string, error) {
	return s.articles.AuthorID(ctx, id)
}

func (s *ArticleService) observeCache(result string) {
	if s.prom != nil {
		s.prom.ObserveCache(listCacheName, result)
	}
}
