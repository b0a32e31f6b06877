package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/geocoder89/newsy/internal/cache"
	"github.com/geocoder89/newsy/internal/domain/article"
	"github.com/geocoder89/newsy/internal/domain/user"
	"github.com/geocoder89/newsy/internal/mock"
	"github.com/geocoder89/newsy/internal/observability"
)

func TestArticles_CreateStampsServerFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f.articles.now = func() time.Time { return now }

	u, err := f.users.Register(ctx, registerReq("jane@example.com"))
	require.NoError(t, err)

	a, err := f.articles.Create(ctx, article.CreateRequest{Title: "T", Body: "B", Author: article.AuthorRef{ID: u.ID}})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, now, a.CreatedOn)
	assert.Equal(t, now, a.LastEditedOn)
	assert.Equal(t, "Jane Doe", a.Author.FullName)

	_, err = f.articles.Create(ctx, article.CreateRequest{Title: "T", Body: "B", Author: article.AuthorRef{ID: uuid.NewString()}})
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestArticles_TitlePart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, registerReq("jane@example.com"))
	require.NoError(t, err)

	for _, title := range []string{"King Blah", "Lost boy and the King Baltazar", "Test"} {
		_, err := f.articles.Create(ctx, article.CreateRequest{Title: title, Body: "b", Author: article.AuthorRef{ID: u.ID}})
		require.NoError(t, err)
	}

	part := "King"
	got, err := f.articles.List(ctx, article.ListFilter{TitlePart: &part})
	require.NoError(t, err)

	titles := make([]string, 0, len(got))
	for _, a := range got {
		titles = append(titles, a.Title)
	}
	assert.ElementsMatch(t, []string{"King Blah", "Lost boy and the King Baltazar"}, titles)
}

func TestArticles_UpdateAndCacheInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f.articles.now = func() time.Time { return created }

	u, err := f.users.Register(ctx, registerReq("jane@example.com"))
	require.NoError(t, err)
	a, err := f.articles.Create(ctx, article.CreateRequest{Title: "Old", Body: "b", Author: article.AuthorRef{ID: u.ID}})
	require.NoError(t, err)

	// warm the cache
	list, err := f.articles.List(ctx, article.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	edited := created.Add(time.Hour)
	f.articles.now = func() time.Time { return edited }

	require.ErrorIs(t, f.articles.Update(ctx, a.ID, article.UpdateRequest{ID: uuid.NewString(), Title: "x", Body: "y"}), ErrIDMismatch)
	require.NoError(t, f.articles.Update(ctx, a.ID, article.UpdateRequest{ID: a.ID, Title: "New", Body: "b2"}))

	list, err = f.articles.List(ctx, article.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "New", list[0].Title)
	assert.Equal(t, created, list[0].CreatedOn)
	assert.Equal(t, edited, list[0].LastEditedOn)

	owner, err := f.articles.OwnerOf(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, owner)

	require.NoError(t, f.articles.Delete(ctx, a.ID))
	list, err = f.articles.List(ctx, article.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.ErrorIs(t, f.articles.Delete(ctx, a.ID), article.ErrNotFound)
	_, err = f.articles.Get(ctx, a.ID)
	require.ErrorIs(t, err, article.ErrNotFound)
}

func TestArticles_ListServesFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockArticleRepository(ctrl)
	store := mock.NewMockStore(ctrl)
	prom := observability.NewProm(prometheus.NewRegistry())

	cached := []article.Article{{ID: "a-1", Title: "cached"}}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	store.EXPECT().Generation(gomock.Any(), cache.ArticlesListPrefix).Return(uint64(3), nil)
	store.EXPECT().Get(gomock.Any(), cache.BuildArticlesListKey(3, article.ListFilter{})).Return(raw, true, nil)

	svc := NewArticleService(repo, store, prom, discardLogger())
	got, err := svc.List(context.Background(), article.ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cached", got[0].Title)
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.CacheLookups.WithLabelValues(listCacheName, "hit")))
}

func TestArticles_ListFallsBackWhenCacheFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockArticleRepository(ctrl)
	store := mock.NewMockStore(ctrl)
	prom := observability.NewProm(prometheus.NewRegistry())

	fromDB := []article.Article{{ID: "a-1", Title: "db"}}

	store.EXPECT().Generation(gomock.Any(), cache.ArticlesListPrefix).Return(uint64(0), nil)
	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, errors.New("redis down"))
	repo.EXPECT().List(gomock.Any(), article.ListFilter{}).Return(fromDB, nil)
	store.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	svc := NewArticleService(repo, store, prom, discardLogger())
	got, err := svc.List(context.Background(), article.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, fromDB, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.CacheLookups.WithLabelValues(listCacheName, "error")))
}

func TestArticles_StoreErrorsPropagate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockArticleRepository(ctrl)
	boom := errors.New("serialization failure")

	repo.EXPECT().GetByID(gomock.Any(), "a-1").Return(article.Article{ID: "a-1"}, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(boom)

	svc := NewArticleService(repo, nil, nil, discardLogger())
	err := svc.Update(context.Background(), "a-1", article.UpdateRequest{ID: "a-1", Title: "t", Body: "b"})
	require.ErrorIs(t, err, boom)
}

func TestArticles_ListWithoutGenerationSkipsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockArticleRepository(ctrl)
	store := mock.NewMockStore(ctrl)
	prom := observability.NewProm(prometheus.NewRegistry())

	fromDB := []article.Article{{ID: "a-1", Title: "db"}}

	store.EXPECT().Generation(gomock.Any(), cache.ArticlesListPrefix).Return(uint64(0), errors.New("redis down"))
	repo.EXPECT().List(gomock.Any(), article.ListFilter{}).Return(fromDB, nil)

	svc := NewArticleService(repo, store, prom, discardLogger())
	got, err := svc.List(context.Background(), article.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, fromDB, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.CacheLookups.WithLabelValues(listCacheName, "error")))
}

// pausingArticles holds List after the store read until release is closed.
type pausingArticles struct {
	ArticleRepository

	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (p *pausingArticles) List(ctx context.Context, filter article.ListFilter) ([]article.Article, error) {
	items, err := p.ArticleRepository.List(ctx, filter)

	paused := false
	p.once.Do(func() { paused = true })
	if paused {
		close(p.read)
		<-p.release
	}
	return items, err
}

func TestArticles_ListDoesNotCacheSnapshotOlderThanDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, registerReq("jane@example.com"))
	require.NoError(t, err)
	a, err := f.articles.Create(ctx, article.CreateRequest{Title: "Doomed", Body: "b", Author: article.AuthorRef{ID: u.ID}})
	require.NoError(t, err)

	slow := &pausingArticles{
		ArticleRepository: f.store.Articles(),
		read:              make(chan struct{}),
		release:           make(chan struct{}),
	}
	reader := NewArticleService(slow, f.cache, nil, discardLogger())

	done := make(chan []article.Article, 1)
	go func() {
		items, err := reader.List(ctx, article.ListFilter{})
		assert.NoError(t, err)
		done <- items
	}()

	// the reader holds a snapshot with the article in it
	<-slow.read
	require.NoError(t, f.articles.Delete(ctx, a.ID))
	close(slow.release)
	require.Len(t, <-done, 1)

	items, err := f.articles.List(ctx, article.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, items, "deleted article served from cache")

	// a user delete cascades and invalidates the same way
	b, err := f.articles.Create(ctx, article.CreateRequest{Title: "Cascaded", Body: "b", Author: article.AuthorRef{ID: u.ID}})
	require.NoError(t, err)
	items, err = f.articles.List(ctx, article.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ID)

	require.NoError(t, f.users.Delete(ctx, u.ID))
	items, err = f.articles.List(ctx, article.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}
