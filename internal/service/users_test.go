package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/geocoder89/newsy/internal/auth"
	"github.com/geocoder89/newsy/internal/cache"
	"github.com/geocoder89/newsy/internal/domain/article"
	"github.com/geocoder89/newsy/internal/domain/user"
	"github.com/geocoder89/newsy/internal/mock"
	"github.com/geocoder89/newsy/internal/repo/memory"
	"github.com/geocoder89/newsy/internal/security"
)

const strongPassword = "Tr0ub4dour&3-horse-Battery"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store    *memory.Store
	tokens   *auth.Manager
	cache    *cache.Memory
	users    *UserService
	articles *ArticleService
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	store := memory.NewStore()
	tokens := auth.NewManager("service-test-secret-xx", time.Hour)
	listCache := cache.NewMemory(time.Minute)

	return fixture{
		store:    store,
		tokens:   tokens,
		cache:    listCache,
		users:    NewUserService(store.Users(), security.NewHasher(50), tokens, listCache, discardLogger()),
		articles: NewArticleService(store.Articles(), listCache, nil, discardLogger()),
	}
}

func registerReq(email string) user.RegisterRequest {
	return user.RegisterRequest{FirstName: "Jane", LastName: "Doe", Email: email, Password: strongPassword}
}

func TestRegister_NeverReturnsSecrets(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Register(context.Background(), registerReq("jane@example.com"))
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Jane Doe", u.FullName)
	assert.Empty(t, u.PasswordHash)
	assert.Empty(t, u.PasswordSalt)

	stored, err := f.store.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordSalt)
	assert.NotEqual(t, strongPassword, stored.PasswordHash)
}

func TestRegister_WeakPasswordAndDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	weak := registerReq("weak@example.com")
	weak.Password = "password"
	_, err := f.users.Register(ctx, weak)
	require.ErrorIs(t, err, ErrWeakPassword)

	_, err = f.users.Register(ctx, registerReq("jane@example.com"))
	require.NoError(t, err)
	_, err = f.users.Register(ctx, registerReq("jane@example.com"))
	require.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.users.Register(ctx, registerReq("jane@example.com"))
	require.NoError(t, err)

	u, token, err := f.users.Authenticate(ctx, "jane@example.com", strongPassword)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
	assert.Empty(t, u.PasswordHash)

	claims, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)

	_, _, errWrongPassword := f.users.Authenticate(ctx, "jane@example.com", strongPassword+"x")
	_, _, errUnknownEmail := f.users.Authenticate(ctx, "nobody@example.com", strongPassword)
	require.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, errUnknownEmail, ErrInvalidCredentials)

	// exact match, no case folding
	_, _, err = f.users.Authenticate(ctx, "JANE@example.com", strongPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, registerReq("jane@example.com"))
	require.NoError(t, err)

	err = f.users.Update(ctx, u.ID, user.UpdateRequest{ID: uuid.NewString(), FirstName: "J", LastName: "D", Email: "j@example.com"})
	require.ErrorIs(t, err, ErrIDMismatch)

	// keeps the password when none is given
	require.NoError(t, f.users.Update(ctx, u.ID, user.UpdateRequest{ID: u.ID, FirstName: "Janet", LastName: "Roe", Email: "janet@example.com"}))
	got, err := f.users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Janet Roe", got.FullName)
	_, _, err = f.users.Authenticate(ctx, "janet@example.com", strongPassword)
	require.NoError(t, err)

	newPassword := "An0ther-Str0ng-Passphrase!"
	require.NoError(t, f.users.Update(ctx, u.ID, user.UpdateRequest{ID: u.ID, FirstName: "Janet", LastName: "Roe", Email: "janet@example.com", Password: newPassword}))
	_, _, err = f.users.Authenticate(ctx, "janet@example.com", strongPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.users.Authenticate(ctx, "janet@example.com", newPassword)
	require.NoError(t, err)

	err = f.users.Update(ctx, u.ID, user.UpdateRequest{ID: u.ID, FirstName: "Janet", LastName: "Roe", Email: "janet@example.com", Password: "password"})
	require.ErrorIs(t, err, ErrWeakPassword)

	missing := uuid.NewString()
	err = f.users.Update(ctx, missing, user.UpdateRequest{ID: missing, FirstName: "a", LastName: "b", Email: "c@example.com"})
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestDelete_CascadesAndInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, registerReq("jane@example.com"))
	require.NoError(t, err)
	_, err = f.articles.Create(ctx, article.CreateRequest{Title: "Hello", Body: "b", Author: article.AuthorRef{ID: u.ID}})
	require.NoError(t, err)

	list, err := f.articles.List(ctx, article.ListFilter{AuthorID: &u.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.users.Delete(ctx, u.ID))

	list, err = f.articles.List(ctx, article.ListFilter{AuthorID: &u.ID})
	require.NoError(t, err)
	assert.Empty(t, list)

	ok, err := f.users.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.ErrorIs(t, f.users.Delete(ctx, u.ID), user.ErrNotFound)
}

func TestList_Sanitizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, registerReq("a@example.com"))
	require.NoError(t, err)

	users, err := f.users.List(ctx, user.ListFilter{})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
	assert.Empty(t, users[0].PasswordSalt)
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockUserRepository(ctrl)
	hasher := mock.NewMockPasswordHasher(ctrl)
	tokens := mock.NewMockTokenIssuer(ctrl)
	boom := errors.New("connection reset")

	repo.EXPECT().GetByEmail(gomock.Any(), "jane@example.com").Return(user.User{}, boom)

	svc := NewUserService(repo, hasher, tokens, nil, discardLogger())
	_, _, err := svc.Authenticate(context.Background(), "jane@example.com", "pw")

	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_TokenFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockUserRepository(ctrl)
	hasher := mock.NewMockPasswordHasher(ctrl)
	tokens := mock.NewMockTokenIssuer(ctrl)

	stored := user.User{ID: "u-1", Email: "jane@example.com", PasswordHash: "h", PasswordSalt: "s"}

	gomock.InOrder(
		repo.EXPECT().GetByEmail(gomock.Any(), "jane@example.com").Return(stored, nil),
		hasher.EXPECT().Verify("pw", "h", "s").Return(true),
		tokens.EXPECT().Issue("u-1").Return("", errors.New("sign failed")),
	)

	svc := NewUserService(repo, hasher, tokens, nil, discardLogger())
	_, _, err := svc.Authenticate(context.Background(), "jane@example.com", "pw")
	require.Error(t, err)
}

func TestRegister_PersistsHashNotPlaintext(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockUserRepository(ctrl)
	hasher := mock.NewMockPasswordHasher(ctrl)

	hasher.EXPECT().CheckStrength("plain-pw").Return(nil)
	hasher.EXPECT().Hash("plain-pw").Return("hash", "salt", nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u user.User) (user.User, error) {
			assert.Equal(t, "hash", u.PasswordHash)
			assert.Equal(t, "salt", u.PasswordSalt)
			return u, nil
		},
	)

	svc := NewUserService(repo, hasher, nil, nil, discardLogger())
	u, err := svc.Register(context.Background(), user.RegisterRequest{FirstName: "J", LastName: "D", Email: "j@example.com", Password: "plain-pw"})
	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash)
}

func TestUpdate_CacheInvalidationFailureIsIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockUserRepository(ctrl)
	store := mock.NewMockStore(ctrl)

	current := user.User{ID: "u-1", FirstName: "J", LastName: "D", Email: "j@example.com"}
	repo.EXPECT().GetByID(gomock.Any(), "u-1").Return(current, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().DeletePrefix(gomock.Any(), cache.ArticlesListPrefix).Return(errors.New("redis down"))

	svc := NewUserService(repo, nil, nil, store, discardLogger())
	err := svc.Update(context.Background(), "u-1", user.UpdateRequest{ID: "u-1", FirstName: "A", LastName: "B", Email: "a@example.com"})
	require.NoError(t, err)
}
