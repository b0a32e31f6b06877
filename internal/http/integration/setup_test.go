package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/geocoder89/newsy/internal/auth"
	"github.com/geocoder89/newsy/internal/cache"
	"github.com/geocoder89/newsy/internal/client"
	"github.com/geocoder89/newsy/internal/config"
	"github.com/geocoder89/newsy/internal/domain/user"
	apphttp "github.com/geocoder89/newsy/internal/http"
	"github.com/geocoder89/newsy/internal/http/handlers"
	"github.com/geocoder89/newsy/internal/observability"
	"github.com/geocoder89/newsy/internal/repo/memory"
	"github.com/geocoder89/newsy/internal/security"
	"github.com/geocoder89/newsy/internal/service"
)

const strongPassword = "Tr0ub4dour&3-horse-Battery"

func testConfig() config.Config {
	return config.Config{
		Env:                "test",
		Storage:            config.StorageMemory,
		JWTSecret:          "integration-test-secret",
		JWTTTL:             time.Hour,
		CacheTTL:           time.Minute,
		OTelServiceName:    "newsy-test",
		MaxBodyBytes:       1 << 20,
		LoginRateLimit:     100,
		LoginRateWindow:    time.Minute,
		RequestTimeout:     3 * time.Second,
		PasswordMinEntropy: 50,
	}
}

type testServer struct {
	URL   string
	Store *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.NewStore()
	listCache := cache.NewMemory(cfg.CacheTTL)
	prom := observability.NewProm(prometheus.NewRegistry())
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	users := service.NewUserService(store.Users(), security.NewHasher(cfg.PasswordMinEntropy), tokens, listCache, log)
	articles := service.NewArticleService(store.Articles(), listCache, prom, log)

	router := apphttp.NewRouter(apphttp.Deps{
		Log:      log,
		Config:   cfg,
		Prom:     prom,
		Users:    users,
		Articles: articles,
		Tokens:   tokens,
		Checks: map[string]handlers.Check{
			"store": store.Ping,
			"cache": listCache.Ping,
		},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{URL: srv.URL, Store: store}
}

func (s *testServer) client() *client.Client {
	return client.New(client.Config{BaseURL: s.URL, Timeout: 5 * time.Second})
}

// signUp registers a user and returns a client already holding their token.
func (s *testServer) signUp(t *testing.T, first, last, email string) (*client.Client, user.User) {
	t.Helper()
	ctx := context.Background()

	c := s.client()
	u, err := c.Register(ctx, user.RegisterRequest{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  strongPassword,
	})
	require.NoError(t, err)

	_, err = c.Authenticate(ctx, email, strongPassword)
	require.NoError(t, err)

	return c, u
}
