// Package client is a typed HTTP client for the newsy REST API.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/geocoder89/newsy/internal/domain/article"
	"github.com/geocoder89/newsy/internal/domain/user"
)

// APIError is the decoded error envelope of a non-2xx response.
type APIError struct {
	Status    int         `json:"-"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d %s: %s", e.Status, e.Code, e.Message)
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: cli}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().
		SetContext(ctx).
		SetError(&errorEnvelope{})

	if token := c.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

func checkResponse(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}

	if env, ok := resp.Error().(*errorEnvelope); ok && env.Error.Code != "" {
		apiErr := env.Error
		apiErr.Status = resp.StatusCode()
		return &apiErr
	}

	return &APIError{
		Status:  resp.StatusCode(),
		Code:    "http_error",
		Message: strings.TrimSpace(string(resp.Body())),
	}
}

func (c *Client) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	var out user.User

	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		Post("/api/users")
	if err != nil {
		return user.User{}, fmt.Errorf("register request: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return user.User{}, err
	}
	return out, nil
}

// Authenticate logs in and keeps the returned token for later calls.
func (c *Client) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	var out struct {
		User  user.User `json:"user"`
		Token string    `json:"token"`
	}

	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user.AuthenticateRequest{Email: email, Password: password}).
		SetResult(&out).
		Post("/api/users/authenticate")
	if err != nil {
		return user.User{}, fmt.Errorf("authenticate request: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return user.User{}, err
	}

	c.SetToken(out.Token)
	return out.User, nil
}

func (c *Client) ListUsers(ctx context.Context, lastName string) ([]user.User, error) {
	var out []user.User

	req := c.request(ctx).SetResult(&out)
	if lastName != "" {
		req.SetQueryParam("lastName", lastName)
	}

	resp, err := req.Get("/api/users")
	if err != nil {
		return nil, fmt.Errorf("list users request: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (user.User, error) {
	var out user.User

	resp, err := c.request(ctx).
		SetResult(&out).
		SetPathParam("id", id).
		Get("/api/users/{id}")
	if err != nil {
		return user.User{}, fmt.Errorf("get user request: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return user.User{}, err
	}
	return out, nil
}

func (c *Client) UpdateUser(ctx context.Context, req user.UpdateRequest) error {
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetPathParam("id", req.ID).
		Put("/api/users/{id}")
	if err != nil {
		return fmt.Errorf("update user request: %w", err)
	}
	return checkResponse(resp)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		Delete("/api/users/{id}")
	if err != nil {
		return fmt.Errorf("delete user request: %w", err)
	}
	return checkResponse(resp)
}

// ArticleQuery holds the optional list filters; zero values are not sent.
type ArticleQuery struct {
	AuthorID       string
	AuthorLastName string
	CreatedOn      time.Time
	TitlePart      string
}

func (q ArticleQuery) params() map[string]string {
	p := map[string]string{}
	if q.AuthorID != "" {
		p["authorID"] = q.AuthorID
	}
	if q.AuthorLastName != "" {
		p["authorLastName"] = q.AuthorLastName
	}
	if !q.CreatedOn.IsZero() {
		p["createdOn"] = q.CreatedOn.Format(time.DateOnly)
	}
	if q.TitlePart != "" {
		p["titlePart"] = q.TitlePart
	}
	return p
}

func (c *Client) ListArticles(ctx context.Context, q ArticleQuery) ([]article.Article, error) {
	var out []article.Article

	resp, err := c.request(ctx).
		SetResult(&out).
		SetQueryParams(q.params()).
		Get("/api/articles")
	if err != nil {
		return nil, fmt.Errorf("list articles request: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetArticle(ctx context.Context, id string) (article.Article, error) {
	var out article.Article

	resp, err := c.request(ctx).
		SetResult(&out).
		SetPathParam("id", id).
		Get("/api/articles/{id}")
	if err != nil {
		return article.Article{}, fmt.Errorf("get article request: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return article.Article{}, err
	}
	return out, nil
}

// CreateArticle returns the created article and the Location header.
func (c *Client) CreateArticle(ctx context.Context, req article.CreateRequest) (article.Article, string, error) {
	var out article.Article

	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		Post("/api/articles")
	if err != nil {
		return article.Article{}, "", fmt.Errorf("create article request: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return article.Article{}, "", err
	}
	return out, resp.Header().Get("Location"), nil
}

func (c *Client) UpdateArticle(ctx context.Context, req article.UpdateRequest) error {
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetPathParam("id", req.ID).
		Put("/api/articles/{id}")
	if err != nil {
		return fmt.Errorf("update article request: %w", err)
	}
	return checkResponse(resp)
}

func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		Delete("/api/articles/{id}")
	if err != nil {
		return fmt.Errorf("delete article request: %w", err)
	}
	return checkResponse(resp)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
