package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/geocoder89/newsy/internal/actorctx"
	"github.com/geocoder89/newsy/internal/authz"
	"github.com/geocoder89/newsy/internal/domain/article"
	"github.com/geocoder89/newsy/internal/domain/user"
	"github.com/geocoder89/newsy/internal/service"
)

type ArticleManager interface {
	Create(ctx context.Context, req article.CreateRequest) (article.Article, error)
	Get(ctx context.Context, id string) (article.Article, error)
	List(ctx context.Context, filter article.ListFilter) ([]article.Article, error)
	Update(ctx context.Context, id string, req article.UpdateRequest) error
	Delete(ctx context.Context, id string) error
	OwnerOf(ctx context.Context, id string) (string, error)
}

type ArticlesHandler struct {
	articles ArticleManager
}

func NewArticlesHandler(articles ArticleManager) *ArticlesHandler {
	return &ArticlesHandler{articles: articles}
}

func (h *ArticlesHandler) List(ctx *gin.Context) {
	filter, details := parseArticleFilter(ctx)
	if details != nil {
		RespondBadRequest(ctx, "Invalid query parameters", details)
		return
	}

	items, err := h.articles.List(ctx.Request.Context(), filter)
	if err != nil {
		RespondInternal(ctx, "Could not list articles", err)
		return
	}
	if items == nil {
		items = []article.Article{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func parseArticleFilter(ctx *gin.Context) (article.ListFilter, []FieldError) {
	var (
		filter article.ListFilter
		errs   []FieldError
	)

	if v := ctx.Query("authorID"); v != "" {
		if uuid.Validate(v) != nil {
			errs = append(errs, FieldError{Field: "authorID", Rule: "uuid", Message: validationMessage("uuid", "")})
		} else {
			filter.AuthorID = &v
		}
	}

	if v, ok := ctx.GetQuery("authorLastName"); ok {
		filter.AuthorLastName = &v
	}

	if v := ctx.Query("createdOn"); v != "" {
		day, err := parseDay(v)
		if err != nil {
			errs = append(errs, FieldError{Field: "createdOn", Rule: "date", Message: "must be YYYY-MM-DD or RFC 3339"})
		} else {
			filter.CreatedOn = &day
		}
	}

	if v, ok := ctx.GetQuery("titlePart"); ok {
		filter.TitlePart = &v
	}

	return filter, errs
}

func parseDay(v string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

func (h *ArticlesHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if uuid.Validate(id) != nil {
		RespondBadRequest(ctx, "Invalid article id", gin.H{"field": "id"})
		return
	}

	a, err := h.articles.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			RespondNotFound(ctx, "Article not found")
			return
		}
		RespondInternal(ctx, "Could not fetch article", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, a)
}

// Create only lets callers publish as themselves; the check runs before anything is stored.
func (h *ArticlesHandler) Create(ctx *gin.Context) {
	var req article.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	callerID, _ := actorctx.UserIDFrom(ctx.Request.Context())
	if !authz.Validate(callerID, req.Author.ID) {
		RespondUnauthorized(ctx, "unauthorized", "You cannot create article as another user!")
		return
	}

	a, err := h.articles.Create(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx, "unauthorized", "Author no longer exists")
			return
		}
		RespondInternal(ctx, "Could not create article", err)
		return
	}

	ctx.Header("Location", "/api/articles/"+a.ID)
	ctx.JSON(http.StatusCreated, a)
}

// Update is author only; ownership is checked before the body is looked at.
func (h *ArticlesHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	if !requireOwner(ctx, id, h.articles.OwnerOf, "You cannot update article from another user!") {
		return
	}

	var req article.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	err := h.articles.Update(ctx.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIDMismatch):
			RespondBadRequest(ctx, "Id in path and body differ", gin.H{"field": "id"})
		case errors.Is(err, article.ErrNotFound):
			RespondNotFound(ctx, "Article not found")
		default:
			RespondInternal(ctx, "Could not update article", err)
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *ArticlesHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if !requireOwner(ctx, id, h.articles.OwnerOf, "You cannot delete another users article!") {
		return
	}

	if err := h.articles.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, article.ErrNotFound) {
			RespondNotFound(ctx, "Article not found")
			return
		}
		RespondInternal(ctx, "Could not delete article", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
