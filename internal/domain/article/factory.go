package article

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateRequest, now time.Time) Article {
	now = now.UTC()

	return Article{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		Body:         req.Body,
		CreatedOn:    now,
		LastEditedOn: now,
		Author:       Author{ID: req.Author.ID},
	}
}

// Apply overwrites the editable fields and stamps the edit time.
func (a Article) Apply(req UpdateRequest, now time.Time) Article {
	a.Title = req.Title
	a.Description = req.Description
	a.Body = req.Body
	a.LastEditedOn = now.UTC()
	return a
}
