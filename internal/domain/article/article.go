package article

import (
	"errors"
	"strings"
	"time"
)

type Article struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Body         string    `json:"body"`
	CreatedOn    time.Time `json:"createdOn"`
	LastEditedOn time.Time `json:"lastEditedOn"`
	Author       Author    `json:"author"`
}

// Author is the public projection of the owning user.
type Author struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	FullName  string `json:"fullName,omitempty"`
	Email     string `json:"email,omitempty"`
}

var ErrNotFound = errors.New("article not found")

// with pointers if optional, it will be nil
type ListFilter struct {
	AuthorID       *string
	AuthorLastName *string
	CreatedOn      *time.Time
	TitlePart      *string
}

// Matches applies the filter in process. Postgres expresses the same rules in SQL.
func (f ListFilter) Matches(a Article) bool {
	if f.AuthorID != nil && a.Author.ID != *f.AuthorID {
		return false
	}
	if f.AuthorLastName != nil && a.Author.LastName != *f.AuthorLastName {
		return false
	}
	if f.CreatedOn != nil && !SameDay(a.CreatedOn, *f.CreatedOn) {
		return false
	}
	if f.TitlePart != nil && !strings.Contains(a.Title, *f.TitlePart) {
		return false
	}
	return true
}

// SameDay compares calendar dates in UTC.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// DayBounds returns [start, end) of the UTC day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

type AuthorRef struct {
	ID string `json:"id" binding:"required,uuid"`
}

type CreateRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description" binding:"omitempty,max=1000"`
	Body        string    `json:"body" binding:"required"`
	Author      AuthorRef `json:"author"`
}

// a full update payload; the author cannot be changed.
type UpdateRequest struct {
	ID          string `json:"id" binding:"required,uuid"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	Body        string `json:"body" binding:"required"`
}
