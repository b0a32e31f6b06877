package article

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestListFilter_Matches(t *testing.T) {
	created := time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)
	a := Article{
		Title:     "Lost boy and the King Baltazar",
		CreatedOn: created,
		Author:    Author{ID: "a-1", LastName: "Doe"},
	}

	tests := []struct {
		name   string
		filter ListFilter
		want   bool
	}{
		{"empty", ListFilter{}, true},
		{"author id", ListFilter{AuthorID: ptr("a-1")}, true},
		{"other author id", ListFilter{AuthorID: ptr("a-2")}, false},
		{"last name", ListFilter{AuthorLastName: ptr("Doe")}, true},
		{"last name is case sensitive", ListFilter{AuthorLastName: ptr("doe")}, false},
		{"same day", ListFilter{CreatedOn: ptr(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))}, true},
		{"next day", ListFilter{CreatedOn: ptr(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))}, false},
		{"title part", ListFilter{TitlePart: ptr("King")}, true},
		{"title part is case sensitive", ListFilter{TitlePart: ptr("king")}, false},
		{"all match", ListFilter{AuthorID: ptr("a-1"), TitlePart: ptr("boy")}, true},
		{"one fails", ListFilter{AuthorID: ptr("a-1"), TitlePart: ptr("Queen")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(a))
		})
	}
}

func TestDayBounds(t *testing.T) {
	start, end := DayBounds(time.Date(2024, 3, 10, 22, 30, 0, 0, time.FixedZone("x", 3*3600)))

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), end)
}

func TestApply_KeepsIdentity(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Article{ID: "x", CreatedOn: created, Author: Author{ID: "a-1"}}
	edited := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	got := a.Apply(UpdateRequest{ID: "x", Title: "T", Body: "B"}, edited)

	assert.Equal(t, "x", got.ID)
	assert.Equal(t, created, got.CreatedOn)
	assert.Equal(t, edited, got.LastEditedOn)
	assert.Equal(t, "a-1", got.Author.ID)
	assert.Equal(t, "T", got.Title)
}
