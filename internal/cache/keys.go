package cache

import (
	"strconv"
	"time"

	"github.com/geocoder89/newsy/internal/domain/article"
)

const ArticlesListPrefix = "articles:list:"

// BuildArticlesListKey encodes the cache generation and every filter so distinct
// queries never share an entry. Free text is quoted verbatim since title and last
// name matches are case sensitive.
func BuildArticlesListKey(gen uint64, f article.ListFilter) string {
	authorID := ""
	if f.AuthorID != nil {
		authorID = *f.AuthorID
	}
	lastName := "-"
	if f.AuthorLastName != nil {
		lastName = strconv.Quote(*f.AuthorLastName)
	}
	created := ""
	if f.CreatedOn != nil {
		created = f.CreatedOn.UTC().Format(time.DateOnly)
	}
	title := "-"
	if f.TitlePart != nil {
		title = strconv.Quote(*f.TitlePart)
	}

	return ArticlesListPrefix + "g" + strconv.FormatUint(gen, 10) +
		":v1:author=" + authorID +
		":last=" + lastName +
		":created=" + created +
		":title=" + title
}
