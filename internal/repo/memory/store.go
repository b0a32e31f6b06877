package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/newsy/internal/domain/article"
	"github.com/geocoder89/newsy/internal/domain/user"
)

// Store keeps users and articles in process. Both repos share one lock so that
// cascade deletes and author joins see a consistent view.
type Store struct {
	mu       sync.RWMutex
	users    map[string]user.User
	articles map[string]article.Article // Author holds only the id
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]user.User),
		articles: make(map[string]article.Article),
	}
}

func (s *Store) Users() *UsersRepo {
	return &UsersRepo{s: s}
}

func (s *Store) Articles() *ArticlesRepo {
	return &ArticlesRepo{s: s}
}

func (s *Store) Ping(context.Context) error {
	return nil
}

type UsersRepo struct {
	s *Store
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTakenLocked(u.Email, "") {
		return user.User{}, user.ErrEmailTaken
	}

	u.FullName = user.FullName(u.FirstName, u.LastName)
	r.s.users[u.ID] = u
	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) List(_ context.Context, filter user.ListFilter) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if filter.LastName != nil && u.LastName != *filter.LastName {
			continue
		}
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *UsersRepo) Update(_ context.Context, u user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	if r.emailTakenLocked(u.Email, u.ID) {
		return user.ErrEmailTaken
	}

	u.FullName = user.FullName(u.FirstName, u.LastName)
	r.s.users[u.ID] = u
	return nil
}

// Delete removes the user and every article they authored.
func (r *UsersRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.s.users, id)

	for aid, a := range r.s.articles {
		if a.Author.ID == id {
			delete(r.s.articles, aid)
		}
	}
	return nil
}

func (r *UsersRepo) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.users[id]
	return ok, nil
}

func (r *UsersRepo) emailTakenLocked(email, exceptID string) bool {
	for id, u := range r.s.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

type ArticlesRepo struct {
	s *Store
}

func (r *ArticlesRepo) Create(_ context.Context, a article.Article) (article.Article, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// mirrors the foreign key on articles.author_id
	if _, ok := r.s.users[a.Author.ID]; !ok {
		return article.Article{}, user.ErrNotFound
	}

	a.Author = article.Author{ID: a.Author.ID}
	r.s.articles[a.ID] = a
	return r.withAuthorLocked(a), nil
}

func (r *ArticlesRepo) GetByID(_ context.Context, id string) (article.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.articles[id]
	if !ok {
		return article.Article{}, article.ErrNotFound
	}
	return r.withAuthorLocked(a), nil
}

func (r *ArticlesRepo) AuthorID(_ context.Context, id string) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.articles[id]
	if !ok {
		return "", article.ErrNotFound
	}
	return a.Author.ID, nil
}

func (r *ArticlesRepo) List(_ context.Context, filter article.ListFilter) ([]article.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]article.Article, 0, len(r.s.articles))
	for _, a := range r.s.articles {
		full := r.withAuthorLocked(a)
		if filter.Matches(full) {
			out = append(out, full)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedOn.Equal(out[j].CreatedOn) {
			return out[i].CreatedOn.Before(out[j].CreatedOn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ArticlesRepo) Update(_ context.Context, a article.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.articles[a.ID]
	if !ok {
		return article.ErrNotFound
	}

	cur.Title = a.Title
	cur.Description = a.Description
	cur.Body = a.Body
	cur.LastEditedOn = a.LastEditedOn
	r.s.articles[a.ID] = cur
	return nil
}

func (r *ArticlesRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.articles[id]; !ok {
		return article.ErrNotFound
	}
	delete(r.s.articles, id)
	return nil
}

func (r *ArticlesRepo) withAuthorLocked(a article.Article) article.Article {
	if u, ok := r.s.users[a.Author.ID]; ok {
		a.Author = article.Author{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			FullName:  user.FullName(u.FirstName, u.LastName),
			Email:     u.Email,
		}
	}
	return a
}
