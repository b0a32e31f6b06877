package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/newsy/internal/cache"
	"github.com/geocoder89/newsy/internal/domain/user"
)

type UserService struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	cache  cache.Store
	log    *slog.Logger
}

// NewUserService wires the user flows. listCache may be nil; it is only
// invalidated here because article lists embed author data.
func NewUserService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, listCache cache.Store, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		cache:  listCache,
		log:    log,
	}
}

func (s *UserService) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	if err := s.hasher.CheckStrength(req.Password); err != nil {
		return user.User{}, err
	}

	hash, salt, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, user.NewFromRegisterRequest(req, hash, salt))
	if err != nil {
		return user.User{}, err
	}

	return u.Sanitized(), nil
}

// Authenticate returns ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (user.User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, "", ErrInvalidCredentials
		}
		return user.User{}, "", err
	}

	if !s.hasher.Verify(password, u.PasswordHash, u.PasswordSalt) {
		return user.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return user.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	return u.Sanitized(), token, nil
}

func (s *UserService) Get(ctx context.Context, id string) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	return u.Sanitized(), nil
}

func (s *UserService) List(ctx context.Context, filter user.ListFilter) ([]user.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]user.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	return out, nil
}

// Update reads the current row, overwrites the profile and saves it. Concurrent
// updates are last write wins.
func (s *UserService) Update(ctx context.Context, id string, req user.UpdateRequest) error {
	if req.ID != id {
		return ErrIDMismatch
	}

	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	current.FirstName = req.FirstName
	current.LastName = req.LastName
	current.Email = req.Email

	if req.Password != "" {
		if err := s.hasher.CheckStrength(req.Password); err != nil {
			return err
		}
		hash, salt, err := s.hasher.Hash(req.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		current.PasswordHash = hash
		current.PasswordSalt = salt
	}

	if err := s.users.Update(ctx, current); err != nil {
		return err
	}

	s.invalidateArticleLists(ctx)
	return nil
}

// Delete removes the user together with their articles.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateArticleLists(ctx)
	return nil
}

func (s *UserService) Exists(ctx context.Context, id string) (bool, error) {
	return s.users.Exists(ctx, id)
}

func (s *UserService) invalidateArticleLists(ctx context.Context) {
	invalidate(ctx, s.cache, s.log)
}

func invalidate(ctx context.Context, store cache.Store, log *slog.Logger) {
	if store == nil {
		return
	}
	if err := store.DeletePrefix(ctx, cache.ArticlesListPrefix); err != nil {
		log.WarnContext(ctx, "article list cache invalidation failed", "err", err)
	}
}
