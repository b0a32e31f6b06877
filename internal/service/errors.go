package service

import (
	"errors"

	"github.com/geocoder89/newsy/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrWeakPassword       = security.ErrWeakPassword
	ErrIDMismatch         = errors.New("id in path and body differ")
)
