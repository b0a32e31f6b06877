package user

import "errors"

type User struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never expose hash in JSON
	PasswordSalt string `json:"-"`
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

func FullName(firstName, lastName string) string {
	return firstName + " " + lastName
}

// Sanitized returns a copy safe to hand out of the service layer.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.PasswordSalt = ""
	u.FullName = FullName(u.FirstName, u.LastName)
	return u
}

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

type AuthenticateRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateRequest is a full replace of the profile; an empty password keeps the current one.
type UpdateRequest struct {
	ID        string `json:"id" binding:"required,uuid"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"omitempty,min=8,max=128"`
}

type ListFilter struct {
	LastName *string
}
