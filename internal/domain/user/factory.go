package user

import "github.com/google/uuid"

func NewFromRegisterRequest(req RegisterRequest, hash, salt string) User {
	return User{
		ID:           uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		FullName:     FullName(req.FirstName, req.LastName),
		Email:        req.Email,
		PasswordHash: hash,
		PasswordSalt: salt,
	}
}
