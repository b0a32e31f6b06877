package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/crypto/argon2"
)

const (
	saltLen    = 16
	keyLen     = 32
	argonTime  = 1
	argonMem   = 64 * 1024
	argonLanes = 4
)

var ErrWeakPassword = errors.New("password is too weak")

// Hasher derives argon2id hashes with a per-password random salt.
type Hasher struct {
	minEntropy float64
}

func NewHasher(minEntropy float64) *Hasher {
	return &Hasher{minEntropy: minEntropy}
}

// Hash returns the base64 encoded hash and salt for plain.
func (h *Hasher) Hash(plain string) (hash string, salt string, err error) {
	raw := make([]byte, saltLen)
	if _, err = rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("read salt: %w", err)
	}

	key := derive(plain, raw)

	return base64.StdEncoding.EncodeToString(key), base64.StdEncoding.EncodeToString(raw), nil
}

// Verify recomputes the hash with the stored salt and compares in constant time.
func (h *Hasher) Verify(plain, hash, salt string) bool {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false
	}

	want, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false
	}

	got := derive(plain, rawSalt)

	return subtle.ConstantTimeCompare(got, want) == 1
}

// CheckStrength rejects passwords below the configured entropy.
func (h *Hasher) CheckStrength(plain string) error {
	if h.minEntropy <= 0 {
		return nil
	}

	if err := passwordvalidator.Validate(plain, h.minEntropy); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	return nil
}

func derive(plain string, salt []byte) []byte {
	return argon2.IDKey([]byte(plain), salt, argonTime, argonMem, argonLanes, keyLen)
}
