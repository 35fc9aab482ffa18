// Package hash wraps bcrypt for user passwords.
package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Hasher is what registration, login, settings and admin edits need.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) error
	NeedsRehash(hashed string) bool
}

var (
	// ErrPasswordMismatch 表示密码与哈希不匹配。
	ErrPasswordMismatch = errors.New("password mismatch / 密码不匹配")
	// ErrPasswordTooLong is returned for passwords over MaxPasswordBytes.
	ErrPasswordTooLong = errors.New("password longer than 72 bytes / 密码超过 72 字节")
)

// BcryptHasher hashes with a fixed cost. Hashes written by other bcrypt
// implementations ($2a$, $2b$, $2y$) verify as well.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost, cost > bcrypt.MaxCost:
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d] / bcrypt cost 超出范围", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w / 密码哈希失败", err)
	}
	return string(hashed), nil
}

// Compare returns ErrPasswordMismatch for a wrong password and a wrapped error
// when the stored hash is malformed.
func (h *BcryptHasher) Compare(hashed, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("compare password hash: %w / 校验哈希失败", err)
	}
}

// NeedsRehash reports hashes weaker than the configured cost. Lowering the
// cost never forces a rehash.
func (h *BcryptHasher) NeedsRehash(hashed string) bool {
	cost, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		return false
	}
	return cost < h.cost
}
