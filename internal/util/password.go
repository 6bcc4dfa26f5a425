package util

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

var (
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong   = errors.New("password must be at most 128 characters long")
	ErrPasswordTooSimple = errors.New("password must include a letter and a number or symbol")

	errEmptyPassword = errors.New("password cannot be empty")
	errEmptySalt     = errors.New("salt cannot be empty")
)

// Argon2Params is an Argon2id cost setting. Stored hashes are only verifiable
// with the parameters that produced them.
type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultArgon2 is used for every account credential.
var DefaultArgon2 = Argon2Params{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

func (p Argon2Params) Key(password string, salt []byte) ([]byte, error) {
	if password == "" {
		return nil, errEmptyPassword
	}
	if len(salt) == 0 {
		return nil, errEmptySalt
	}
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen), nil
}

// Derive draws a fresh salt and hashes password with it.
func (p Argon2Params) Derive(password string) (hash, salt []byte, err error) {
	salt = make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}
	hash, err = p.Key(password, salt)
	if err != nil {
		return nil, nil, err
	}
	return hash, salt, nil
}

func (p Argon2Params) Verify(password string, salt, expected []byte) bool {
	if len(expected) == 0 {
		return false
	}
	candidate, err := p.Key(password, salt)
	if err != nil || len(candidate) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare(candidate, expected) == 1
}

func DerivePassword(password string) (hash, salt []byte, err error) {
	return DefaultArgon2.Derive(password)
}

func VerifyPassword(password string, salt, expectedHash []byte) bool {
	return DefaultArgon2.Verify(password, salt, expectedHash)
}

// ValidatePassword enforces the sign-up policy: 8 to 128 characters with at
// least one letter and one digit, punctuation mark or symbol.
func ValidatePassword(password string) error {
	switch n := utf8.RuneCountInString(password); {
	case n < MinPasswordLength:
		return ErrPasswordTooShort
	case n > MaxPasswordLength:
		return ErrPasswordTooLong
	}

	var letter, other bool
	for _, r := range password {
		if unicode.IsLetter(r) {
			letter = true
		} else if unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			other = true
		}
		if letter && other {
			return nil
		}
	}
	return ErrPasswordTooSimple
}
