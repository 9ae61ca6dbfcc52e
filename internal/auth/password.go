package auth

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var (
	ErrPasswordTooShort   = errors.New("password must contain at least 8 characters")
	ErrPasswordNumeric    = errors.New("password can't be entirely numeric")
	ErrPasswordAsUsername = errors.New("password is too similar to the username")
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func ValidatePassword(password, username string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		return ErrPasswordNumeric
	}
	if username != "" && strings.EqualFold(password, username) {
		return ErrPasswordAsUsername
	}
	return nil
}
