package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"taskboard/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type Purpose string

const (
	PurposeActivate Purpose = "activate"
	PurposeReset    Purpose = "reset"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type tokenClaims struct {
	Purpose     Purpose `json:"pur"`
	Fingerprint string  `json:"fp"`
	jwt.RegisteredClaims
}

// Tokens signs one-shot account links. The fingerprint covers the password
// hash, the active flag and last login, so activating the account, changing
// the password or signing in invalidates earlier links.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Make(u *models.User, purpose Purpose) (string, error) {
	now := t.now()
	claims := tokenClaims{
		Purpose:     purpose,
		Fingerprint: t.fingerprint(u),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", purpose, err)
	}
	return signed, nil
}

func (t *Tokens) Check(u *models.User, purpose Purpose, token string) error {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Purpose != purpose || claims.Subject != strconv.FormatUint(uint64(u.ID), 10) {
		return ErrInvalidToken
	}
	if !hmac.Equal([]byte(claims.Fingerprint), []byte(t.fingerprint(u))) {
		return ErrInvalidToken
	}
	return nil
}

func (t *Tokens) fingerprint(u *models.User) string {
	var lastLogin int64
	if u.LastLogin != nil {
		lastLogin = u.LastLogin.Unix()
	}
	mac := hmac.New(sha256.New, t.secret)
	fmt.Fprintf(mac, "%d|%s|%t|%d", u.ID, u.PasswordHash, u.IsActive, lastLogin)
	return hex.EncodeToString(mac.Sum(nil))
}
