package utils

import (
	"crypto/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tontiva/tontine-backend/internal/config"
)

// codeAlphabet is the character set for invitation codes. Upper-case
// alphanumerics only, so codes survive being read aloud or retyped.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateInviteCode generates a random invitation code of the given
// length. Uniqueness across tontines is enforced by the caller against
// the store, not by randomness alone.
func GenerateInviteCode(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b), nil
}

// GenerateJWT issues a signed token carrying the user's id, email and
// role claims.
func GenerateJWT(userID, email, role string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(time.Second * time.Duration(cfg.JWT.ExpiresIn)).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWT.Secret))
}

// PeriodLabel renders the human-readable cycle identifier for a
// submission time, e.g. "May 2025".
func PeriodLabel(t time.Time) string {
	return t.Format("January 2006")
}
