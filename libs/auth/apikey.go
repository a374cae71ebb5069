package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidAPIKey = errors.New("invalid api key")

const apiKeyPrefix = "sk_"

// NewAPIKey returns a random tenant API key and its bcrypt hash. Only the hash
// is stored; the plaintext is shown to the tenant once.
func NewAPIKey() (key string, hash string, err error) {
	var raw [24]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", "", err
	}
	key = apiKeyPrefix + base64.RawURLEncoding.EncodeToString(raw[:])
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return key, string(h), nil
}

func VerifyAPIKey(hash, key string) error {
	key = strings.TrimSpace(key)
	if key == "" || !strings.HasPrefix(key, apiKeyPrefix) {
		return ErrInvalidAPIKey
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		return ErrInvalidAPIKey
	}
	return nil
}
