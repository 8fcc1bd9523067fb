package sessions

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tylerheal/clientportal/internal/database"
	"github.com/tylerheal/clientportal/internal/models"
)

// TTL is the fixed absolute session lifetime. Expiry never slides: a token
// issued now is dead in exactly seven days no matter how often it is used.
const TTL = 7 * 24 * time.Hour

// Create issues an opaque session token for the user: 32 bytes of
// crypto/rand entropy, hex encoded.
func Create(userID uint) (string, error) {
	entropy := make([]byte, 32)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("generate session entropy: %w", err)
	}
	token := hex.EncodeToString(entropy)

	session := models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(TTL),
	}
	if err := database.DB.Create(&session).Error; err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Resolve returns the user owning a valid token, or nil when the token is
// unknown or expired. Expired rows are deleted here as a side effect. The
// user row is always read fresh so a role change takes effect on the very
// next request.
func Resolve(token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	var session models.Session
	if err := database.DB.Where("token = ?", token).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("look up session: %w", err)
	}

	if !time.Now().Before(session.ExpiresAt) {
		if err := database.DB.Delete(&session).Error; err != nil {
			return nil, fmt.Errorf("delete expired session: %w", err)
		}
		return nil, nil
	}

	var user models.User
	if err := database.DB.First(&user, session.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return &user, nil
}

// Destroy deletes the session row if present; idempotent on absent tokens.
func Destroy(token string) error {
	if token == "" {
		return nil
	}
	return database.DB.Where("token = ?", token).Delete(&models.Session{}).Error
}
