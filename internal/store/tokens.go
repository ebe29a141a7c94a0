package store

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/dieginin/hubsync/internal/models"
	"gorm.io/gorm"
)

// resetTokenBytes is the entropy of a reset token before encoding.
const resetTokenBytes = 32

// GeneratePasswordResetToken creates a cryptographically random URL-safe
// token bound to the user with the default expiry, and returns the raw token.
// This is the only time the raw value is available; only its row survives.
func (m *Manager) GeneratePasswordResetToken(user *models.User) (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	reset := models.NewPasswordResetToken(token, user.ID, models.DefaultResetTokenTTL)
	err := m.db.Transaction(func(tx *gorm.DB) error { return tx.Create(reset).Error })
	if err != nil {
		return "", err
	}
	return token, nil
}

// VerifyPasswordResetToken checks a raw token value. Unknown and already-used
// tokens verify as ("", nil, nil). An expired token is deleted as a side
// effect and also verifies as ("", nil, nil). A live token returns the
// owner's email and the token row for the caller to mark used.
func (m *Manager) VerifyPasswordResetToken(token string) (string, *models.PasswordResetToken, error) {
	var reset models.PasswordResetToken
	err := m.db.Where("token = ?", token).First(&reset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	if reset.Used {
		return "", nil, nil
	}
	if reset.IsExpired() {
		err := m.db.Transaction(func(tx *gorm.DB) error { return tx.Delete(&reset).Error })
		if err != nil {
			return "", nil, err
		}
		return "", nil, nil
	}

	user, err := m.GetUserByID(reset.UserID)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, nil
	}
	return user.Email, &reset, nil
}

// MarkTokenUsed consumes a token so it can never verify again.
func (m *Manager) MarkTokenUsed(token *models.PasswordResetToken) error {
	token.Used = true
	return m.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(token).Update("used", true).Error
	})
}
