package models

import "time"

// DefaultResetTokenTTL is how long a password reset token stays valid.
const DefaultResetTokenTTL = 30 * time.Minute

// PasswordResetToken is a single-use, time-limited credential authorizing one
// password change. The raw token value is only ever shown once, inside the
// reset email; expired or used tokens are inert.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"uniqueIndex;size:255;not null" json:"-"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
}

// NewPasswordResetToken binds a freshly generated token value to a user with
// the given time-to-live. A zero ttl falls back to DefaultResetTokenTTL.
func NewPasswordResetToken(token string, userID uint, ttl time.Duration) *PasswordResetToken {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &PasswordResetToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
		Used:      false,
	}
}

// IsExpired reports whether the token's validity window has elapsed.
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
