package store

import (
	"errors"

	"github.com/dieginin/hubsync/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Manager is the sole entry point for reading and writing domain entities.
// It owns an injected *gorm.DB so tests can run isolated instances.
type Manager struct {
	db *gorm.DB
}

// New creates a Manager around an open database handle.
func New(db *gorm.DB) *Manager { return &Manager{db: db} }

// HasUsers reports whether at least one user exists. It doubles as the
// "has the system been initialized" flag consulted by the route guards.
func (m *Manager) HasUsers() (bool, error) {
	var count int64
	if err := m.db.Model(&models.User{}).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByID returns the user with the given id, or (nil, nil) if absent.
func (m *Manager) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	err := m.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail returns the user with the given email, or (nil, nil) if absent.
func (m *Manager) GetUserByEmail(email string) (*models.User, error) {
	return m.findUser("email = ?", email)
}

// GetUserByUsername returns the user with the given username, or (nil, nil) if absent.
func (m *Manager) GetUserByUsername(username string) (*models.User, error) {
	return m.findUser("username = ?", username)
}

func (m *Manager) findUser(query string, arg any) (*models.User, error) {
	var user models.User
	err := m.db.Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users ordered by id.
func (m *Manager) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := m.db.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser hashes the password and inserts a new user. Uniqueness of email
// and username is the caller's responsibility to pre-check; a constraint
// violation still surfaces as an error.
func (m *Manager) CreateUser(displayName, email, username, password string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{
		DisplayName: displayName,
		Email:       email,
		Username:    username,
		Password:    string(hash),
		Role:        role,
	}
	if err := m.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user. The primordial account (id 1) is protected.
func (m *Manager) DeleteUser(userID uint) Response {
	user, err := m.GetUserByID(userID)
	if err != nil {
		return Danger("Error deleting user: %v", err)
	}
	if user == nil {
		return Danger("User not found")
	}
	if user.IsPrimaryAdmin() {
		return Danger("Cannot delete the primary admin user")
	}
	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return Danger("Error deleting user: %v", err)
	}
	return Success("%s deleted successfully", user.DisplayName)
}

// UpdateUserProfile updates display name, email and username, guarding
// against collisions with other users. Passing the user's own current email
// or username is a safe no-op. An empty role leaves the role unchanged.
func (m *Manager) UpdateUserProfile(userID uint, displayName, email, username string, role models.Role) Response {
	user, err := m.GetUserByID(userID)
	if err != nil {
		return Danger("Error updating profile: %v", err)
	}
	if user == nil {
		return Danger("User not found")
	}

	byEmail, err := m.GetUserByEmail(email)
	if err != nil {
		return Danger("Error updating profile: %v", err)
	}
	if byEmail != nil && byEmail.ID != userID {
		return Danger("Email already exists")
	}
	byUsername, err := m.GetUserByUsername(username)
	if err != nil {
		return Danger("Error updating profile: %v", err)
	}
	if byUsername != nil && byUsername.ID != userID {
		return Danger("Username already exists")
	}

	user.Email = email
	user.Username = username
	user.DisplayName = displayName
	if role != "" {
		user.Role = role
	}
	if err := m.db.Transaction(func(tx *gorm.DB) error { return tx.Save(user).Error }); err != nil {
		return Danger("Error updating profile: %v", err)
	}
	return Success("Profile updated successfully")
}

// ChangePassword verifies the current password before storing a fresh hash
// of the new one.
func (m *Manager) ChangePassword(currentPassword, newPassword, email string) Response {
	user, err := m.GetUserByEmail(email)
	if err != nil {
		return Danger("Error changing password: %v", err)
	}
	if user == nil {
		return Danger("User not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)) != nil {
		return Danger("Current password is incorrect")
	}
	if resp := m.storePassword(user, newPassword); !resp.OK() {
		return Danger("Error changing password: %s", resp.Message)
	}
	return Success("Password changed successfully")
}

// ResetPassword stores a fresh hash of the new password without checking the
// current one. It backs the reset-token flow, which has already proven
// ownership of the account.
func (m *Manager) ResetPassword(newPassword, email string) Response {
	user, err := m.GetUserByEmail(email)
	if err != nil {
		return Danger("Error resetting password: %v", err)
	}
	if user == nil {
		return Danger("User not found")
	}
	if resp := m.storePassword(user, newPassword); !resp.OK() {
		return Danger("Error resetting password: %s", resp.Message)
	}
	return Success("Password reset successfully")
}

func (m *Manager) storePassword(user *models.User, password string) Response {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Danger("%v", err)
	}
	err = m.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(user).Update("password", string(hash)).Error
	})
	if err != nil {
		return Danger("%v", err)
	}
	return Success("stored")
}
