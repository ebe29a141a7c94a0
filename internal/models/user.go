package models

import "time"

// Role is the closed set of access levels a user can hold.
type Role string

const (
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// PrimaryAdminID is the primordial superadmin account created during first
// setup. It can never be deleted.
const PrimaryAdminID uint = 1

// User represents a staff account.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Username    string    `gorm:"uniqueIndex;size:255;not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	DisplayName string    `gorm:"size:255;not null" json:"display_name"`
	Password    string    `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
	Role        Role      `gorm:"size:50;not null" json:"role"`
}

// IsAdmin reports whether the user holds admin or superadmin privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperadmin
}

// IsPrimaryAdmin reports whether this is the protected first account.
func (u *User) IsPrimaryAdmin() bool { return u.ID == PrimaryAdminID }

func (u *User) String() string { return u.DisplayName }
