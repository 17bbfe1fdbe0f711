package identity

import (
	"time"

	"github.com/aquagest/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role represents a staff role
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleSalesperson Role = "salesperson"
	RoleDeliverer   Role = "deliverer"
)

// IsValid returns true if the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSalesperson, RoleDeliverer:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// NotificationPreferences is an explicit mapping of which events a user
// wants to be notified about.
type NotificationPreferences struct {
	OrderValidated bool `gorm:"not null;default:true"`
	OrderConverted bool `gorm:"not null;default:true"`
	LowStock       bool `gorm:"not null;default:true"`
}

// User represents a staff member (admin, salesperson or deliverer)
type User struct {
	shared.BaseAggregateRoot
	Username     string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	FullName     string                  `gorm:"type:varchar(200);not null"`
	PasswordHash string                  `gorm:"type:varchar(100);not null"`
	Role         Role                    `gorm:"type:varchar(20);not null"`
	Phone        string                  `gorm:"type:varchar(30)"`
	Active       bool                    `gorm:"not null;default:true"`
	Preferences  NotificationPreferences `gorm:"embedded;embeddedPrefix:notify_"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with a bcrypt-hashed password
func NewUser(username, fullName, password string, role Role) (*User, error) {
	if username == "" {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(password) < 8 {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		FullName:          fullName,
		PasswordHash:      string(hash),
		Role:              role,
		Active:            true,
		Preferences: NotificationPreferences{
			OrderValidated: true,
			OrderConverted: true,
			LowStock:       true,
		},
	}, nil
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the stored password hash
func (u *User) ChangePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// RecordLogin stamps the last successful login time
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = at
}

// SetPreferences replaces the notification preferences
func (u *User) SetPreferences(prefs NotificationPreferences) {
	u.Preferences = prefs
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// Deactivate disables the account
func (u *User) Deactivate() {
	u.Active = false
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// IsAdmin returns true for admin users
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
