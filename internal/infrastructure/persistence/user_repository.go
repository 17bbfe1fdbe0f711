package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/aquagest/backend/internal/domain/identity"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var u identity.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var u identity.User
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindAll finds users with filtering and pagination
func (r *GormUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	query := r.db.WithContext(ctx).Model(&identity.User{})

	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("username ILIKE ? OR full_name ILIKE ?", search, search)
	}
	for key, value := range filter.Filters {
		switch key {
		case "role", "active":
			query = query.Where(key+" = ?", value)
		}
	}

	query = query.Order("username ASC")
	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var users []identity.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindByRole finds active users with the given role
func (r *GormUserRepository) FindByRole(ctx context.Context, role identity.Role) ([]identity.User, error) {
	var users []identity.User
	if err := r.db.WithContext(ctx).
		Where("role = ? AND active = ?", string(role), true).
		Order("username ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Save creates or updates a user with an optimistic version check
func (r *GormUserRepository) Save(ctx context.Context, u *identity.User) error {
	var existing int64
	if err := r.db.WithContext(ctx).Model(&identity.User{}).
		Where("id = ?", u.ID).Count(&existing).Error; err != nil {
		return err
	}

	if existing == 0 {
		return r.db.WithContext(ctx).Create(u).Error
	}

	currentVersion := u.Version
	u.Version++
	u.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).Model(&identity.User{}).
		Where("id = ? AND version = ?", u.ID, currentVersion).
		Updates(map[string]interface{}{
			"full_name":               u.FullName,
			"password_hash":           u.PasswordHash,
			"role":                    u.Role,
			"phone":                   u.Phone,
			"active":                  u.Active,
			"notify_order_validated":  u.Preferences.OrderValidated,
			"notify_order_converted":  u.Preferences.OrderConverted,
			"notify_low_stock":        u.Preferences.LowStock,
			"last_login_at":           u.LastLoginAt,
			"version":                 u.Version,
			"updated_at":              u.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ExistsByUsername checks if a username is taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&identity.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
