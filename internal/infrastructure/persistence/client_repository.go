package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/aquagest/backend/internal/domain/partner"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements partner.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	var c partner.Client
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAll finds clients with filtering and pagination
func (r *GormClientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Client, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&partner.Client{}), filter)

	query = query.Order("name ASC")
	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var clients []partner.Client
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// FindByZone finds active clients in a delivery zone
func (r *GormClientRepository) FindByZone(ctx context.Context, zone string, filter shared.Filter) ([]partner.Client, error) {
	if filter.Filters == nil {
		filter.Filters = map[string]interface{}{}
	}
	filter.Filters["zone"] = zone
	filter.Filters["active"] = true
	return r.FindAll(ctx, filter)
}

// Save creates or updates a client with an optimistic version check
func (r *GormClientRepository) Save(ctx context.Context, c *partner.Client) error {
	var existing int64
	if err := r.db.WithContext(ctx).Model(&partner.Client{}).
		Where("id = ?", c.ID).Count(&existing).Error; err != nil {
		return err
	}

	if existing == 0 {
		return r.db.WithContext(ctx).Create(c).Error
	}

	currentVersion := c.Version
	c.Version++
	c.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).Model(&partner.Client{}).
		Where("id = ? AND version = ?", c.ID, currentVersion).
		Updates(map[string]interface{}{
			"name":       c.Name,
			"phone":      c.Phone,
			"zone":       c.Zone,
			"address":    c.Address,
			"notes":      c.Notes,
			"active":     c.Active,
			"version":    c.Version,
			"updated_at": c.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts clients matching the filter
func (r *GormClientRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilters(r.db.WithContext(ctx).Model(&partner.Client{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormClientRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR phone ILIKE ?", search, search)
	}
	for key, value := range filter.Filters {
		switch key {
		case "zone", "active":
			query = query.Where(key+" = ?", value)
		}
	}
	return query
}
