package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aquagest/backend/internal/domain/sale"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSaleRepository implements sale.Repository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by its ID with lines and payments
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	var s sale.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByNumber finds a sale by its business number
func (r *GormSaleRepository) FindByNumber(ctx context.Context, number string) (*sale.Sale, error) {
	var s sale.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		Where("number = ?", number).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindBySourceOrder finds the sale produced by converting the given order
func (r *GormSaleRepository) FindBySourceOrder(ctx context.Context, orderID uuid.UUID) (*sale.Sale, error) {
	var s sale.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		Where("source_order_id = ?", orderID).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindAll finds sales with filtering and pagination
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[sale.Sale], error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&sale.Sale{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var sales []sale.Sale
	if err := r.applyOrderAndPagination(query.Preload("Lines").Preload("Payments"), filter).
		Find(&sales).Error; err != nil {
		return nil, err
	}
	paginated := shared.NewPaginated(sales, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// FindByPeriod finds sales recorded within [from, to)
func (r *GormSaleRepository) FindByPeriod(ctx context.Context, from, to time.Time) ([]sale.Sale, error) {
	var sales []sale.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		Where("sold_at >= ? AND sold_at < ?", from, to).
		Order("sold_at ASC").
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// Save persists the sale with its lines and payments
func (r *GormSaleRepository) Save(ctx context.Context, s *sale.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&sale.Sale{}).Where("id = ?", s.ID).Count(&existing).Error; err != nil {
			return err
		}

		if existing == 0 {
			return tx.Create(s).Error
		}

		currentVersion := s.Version
		s.Version++
		s.UpdatedAt = time.Now()

		result := tx.Model(&sale.Sale{}).
			Where("id = ? AND version = ?", s.ID, currentVersion).
			Updates(map[string]interface{}{
				"client_id":        s.ClientID,
				"client_name":      s.ClientName,
				"product_amount":   s.ProductAmount,
				"delivery_fee":     s.DeliveryFee,
				"total_amount":     s.TotalAmount,
				"paid_amount":      s.PaidAmount,
				"remaining_amount": s.RemainingAmount,
				"payment_status":   s.PaymentStatus,
				"notes":            s.Notes,
				"version":          s.Version,
				"updated_at":       s.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		for i := range s.Lines {
			s.Lines[i].SaleID = s.ID
			if err := tx.Save(&s.Lines[i]).Error; err != nil {
				return err
			}
		}

		// Payments are append-only
		for i := range s.Payments {
			s.Payments[i].SaleID = s.ID
			var count int64
			if err := tx.Model(&sale.Payment{}).
				Where("id = ?", s.Payments[i].ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				if err := tx.Create(&s.Payments[i]).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// GenerateNumber generates the next sale number for a day.
// Format: VNT-YYYYMMDD-NNNN (e.g., VNT-20260115-0001)
func (r *GormSaleRepository) GenerateNumber(ctx context.Context, day time.Time) (string, error) {
	prefix := fmt.Sprintf("VNT-%s-", day.Format("20060102"))

	var lastNumber string
	err := r.db.WithContext(ctx).
		Model(&sale.Sale{}).
		Where("number LIKE ?", prefix+"%").
		Order("number DESC").
		Limit(1).
		Pluck("number", &lastNumber).Error
	if err != nil {
		return "", err
	}

	var nextNum int64 = 1
	if lastNumber != "" {
		parts := strings.Split(lastNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%04d", prefix, nextNum), nil
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilters(r.db.WithContext(ctx).Model(&sale.Sale{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormSaleRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR client_name ILIKE ?", search, search)
	}
	for key, value := range filter.Filters {
		switch key {
		case "channel", "client_id", "salesperson_id", "payment_status":
			query = query.Where(key+" = ?", value)
		case "start_date":
			query = query.Where("sold_at >= ?", value)
		case "end_date":
			query = query.Where("sold_at < ?", value)
		}
	}
	return query
}

func (r *GormSaleRepository) applyOrderAndPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := "sold_at"
	switch filter.OrderBy {
	case "number", "total_amount", "sold_at", "created_at":
		orderBy = filter.OrderBy
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	query = query.Order(orderBy + " " + dir)

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}
