package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aquagest/backend/internal/domain/order"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID with lines and payments
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByNumber finds an order by its business number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		Where("number = ?", number).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAll finds orders with filtering and pagination
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&order.Order{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []order.Order
	if err := r.applyOrderAndPagination(query.Preload("Lines").Preload("Payments"), filter).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	paginated := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// FindByClient finds orders for a client
func (r *GormOrderRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	if filter.Filters == nil {
		filter.Filters = map[string]interface{}{}
	}
	filter.Filters["client_id"] = clientID
	return r.FindAll(ctx, filter)
}

// FindByStatus finds orders in a given status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	if filter.Filters == nil {
		filter.Filters = map[string]interface{}{}
	}
	filter.Filters["status"] = string(status)
	return r.FindAll(ctx, filter)
}

// FindOverdue finds unconverted orders past their due date still carrying a balance
func (r *GormOrderRepository) FindOverdue(ctx context.Context, now time.Time) ([]order.Order, error) {
	var orders []order.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		Where("due_date IS NOT NULL AND due_date < ?", now).
		Where("remaining_amount > 0").
		Where("converted = ?", false).
		Where("status NOT IN ?", []string{string(order.StatusCancelled), string(order.StatusDelivered)}).
		Order("due_date ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindDeliveriesForDate finds validated and preparing home-delivery orders
// scheduled for the given calendar day
func (r *GormOrderRepository) FindDeliveriesForDate(ctx context.Context, day time.Time) ([]order.Order, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var orders []order.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		Where("delivery_type = ?", string(order.DeliveryTypeHome)).
		Where("status IN ?", []string{string(order.StatusValidated), string(order.StatusPreparing)}).
		Where("delivery_date >= ? AND delivery_date < ?", dayStart, dayEnd).
		Order("delivery_date ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save persists the order with its lines and payments. The order row is
// updated with an optimistic version check; lines are diffed, payments are
// append-only.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&order.Order{}).Where("id = ?", o.ID).Count(&existing).Error; err != nil {
			return err
		}

		if existing == 0 {
			if err := tx.Create(o).Error; err != nil {
				return err
			}
			return nil
		}

		currentVersion := o.Version
		o.Version++
		o.UpdatedAt = time.Now()

		result := tx.Model(&order.Order{}).
			Where("id = ? AND version = ?", o.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":           o.Status,
				"delivery_type":    o.DeliveryType,
				"product_amount":   o.ProductAmount,
				"delivery_fee":     o.DeliveryFee,
				"total_amount":     o.TotalAmount,
				"paid_amount":      o.PaidAmount,
				"remaining_amount": o.RemainingAmount,
				"payment_status":   o.PaymentStatus,
				"delivery_date":    o.DeliveryDate,
				"due_date":         o.DueDate,
				"penalty_amount":   o.PenaltyAmount,
				"notes":            o.Notes,
				"validated_at":     o.ValidatedAt,
				"delivered_at":     o.DeliveredAt,
				"cancelled_at":     o.CancelledAt,
				"cancel_reason":    o.CancelReason,
				"version":          o.Version,
				"updated_at":       o.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		// Diff lines: drop removed ones, upsert the rest
		lineIDs := make([]uuid.UUID, len(o.Lines))
		for i := range o.Lines {
			lineIDs[i] = o.Lines[i].ID
		}
		if len(lineIDs) > 0 {
			if err := tx.Where("order_id = ? AND id NOT IN ?", o.ID, lineIDs).
				Delete(&order.Line{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("order_id = ?", o.ID).Delete(&order.Line{}).Error; err != nil {
				return err
			}
		}
		for i := range o.Lines {
			o.Lines[i].OrderID = o.ID
			if err := tx.Save(&o.Lines[i]).Error; err != nil {
				return err
			}
		}

		// Payments are append-only: only create rows that don't exist yet
		for i := range o.Payments {
			o.Payments[i].OrderID = o.ID
			var count int64
			if err := tx.Model(&order.Payment{}).
				Where("id = ?", o.Payments[i].ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				if err := tx.Create(&o.Payments[i]).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// MarkConverted flips the converted flag and stamps the sale ID. The guard
// on converted = false makes the operation idempotent under concurrent
// conversion attempts: the loser sees ErrAlreadyExists.
func (r *GormOrderRepository) MarkConverted(ctx context.Context, orderID, saleID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("id = ? AND converted = ?", orderID, false).
		Updates(map[string]interface{}{
			"converted":  true,
			"sale_id":    saleID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&order.Order{}).
			Where("id = ?", orderID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrAlreadyExists
	}
	return nil
}

// GenerateNumber generates the next order number for a day.
// Format: ORD-YYYYMMDD-NNNN (e.g., ORD-20260115-0001)
func (r *GormOrderRepository) GenerateNumber(ctx context.Context, day time.Time) (string, error) {
	prefix := fmt.Sprintf("ORD-%s-", day.Format("20060102"))

	var lastNumber string
	err := r.db.WithContext(ctx).
		Model(&order.Order{}).
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

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilters(r.db.WithContext(ctx).Model(&order.Order{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormOrderRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR client_name ILIKE ?", search, search)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status", "delivery_type", "client_id", "converted":
			query = query.Where(key+" = ?", value)
		case "start_date":
			query = query.Where("created_at >= ?", value)
		case "end_date":
			query = query.Where("created_at < ?", value)
		}
	}
	return query
}

func (r *GormOrderRepository) applyOrderAndPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := "created_at"
	switch filter.OrderBy {
	case "number", "total_amount", "delivery_date", "due_date", "created_at":
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
