package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/flowcredit/backend/internal/domain/topup"
	"github.com/flowcredit/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTopUpOrderRepository implements topup.OrderRepository using GORM
type GormTopUpOrderRepository struct {
	db *gorm.DB
}

// NewGormTopUpOrderRepository creates a new GORM-based top-up order repository
func NewGormTopUpOrderRepository(db *gorm.DB) *GormTopUpOrderRepository {
	return &GormTopUpOrderRepository{db: db}
}

var _ topup.OrderRepository = (*GormTopUpOrderRepository)(nil)

// Create inserts a new pending order
func (r *GormTopUpOrderRepository) Create(ctx context.Context, order *topup.Order) error {
	model := models.TopUpOrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create top-up order: %w", err)
	}
	return nil
}

// FindByID returns an order by ID
func (r *GormTopUpOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*topup.Order, error) {
	var model models.TopUpOrderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find top-up order: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByGatewayReference returns the order holding a gateway session ID
func (r *GormTopUpOrderRepository) FindByGatewayReference(ctx context.Context, reference string) (*topup.Order, error) {
	var model models.TopUpOrderModel
	if err := r.db.WithContext(ctx).Where("gateway_reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find top-up order by gateway reference: %w", err)
	}
	return model.ToDomain(), nil
}

// SetGatewayReference records the checkout session handle on a pending order
func (r *GormTopUpOrderRepository) SetGatewayReference(ctx context.Context, id uuid.UUID, reference string) error {
	res := r.db.WithContext(ctx).Model(&models.TopUpOrderModel{}).
		Where("id = ?", id).
		Update("gateway_reference", reference)
	if res.Error != nil {
		return fmt.Errorf("failed to set gateway reference: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListByUser returns a user's orders newest-first with the total count
func (r *GormTopUpOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*topup.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := r.db.WithContext(ctx).Model(&models.TopUpOrderModel{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count top-up orders: %w", err)
	}

	var rows []models.TopUpOrderModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list top-up orders: %w", err)
	}

	orders := make([]*topup.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].ToDomain()
	}
	return orders, total, nil
}
