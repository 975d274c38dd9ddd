package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowcredit/backend/internal/domain/promo"
	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/flowcredit/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVoucherRepository implements promo.VoucherRepository using GORM
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewGormVoucherRepository creates a new GORM-based voucher repository
func NewGormVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

var _ promo.VoucherRepository = (*GormVoucherRepository)(nil)

// Create inserts a new voucher
func (r *GormVoucherRepository) Create(ctx context.Context, voucher *promo.Voucher) error {
	model := models.VoucherModelFromDomain(voucher)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create voucher: %w", err)
	}
	return nil
}

// Save persists changes to an existing voucher
func (r *GormVoucherRepository) Save(ctx context.Context, voucher *promo.Voucher) error {
	model := models.VoucherModelFromDomain(voucher)
	res := r.db.WithContext(ctx).Model(&models.VoucherModel{}).
		Where("id = ?", voucher.ID).
		Updates(map[string]any{
			"credits":    model.Credits,
			"max_uses":   model.MaxUses,
			"is_active":  model.IsActive,
			"expires_at": model.ExpiresAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save voucher: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByCode looks up a voucher by its normalized code
func (r *GormVoucherRepository) FindByCode(ctx context.Context, code string) (*promo.Voucher, error) {
	var model models.VoucherModel
	if err := r.db.WithContext(ctx).Where("code = ?", promo.NormalizeCode(code)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, promo.ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to find voucher by code: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByID looks up a voucher by ID
func (r *GormVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*promo.Voucher, error) {
	var model models.VoucherModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find voucher: %w", err)
	}
	return model.ToDomain(), nil
}

// List returns all vouchers newest-first with the total count
func (r *GormVoucherRepository) List(ctx context.Context, page, pageSize int) ([]*promo.Voucher, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.VoucherModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count vouchers: %w", err)
	}

	var rows []models.VoucherModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vouchers: %w", err)
	}

	vouchers := make([]*promo.Voucher, len(rows))
	for i := range rows {
		vouchers[i] = rows[i].ToDomain()
	}
	return vouchers, total, nil
}

// GormRedemptionRepository implements promo.RedemptionRepository using GORM
type GormRedemptionRepository struct {
	db *gorm.DB
}

// NewGormRedemptionRepository creates a new GORM-based redemption repository
func NewGormRedemptionRepository(db *gorm.DB) *GormRedemptionRepository {
	return &GormRedemptionRepository{db: db}
}

var _ promo.RedemptionRepository = (*GormRedemptionRepository)(nil)

// FindByUserAndVoucher returns the redemption for a (user, voucher) pair, or nil
func (r *GormRedemptionRepository) FindByUserAndVoucher(ctx context.Context, userID, voucherID uuid.UUID) (*promo.Redemption, error) {
	var model models.VoucherRedemptionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND voucher_id = ?", userID, voucherID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find redemption: %w", err)
	}
	return model.ToDomain(), nil
}
