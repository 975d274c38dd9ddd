package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowcredit/backend/internal/domain/ledger"
	"github.com/flowcredit/backend/internal/domain/promo"
	"github.com/flowcredit/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRedemptionStore implements promo.RedemptionStore using GORM. The three
// writes of a redemption (use count, redemption row, ledger credit) commit or
// roll back together.
type GormRedemptionStore struct {
	db *gorm.DB
}

// NewGormRedemptionStore creates a new GORM-based redemption store
func NewGormRedemptionStore(db *gorm.DB) *GormRedemptionStore {
	return &GormRedemptionStore{db: db}
}

var _ promo.RedemptionStore = (*GormRedemptionStore)(nil)

// Redeem executes the atomic redemption unit for a user and voucher.
//
// The used_count increment is conditional on the voucher still having uses
// left, and the redemption insert relies on the unique (user_id, voucher_id)
// index. Concurrent attempts lose on one of those two guards and the whole
// transaction rolls back, so no credits leak.
func (s *GormRedemptionStore) Redeem(ctx context.Context, userID uuid.UUID, voucher *promo.Voucher) (*promo.RedemptionResult, error) {
	var result *promo.RedemptionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.VoucherModel{}).
			Where("id = ? AND is_active = ? AND used_count < max_uses", voucher.ID, true).
			Update("used_count", gorm.Expr("used_count + 1"))
		if res.Error != nil {
			return fmt.Errorf("failed to increment voucher use count: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Re-read to report the precise reason the guard failed.
			var current models.VoucherModel
			if err := tx.Where("id = ?", voucher.ID).First(&current).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return promo.ErrInvalidCode
				}
				return fmt.Errorf("failed to reload voucher: %w", err)
			}
			if !current.IsActive {
				return promo.ErrVoucherInactive
			}
			return promo.ErrVoucherExhausted
		}

		redemption, err := promo.NewRedemption(userID, voucher.ID, voucher.Credits)
		if err != nil {
			return err
		}
		if err := tx.Create(models.VoucherRedemptionModelFromDomain(redemption)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return promo.ErrAlreadyRedeemed
			}
			return fmt.Errorf("failed to insert redemption: %w", err)
		}

		delta, err := ApplyDeltaTx(tx, ledger.ApplyDeltaInput{
			UserID:      userID,
			Amount:      voucher.Credits,
			Type:        ledger.TransactionTypeVoucherRedemption,
			Description: fmt.Sprintf("Redeemed voucher %s", voucher.Code),
			Reference: &ledger.Reference{
				Type: ledger.ReferenceTypeVoucher,
				ID:   voucher.ID.String(),
			},
		})
		if err != nil {
			return err
		}

		result = &promo.RedemptionResult{
			CreditsAdded: voucher.Credits,
			NewBalance:   delta.NewBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
