package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowcredit/backend/internal/domain/ledger"
	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/flowcredit/backend/internal/domain/topup"
	"github.com/flowcredit/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCompletionStore implements topup.CompletionStore using GORM. The
// pending->completed status flip and the ledger credit share one database
// transaction, so an order can never be completed without its credits nor
// credited twice.
type GormCompletionStore struct {
	db *gorm.DB
}

// NewGormCompletionStore creates a new GORM-based completion store
func NewGormCompletionStore(db *gorm.DB) *GormCompletionStore {
	return &GormCompletionStore{db: db}
}

var _ topup.CompletionStore = (*GormCompletionStore)(nil)

// TryComplete flips a pending order to completed and credits the account.
// The conditional status update is the single-writer gate: whichever of the
// callback and the poll path updates the row first performs the credit, the
// other sees zero rows affected and returns Completed=false.
func (s *GormCompletionStore) TryComplete(ctx context.Context, orderID uuid.UUID, outcome topup.Outcome) (*topup.CompletionResult, error) {
	var result *topup.CompletionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.TopUpOrderModel
		if err := tx.Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return fmt.Errorf("failed to load top-up order: %w", err)
		}

		now := time.Now()
		updates := map[string]any{
			"status":       string(topup.OrderStatusCompleted),
			"completed_at": now,
		}
		if outcome.PaymentReference != "" {
			updates["payment_reference"] = outcome.PaymentReference
		}
		if outcome.PaymentMethod != "" {
			updates["payment_method"] = outcome.PaymentMethod
		}

		res := tx.Model(&models.TopUpOrderModel{}).
			Where("id = ? AND status = ?", orderID, string(topup.OrderStatusPending)).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to complete top-up order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			switch topup.OrderStatus(order.Status) {
			case topup.OrderStatusCompleted:
				result = &topup.CompletionResult{Completed: false}
				return nil
			case topup.OrderStatusFailed:
				return shared.ErrInvalidState
			default:
				// Raced with another completion between the read and the update.
				result = &topup.CompletionResult{Completed: false}
				return nil
			}
		}

		delta, err := ApplyDeltaTx(tx, ledger.ApplyDeltaInput{
			UserID:      order.UserID,
			Amount:      order.Credits,
			Type:        ledger.TransactionTypeTopUp,
			Description: fmt.Sprintf("Top-up package %s", order.PackageID),
			Reference: &ledger.Reference{
				Type: ledger.ReferenceTypeTopUpOrder,
				ID:   order.ID.String(),
			},
		})
		if err != nil {
			return err
		}

		result = &topup.CompletionResult{
			Completed:  true,
			NewBalance: delta.NewBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkFailed flips a pending order to failed with an operational reason
func (s *GormCompletionStore) MarkFailed(ctx context.Context, orderID uuid.UUID, reason string) error {
	res := s.db.WithContext(ctx).Model(&models.TopUpOrderModel{}).
		Where("id = ? AND status = ?", orderID, string(topup.OrderStatusPending)).
		Updates(map[string]any{
			"status":         string(topup.OrderStatusFailed),
			"failure_reason": reason,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark top-up order failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var order models.TopUpOrderModel
		if err := s.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return fmt.Errorf("failed to load top-up order: %w", err)
		}
		if topup.OrderStatus(order.Status) == topup.OrderStatusCompleted {
			return shared.ErrInvalidState
		}
		// Already failed; idempotent no-op.
	}
	return nil
}
