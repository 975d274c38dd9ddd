package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowcredit/backend/internal/domain/ledger"
	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/flowcredit/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerStore implements ledger.Store on GORM. The balance column and the
// transaction log are only ever written here, inside one database transaction,
// so balance == sum(entries) holds at every commit point.
type GormLedgerStore struct {
	db *gorm.DB
}

// NewGormLedgerStore creates a new GORM-based ledger store
func NewGormLedgerStore(db *gorm.DB) *GormLedgerStore {
	return &GormLedgerStore{db: db}
}

var _ ledger.Store = (*GormLedgerStore)(nil)

// ApplyDelta atomically mutates the account balance and appends the matching
// transaction entry.
func (s *GormLedgerStore) ApplyDelta(ctx context.Context, input ledger.ApplyDeltaInput) (*ledger.ApplyDeltaResult, error) {
	var result *ledger.ApplyDeltaResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = ApplyDeltaTx(tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyDeltaTx applies a balance delta inside an existing transaction. Callers
// that need the mutation to commit together with their own writes (voucher
// redemption, order completion) run it through this variant.
//
// The balance update is a single conditional UPDATE guarded by the resulting
// balance staying non-negative, so concurrent debits race on the database row
// rather than on stale in-memory reads.
func ApplyDeltaTx(tx *gorm.DB, input ledger.ApplyDeltaInput) (*ledger.ApplyDeltaResult, error) {
	if input.Amount == 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be zero")
	}

	res := tx.Model(&models.CreditAccountModel{}).
		Where("user_id = ? AND balance + ? >= 0", input.UserID, input.Amount).
		Update("balance", gorm.Expr("balance + ?", input.Amount))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the account does not exist or the debit would go negative.
		var acct models.CreditAccountModel
		if err := tx.Where("user_id = ?", input.UserID).First(&acct).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, shared.ErrNotFound
			}
			return nil, fmt.Errorf("failed to load account: %w", err)
		}
		return nil, ledger.NewInsufficientBalanceError(-input.Amount, acct.Balance)
	}

	var acct models.CreditAccountModel
	if err := tx.Where("user_id = ?", input.UserID).First(&acct).Error; err != nil {
		return nil, fmt.Errorf("failed to reload account: %w", err)
	}

	entry, err := ledger.NewTransaction(input.UserID, input.Amount, input.Type, input.Description)
	if err != nil {
		return nil, err
	}
	if input.Reference != nil {
		entry.WithReference(input.Reference.Type, input.Reference.ID)
	}

	model := models.CreditTransactionModelFromDomain(entry)
	if err := tx.Create(model).Error; err != nil {
		return nil, fmt.Errorf("failed to append transaction entry: %w", err)
	}

	return &ledger.ApplyDeltaResult{
		TransactionID: entry.ID,
		NewBalance:    acct.Balance,
	}, nil
}
