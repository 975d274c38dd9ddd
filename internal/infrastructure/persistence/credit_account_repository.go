package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowcredit/backend/internal/domain/ledger"
	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/flowcredit/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCreditAccountRepository implements ledger.AccountRepository using GORM
type GormCreditAccountRepository struct {
	db *gorm.DB
}

// NewGormCreditAccountRepository creates a new GORM-based credit account repository
func NewGormCreditAccountRepository(db *gorm.DB) *GormCreditAccountRepository {
	return &GormCreditAccountRepository{db: db}
}

var _ ledger.AccountRepository = (*GormCreditAccountRepository)(nil)

// Create inserts a new credit account
func (r *GormCreditAccountRepository) Create(ctx context.Context, account *ledger.Account) error {
	model := models.CreditAccountModelFromDomain(account)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create credit account: %w", err)
	}
	return nil
}

// FindByUserID returns the credit account for a user
func (r *GormCreditAccountRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*ledger.Account, error) {
	var model models.CreditAccountModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find credit account: %w", err)
	}
	return model.ToDomain(), nil
}
