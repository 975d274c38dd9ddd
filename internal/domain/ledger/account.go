package ledger

import (
	"fmt"

	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Account holds the current credit balance for a user. The balance is mutated
// only through Store.ApplyDelta; every mutation appends a Transaction in the
// same database transaction, so at all times the balance equals the sum of
// the user's transaction amounts.
type Account struct {
	shared.BaseEntity
	UserID  uuid.UUID
	Balance int64
}

// NewAccount creates a credit account for a user with a zero balance.
func NewAccount(userID uuid.UUID) (*Account, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	return &Account{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Balance:    0,
	}, nil
}

// CanAfford returns true if the account balance covers the given cost.
func (a *Account) CanAfford(cost int64) bool {
	return a.Balance >= cost
}

// NewInsufficientBalanceError builds the business rejection returned when a
// debit would drive the balance negative. Required and available amounts are
// carried as details so callers can surface the exact shortfall.
func NewInsufficientBalanceError(required, available int64) *shared.DomainError {
	return shared.NewDomainErrorWithDetails(
		"INSUFFICIENT_BALANCE",
		fmt.Sprintf("Insufficient balance: required %d, available %d", required, available),
		map[string]any{
			"required":  required,
			"available": available,
		},
	)
}

// NewInsufficientCreditsError is the workflow-gate flavour of the same
// rejection, raised when a paid workflow cannot be afforded.
func NewInsufficientCreditsError(required, available int64) *shared.DomainError {
	return shared.NewDomainErrorWithDetails(
		"INSUFFICIENT_CREDITS",
		fmt.Sprintf("Insufficient credits: required %d, available %d", required, available),
		map[string]any{
			"required":  required,
			"available": available,
		},
	)
}
