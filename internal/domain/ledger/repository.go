package ledger

import (
	"context"

	"github.com/google/uuid"
)

// ApplyDeltaInput describes a single balance mutation. Amount is signed;
// negative amounts debit the account.
type ApplyDeltaInput struct {
	UserID      uuid.UUID
	Amount      int64
	Type        TransactionType
	Description string
	Reference   *Reference
}

// ApplyDeltaResult reports the outcome of a balance mutation.
type ApplyDeltaResult struct {
	TransactionID uuid.UUID
	NewBalance    int64
}

// Store is the balance mutator port: the only code path permitted to change
// an account balance. Implementations must apply the balance change and append
// the transaction entry in one atomic database transaction, rejecting any
// debit that would make the balance negative without writing anything.
type Store interface {
	// ApplyDelta atomically mutates the balance and appends the matching entry.
	// Returns INSUFFICIENT_BALANCE (with required/available details) when a
	// debit exceeds the current balance, and NOT_FOUND when no account exists.
	ApplyDelta(ctx context.Context, input ApplyDeltaInput) (*ApplyDeltaResult, error)
}

// AccountRepository provides access to credit accounts.
type AccountRepository interface {
	// Create inserts a new account. Returns ALREADY_EXISTS if the user already has one.
	Create(ctx context.Context, account *Account) error
	// FindByUserID returns the account for a user, or NOT_FOUND.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Account, error)
}

// TransactionRepository provides read access to the append-only transaction log.
type TransactionRepository interface {
	// ListByUser returns entries newest-first with the total count.
	ListByUser(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]*Transaction, int64, error)
	// SumByUser returns the sum of all entry amounts for a user. Used by
	// consistency checks: the sum must always equal the account balance.
	SumByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
