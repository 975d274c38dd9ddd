package topup

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository provides access to top-up orders.
type OrderRepository interface {
	// Create inserts a new pending order.
	Create(ctx context.Context, order *Order) error
	// FindByID returns an order by ID, or NOT_FOUND.
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByGatewayReference returns the order holding a gateway session ID, or NOT_FOUND.
	FindByGatewayReference(ctx context.Context, reference string) (*Order, error)
	// SetGatewayReference records the checkout session handle on a pending order.
	SetGatewayReference(ctx context.Context, id uuid.UUID, reference string) error
	// ListByUser returns a user's orders newest-first with the total count.
	ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*Order, int64, error)
}

// CompletionResult reports the outcome of a completion attempt.
type CompletionResult struct {
	// Completed is true when this call performed the pending->completed
	// transition. False means another caller already completed the order.
	Completed bool
	// NewBalance is the balance after crediting; only meaningful when
	// Completed is true.
	NewBalance int64
}

// CompletionStore owns the terminal transitions of top-up orders. Both
// reconciliation entry points (gateway callback and client poll) converge on
// TryComplete, whose conditional status update is the single-writer gate: a
// callback and a simultaneous poll racing on the same order cannot both
// credit the account.
type CompletionStore interface {
	// TryComplete flips a pending order to completed and credits the account
	// in one atomic transaction. A no-op returning Completed=false when the
	// order is already completed. Returns INVALID_STATE when the order is
	// already failed.
	TryComplete(ctx context.Context, orderID uuid.UUID, outcome Outcome) (*CompletionResult, error)
	// MarkFailed flips a pending order to failed. A no-op when the order is
	// already failed; returns INVALID_STATE when the order is already
	// completed.
	MarkFailed(ctx context.Context, orderID uuid.UUID, reason string) error
}
