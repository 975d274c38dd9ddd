package topup

import (
	"time"

	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Top-up errors
var (
	ErrInvalidPackage = shared.NewDomainError("INVALID_PACKAGE", "Unknown top-up package")
	// ErrGatewayError signals the payment provider was unreachable or rejected
	// the request. Retryable by the caller; never treated as success.
	ErrGatewayError = shared.NewDomainError("GATEWAY_ERROR", "Payment gateway request failed")
	// ErrInconsistentCallback signals a callback that contradicts an order
	// already in a different terminal state. Logged as an integrity signal,
	// never applied, and not surfaced to the end user.
	ErrInconsistentCallback = shared.NewDomainError("INCONSISTENT_CALLBACK", "Callback contradicts order terminal state")
	// ErrInvalidSignature signals a webhook delivery whose signature did not
	// verify. The only callback error the gateway should see as a 4xx.
	ErrInvalidSignature = shared.NewDomainError("INVALID_SIGNATURE", "Callback verification failed")
)

// OrderStatus is the lifecycle state of a top-up order. Transitions are
// one-directional: pending -> completed or pending -> failed, never out of a
// terminal state.
type OrderStatus string

const (
	// OrderStatusPending indicates payment has not been confirmed yet
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusCompleted indicates payment confirmed and credits granted
	OrderStatusCompleted OrderStatus = "COMPLETED"
	// OrderStatusFailed indicates payment failed or was cancelled
	OrderStatusFailed OrderStatus = "FAILED"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for completed and failed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

// Package is a purchasable credit bundle. Packages are configuration, not
// database rows: the catalog changes with deployments, not at runtime.
type Package struct {
	ID       string
	Credits  int64
	Price    decimal.Decimal
	Currency string
	Label    string
}

// Order is a monetary purchase intent that grants credits once the payment
// gateway confirms it.
type Order struct {
	shared.BaseEntity
	UserID           uuid.UUID
	PackageID        string
	Credits          int64
	Amount           decimal.Decimal
	Currency         string
	Status           OrderStatus
	PaymentMethod    string
	GatewayReference string // checkout/session ID at the gateway
	PaymentReference string // gateway transaction/payment intent ID once known
	FailureReason    string // operational detail, never shown verbatim to end users
	CompletedAt      *time.Time
}

// NewOrder creates a pending order for a package.
func NewOrder(userID uuid.UUID, pkg Package) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if pkg.Credits <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Package credits must be positive")
	}
	if pkg.Price.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Package price must be positive")
	}
	return &Order{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		PackageID:  pkg.ID,
		Credits:    pkg.Credits,
		Amount:     pkg.Price,
		Currency:   pkg.Currency,
		Status:     OrderStatusPending,
	}, nil
}

// IsPending returns true while the order awaits reconciliation
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// AmountMinorUnits returns the order amount in the gateway's integer minor
// units (cents). Used to verify a reported payment against the order.
func (o *Order) AmountMinorUnits() int64 {
	return o.Amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// Outcome describes a verified gateway result used to reconcile an order.
type Outcome struct {
	// Succeeded is true when the gateway reports the payment as completed
	Succeeded bool
	// Failed is true when the gateway reports a terminal failure/cancellation.
	// When both Succeeded and Failed are false the result was inconclusive
	// and the order stays pending.
	Failed bool
	// PaymentReference is the gateway transaction identifier, when known
	PaymentReference string
	// PaymentMethod is the method reported by the gateway, when known
	PaymentMethod string
	// AmountMinor is the amount the gateway charged, in minor units (cents).
	// Zero when the gateway did not report an amount.
	AmountMinor int64
	// Currency is the currency the gateway charged in, when known
	Currency string
}
