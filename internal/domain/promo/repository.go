package promo

import (
	"context"

	"github.com/google/uuid"
)

// VoucherRepository provides access to vouchers.
type VoucherRepository interface {
	// Create inserts a new voucher. Returns ALREADY_EXISTS on a duplicate code.
	Create(ctx context.Context, voucher *Voucher) error
	// Save persists changes to an existing voucher (admin edits).
	Save(ctx context.Context, voucher *Voucher) error
	// FindByCode looks up a voucher by normalized code, or NOT_FOUND.
	FindByCode(ctx context.Context, code string) (*Voucher, error)
	// FindByID looks up a voucher by ID, or NOT_FOUND.
	FindByID(ctx context.Context, id uuid.UUID) (*Voucher, error)
	// List returns all vouchers newest-first with the total count.
	List(ctx context.Context, page, pageSize int) ([]*Voucher, int64, error)
}

// RedemptionRepository provides read access to redemption records.
type RedemptionRepository interface {
	// FindByUserAndVoucher returns the redemption for (user, voucher) or nil.
	FindByUserAndVoucher(ctx context.Context, userID, voucherID uuid.UUID) (*Redemption, error)
}

// RedemptionResult reports a successful redemption.
type RedemptionResult struct {
	CreditsAdded int64
	NewBalance   int64
}

// RedemptionStore executes the atomic redemption unit: increment the voucher
// used count (guarded by max uses), insert the redemption row (guarded by the
// unique (user, voucher) constraint), and credit the ledger — all in one
// database transaction. A lost race surfaces as ALREADY_REDEEMED or
// VOUCHER_EXHAUSTED with nothing written.
type RedemptionStore interface {
	Redeem(ctx context.Context, userID uuid.UUID, voucher *Voucher) (*RedemptionResult, error)
}
