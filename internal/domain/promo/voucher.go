package promo

import (
	"strings"
	"time"

	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Voucher errors. Each redemption failure has a specific reason so the UI
// never has to show a generic "redemption failed".
var (
	ErrInvalidCode      = shared.NewDomainError("INVALID_CODE", "Voucher code not found")
	ErrVoucherInactive  = shared.NewDomainError("VOUCHER_INACTIVE", "Voucher is not active")
	ErrVoucherExpired   = shared.NewDomainError("VOUCHER_EXPIRED", "Voucher has expired")
	ErrVoucherExhausted = shared.NewDomainError("VOUCHER_EXHAUSTED", "Voucher has reached its maximum number of uses")
	ErrAlreadyRedeemed  = shared.NewDomainError("ALREADY_REDEEMED", "Voucher was already redeemed by this user")
)

// NormalizeCode canonicalizes a voucher code for lookup and storage.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Voucher is a single-use-per-user promotional code granting a fixed number
// of credits, bounded by a total use count and an optional expiry.
type Voucher struct {
	shared.BaseEntity
	Code      string
	Credits   int64
	MaxUses   int
	UsedCount int
	IsActive  bool
	ExpiresAt *time.Time
}

// NewVoucher creates a voucher with a normalized code.
func NewVoucher(code string, credits int64, maxUses int) (*Voucher, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Voucher code cannot be empty")
	}
	if credits <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Voucher credit value must be positive")
	}
	if maxUses <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Voucher max uses must be positive")
	}
	return &Voucher{
		BaseEntity: shared.NewBaseEntity(),
		Code:       normalized,
		Credits:    credits,
		MaxUses:    maxUses,
		UsedCount:  0,
		IsActive:   true,
	}, nil
}

// WithExpiry sets an expiry timestamp on the voucher
func (v *Voucher) WithExpiry(expiresAt time.Time) *Voucher {
	v.ExpiresAt = &expiresAt
	return v
}

// IsExpired returns true if the voucher has an expiry in the past
func (v *Voucher) IsExpired(now time.Time) bool {
	return v.ExpiresAt != nil && v.ExpiresAt.Before(now)
}

// IsExhausted returns true if every allowed use has been consumed
func (v *Voucher) IsExhausted() bool {
	return v.UsedCount >= v.MaxUses
}

// CheckRedeemable validates the voucher state ahead of redemption. This is a
// fast-fail check only; the database constraints remain the arbiter under
// concurrent redemption attempts.
func (v *Voucher) CheckRedeemable(now time.Time) error {
	if !v.IsActive {
		return ErrVoucherInactive
	}
	if v.IsExpired(now) {
		return ErrVoucherExpired
	}
	if v.IsExhausted() {
		return ErrVoucherExhausted
	}
	return nil
}

// Deactivate turns the voucher off without destroying redemption history
func (v *Voucher) Deactivate() {
	v.IsActive = false
}

// Activate turns the voucher back on
func (v *Voucher) Activate() {
	v.IsActive = true
}

// Redemption is the join record of one user redeeming one voucher. The unique
// (UserID, VoucherID) constraint on its table is the sole defense against
// double redemption by the same user.
type Redemption struct {
	shared.BaseEntity
	UserID       uuid.UUID
	VoucherID    uuid.UUID
	CreditsAdded int64
}

// NewRedemption creates a redemption record snapshotting the credits granted.
func NewRedemption(userID, voucherID uuid.UUID, creditsAdded int64) (*Redemption, error) {
	if userID == uuid.Nil || voucherID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "User and voucher IDs cannot be empty")
	}
	if creditsAdded <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credits added must be positive")
	}
	return &Redemption{
		BaseEntity:   shared.NewBaseEntity(),
		UserID:       userID,
		VoucherID:    voucherID,
		CreditsAdded: creditsAdded,
	}, nil
}
