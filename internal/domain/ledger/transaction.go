package ledger

import (
	"time"

	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionType classifies a credit transaction entry.
type TransactionType string

const (
	// TransactionTypeDeduction represents workflow consumption (balance decrease)
	TransactionTypeDeduction TransactionType = "DEDUCTION"
	// TransactionTypeRefund represents credits returned for a failed paid action (balance increase)
	TransactionTypeRefund TransactionType = "REFUND"
	// TransactionTypeAdminAdjustment represents a privileged manual correction (either direction)
	TransactionTypeAdminAdjustment TransactionType = "ADMIN_ADJUSTMENT"
	// TransactionTypeVoucherRedemption represents credits granted by redeeming a voucher code
	TransactionTypeVoucherRedemption TransactionType = "VOUCHER_REDEMPTION"
	// TransactionTypeSignupBonus represents the initial credit grant at account creation
	TransactionTypeSignupBonus TransactionType = "SIGNUP_BONUS"
	// TransactionTypeTopUp represents credits purchased through the payment gateway
	TransactionTypeTopUp TransactionType = "TOPUP"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeduction,
		TransactionTypeRefund,
		TransactionTypeAdminAdjustment,
		TransactionTypeVoucherRedemption,
		TransactionTypeSignupBonus,
		TransactionTypeTopUp:
		return true
	}
	return false
}

// ReferenceType identifies the kind of document a transaction references.
type ReferenceType string

const (
	// ReferenceTypeSubmission links a deduction to a workflow submission
	ReferenceTypeSubmission ReferenceType = "SUBMISSION"
	// ReferenceTypeVoucher links a redemption to the voucher that was redeemed
	ReferenceTypeVoucher ReferenceType = "VOUCHER"
	// ReferenceTypeTopUpOrder links a credit grant to the top-up order that paid for it
	ReferenceTypeTopUpOrder ReferenceType = "TOPUP_ORDER"
	// ReferenceTypeAdmin links an adjustment to the admin user who made it
	ReferenceTypeAdmin ReferenceType = "ADMIN"
)

// Reference is an optional pointer from a transaction to its source document.
type Reference struct {
	Type ReferenceType
	ID   string
}

// Transaction is an immutable record of a single balance change. Entries are
// never edited or deleted after creation; corrections are new entries.
type Transaction struct {
	shared.BaseEntity
	UserID      uuid.UUID
	Amount      int64 // signed: negative for deductions
	Type        TransactionType
	Description string
	Reference   *Reference
}

// NewTransaction creates a transaction entry. Amount carries its sign; a zero
// amount is rejected because it would record a mutation that never happened.
func NewTransaction(userID uuid.UUID, amount int64, txType TransactionType, description string) (*Transaction, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if amount == 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount cannot be zero")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	return &Transaction{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Description: description,
	}, nil
}

// WithReference sets the source document reference for the transaction
func (t *Transaction) WithReference(refType ReferenceType, refID string) *Transaction {
	t.Reference = &Reference{Type: refType, ID: refID}
	return t
}

// IsCredit returns true if this entry increased the balance
func (t *Transaction) IsCredit() bool {
	return t.Amount > 0
}

// IsDebit returns true if this entry decreased the balance
func (t *Transaction) IsDebit() bool {
	return t.Amount < 0
}

// TransactionFilter carries pagination for transaction listings.
type TransactionFilter struct {
	Page     int
	PageSize int
	Type     *TransactionType
	From     *time.Time
	To       *time.Time
}
