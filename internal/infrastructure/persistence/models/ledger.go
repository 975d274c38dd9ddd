package models

import (
	"github.com/flowcredit/backend/internal/domain/ledger"
	"github.com/google/uuid"
)

// CreditAccountModel is the persistence model for the ledger Account entity.
type CreditAccountModel struct {
	BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_credit_account_user"`
	Balance int64     `gorm:"not null;default:0;check:chk_credit_account_balance,balance >= 0"`
}

// TableName returns the table name for GORM
func (CreditAccountModel) TableName() string {
	return "credit_accounts"
}

// ToDomain converts the persistence model to a domain Account entity.
func (m *CreditAccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		Balance:    m.Balance,
	}
}

// FromDomain populates the persistence model from a domain Account entity.
func (m *CreditAccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.UserID = a.UserID
	m.Balance = a.Balance
}

// CreditAccountModelFromDomain creates a new persistence model from a domain Account entity.
func CreditAccountModelFromDomain(a *ledger.Account) *CreditAccountModel {
	m := &CreditAccountModel{}
	m.FromDomain(a)
	return m
}

// CreditTransactionModel is the persistence model for the ledger Transaction
// entity. Rows are append-only; nothing updates or deletes them.
type CreditTransactionModel struct {
	BaseModel
	UserID        uuid.UUID `gorm:"type:uuid;not null;index:idx_credit_tx_user_created,priority:1"`
	Amount        int64     `gorm:"not null"`
	Type          string    `gorm:"type:varchar(32);not null;index"`
	Description   string    `gorm:"type:text"`
	ReferenceType *string   `gorm:"type:varchar(32)"`
	ReferenceID   *string   `gorm:"type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (CreditTransactionModel) TableName() string {
	return "credit_transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity.
func (m *CreditTransactionModel) ToDomain() *ledger.Transaction {
	tx := &ledger.Transaction{
		BaseEntity:  m.BaseModel.ToDomain(),
		UserID:      m.UserID,
		Amount:      m.Amount,
		Type:        ledger.TransactionType(m.Type),
		Description: m.Description,
	}
	if m.ReferenceType != nil && m.ReferenceID != nil {
		tx.Reference = &ledger.Reference{
			Type: ledger.ReferenceType(*m.ReferenceType),
			ID:   *m.ReferenceID,
		}
	}
	return tx
}

// FromDomain populates the persistence model from a domain Transaction entity.
func (m *CreditTransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.UserID = t.UserID
	m.Amount = t.Amount
	m.Type = string(t.Type)
	m.Description = t.Description
	if t.Reference != nil {
		refType := string(t.Reference.Type)
		refID := t.Reference.ID
		m.ReferenceType = &refType
		m.ReferenceID = &refID
	} else {
		m.ReferenceType = nil
		m.ReferenceID = nil
	}
}

// CreditTransactionModelFromDomain creates a new persistence model from a domain Transaction entity.
func CreditTransactionModelFromDomain(t *ledger.Transaction) *CreditTransactionModel {
	m := &CreditTransactionModel{}
	m.FromDomain(t)
	return m
}
