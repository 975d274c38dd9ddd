package models

import (
	"time"

	"github.com/flowcredit/backend/internal/domain/topup"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopUpOrderModel is the persistence model for the top-up Order entity.
type TopUpOrderModel struct {
	BaseModel
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_topup_user_created,priority:1"`
	PackageID        string          `gorm:"type:varchar(64);not null"`
	Credits          int64           `gorm:"not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency         string          `gorm:"type:varchar(8);not null"`
	Status           string          `gorm:"type:varchar(16);not null;index"`
	PaymentMethod    string          `gorm:"type:varchar(32)"`
	GatewayReference *string         `gorm:"type:varchar(255);uniqueIndex:idx_topup_gateway_ref"`
	PaymentReference string          `gorm:"type:varchar(255)"`
	FailureReason    string          `gorm:"type:text"`
	CompletedAt      *time.Time      `gorm:""`
}

// TableName returns the table name for GORM
func (TopUpOrderModel) TableName() string {
	return "topup_orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *TopUpOrderModel) ToDomain() *topup.Order {
	order := &topup.Order{
		BaseEntity:       m.BaseModel.ToDomain(),
		UserID:           m.UserID,
		PackageID:        m.PackageID,
		Credits:          m.Credits,
		Amount:           m.Amount,
		Currency:         m.Currency,
		Status:           topup.OrderStatus(m.Status),
		PaymentMethod:    m.PaymentMethod,
		PaymentReference: m.PaymentReference,
		FailureReason:    m.FailureReason,
		CompletedAt:      m.CompletedAt,
	}
	if m.GatewayReference != nil {
		order.GatewayReference = *m.GatewayReference
	}
	return order
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *TopUpOrderModel) FromDomain(o *topup.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.UserID = o.UserID
	m.PackageID = o.PackageID
	m.Credits = o.Credits
	m.Amount = o.Amount
	m.Currency = o.Currency
	m.Status = string(o.Status)
	m.PaymentMethod = o.PaymentMethod
	m.PaymentReference = o.PaymentReference
	m.FailureReason = o.FailureReason
	m.CompletedAt = o.CompletedAt
	if o.GatewayReference != "" {
		ref := o.GatewayReference
		m.GatewayReference = &ref
	} else {
		// NULL rather than empty string so the unique index tolerates
		// multiple orders that never reached the gateway
		m.GatewayReference = nil
	}
}

// TopUpOrderModelFromDomain creates a new persistence model from a domain Order entity.
func TopUpOrderModelFromDomain(o *topup.Order) *TopUpOrderModel {
	m := &TopUpOrderModel{}
	m.FromDomain(o)
	return m
}
