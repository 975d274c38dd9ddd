package models

import (
	"time"

	"github.com/flowcredit/backend/internal/domain/promo"
	"github.com/google/uuid"
)

// VoucherModel is the persistence model for the Voucher entity.
type VoucherModel struct {
	BaseModel
	Code      string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_voucher_code"`
	Credits   int64      `gorm:"not null"`
	MaxUses   int        `gorm:"not null"`
	UsedCount int        `gorm:"not null;default:0"`
	IsActive  bool       `gorm:"not null;default:true"`
	ExpiresAt *time.Time `gorm:""`
}

// TableName returns the table name for GORM
func (VoucherModel) TableName() string {
	return "vouchers"
}

// ToDomain converts the persistence model to a domain Voucher entity.
func (m *VoucherModel) ToDomain() *promo.Voucher {
	return &promo.Voucher{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Credits:    m.Credits,
		MaxUses:    m.MaxUses,
		UsedCount:  m.UsedCount,
		IsActive:   m.IsActive,
		ExpiresAt:  m.ExpiresAt,
	}
}

// FromDomain populates the persistence model from a domain Voucher entity.
func (m *VoucherModel) FromDomain(v *promo.Voucher) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.Code = v.Code
	m.Credits = v.Credits
	m.MaxUses = v.MaxUses
	m.UsedCount = v.UsedCount
	m.IsActive = v.IsActive
	m.ExpiresAt = v.ExpiresAt
}

// VoucherModelFromDomain creates a new persistence model from a domain Voucher entity.
func VoucherModelFromDomain(v *promo.Voucher) *VoucherModel {
	m := &VoucherModel{}
	m.FromDomain(v)
	return m
}

// VoucherRedemptionModel is the persistence model for the Redemption entity.
// The composite unique index on (user_id, voucher_id) is load-bearing: it is
// the final arbiter against concurrent double redemption.
type VoucherRedemptionModel struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_redemption_user_voucher,priority:1"`
	VoucherID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_redemption_user_voucher,priority:2"`
	CreditsAdded int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VoucherRedemptionModel) TableName() string {
	return "voucher_redemptions"
}

// ToDomain converts the persistence model to a domain Redemption entity.
func (m *VoucherRedemptionModel) ToDomain() *promo.Redemption {
	return &promo.Redemption{
		BaseEntity:   m.BaseModel.ToDomain(),
		UserID:       m.UserID,
		VoucherID:    m.VoucherID,
		CreditsAdded: m.CreditsAdded,
	}
}

// FromDomain populates the persistence model from a domain Redemption entity.
func (m *VoucherRedemptionModel) FromDomain(r *promo.Redemption) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.UserID = r.UserID
	m.VoucherID = r.VoucherID
	m.CreditsAdded = r.CreditsAdded
}

// VoucherRedemptionModelFromDomain creates a new persistence model from a domain Redemption entity.
func VoucherRedemptionModelFromDomain(r *promo.Redemption) *VoucherRedemptionModel {
	m := &VoucherRedemptionModel{}
	m.FromDomain(r)
	return m
}
