package promo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVoucher(t *testing.T) {
	t.Run("normalizes the code", func(t *testing.T) {
		voucher, err := NewVoucher("  spring24 ", 50, 100)
		require.NoError(t, err)
		assert.Equal(t, "SPRING24", voucher.Code)
		assert.True(t, voucher.IsActive)
		assert.Equal(t, 0, voucher.UsedCount)
		assert.Nil(t, voucher.ExpiresAt)
	})

	t.Run("rejects an empty code", func(t *testing.T) {
		_, err := NewVoucher("   ", 50, 100)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive credits", func(t *testing.T) {
		_, err := NewVoucher("CODE", 0, 100)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive max uses", func(t *testing.T) {
		_, err := NewVoucher("CODE", 50, 0)
		assert.Error(t, err)
	})
}

func TestVoucher_CheckRedeemable(t *testing.T) {
	now := time.Now()

	t.Run("fresh voucher is redeemable", func(t *testing.T) {
		voucher, err := NewVoucher("CODE", 50, 2)
		require.NoError(t, err)
		assert.NoError(t, voucher.CheckRedeemable(now))
	})

	t.Run("inactive voucher", func(t *testing.T) {
		voucher, err := NewVoucher("CODE", 50, 2)
		require.NoError(t, err)
		voucher.Deactivate()
		assert.ErrorIs(t, voucher.CheckRedeemable(now), ErrVoucherInactive)

		voucher.Activate()
		assert.NoError(t, voucher.CheckRedeemable(now))
	})

	t.Run("expired voucher", func(t *testing.T) {
		voucher, err := NewVoucher("CODE", 50, 2)
		require.NoError(t, err)
		voucher.WithExpiry(now.Add(-time.Hour))
		assert.ErrorIs(t, voucher.CheckRedeemable(now), ErrVoucherExpired)
	})

	t.Run("future expiry does not block", func(t *testing.T) {
		voucher, err := NewVoucher("CODE", 50, 2)
		require.NoError(t, err)
		voucher.WithExpiry(now.Add(time.Hour))
		assert.NoError(t, voucher.CheckRedeemable(now))
	})

	t.Run("exhausted voucher", func(t *testing.T) {
		voucher, err := NewVoucher("CODE", 50, 2)
		require.NoError(t, err)
		voucher.UsedCount = 2
		assert.ErrorIs(t, voucher.CheckRedeemable(now), ErrVoucherExhausted)
	})

	t.Run("inactive wins over expired", func(t *testing.T) {
		voucher, err := NewVoucher("CODE", 50, 2)
		require.NoError(t, err)
		voucher.Deactivate()
		voucher.WithExpiry(now.Add(-time.Hour))
		assert.ErrorIs(t, voucher.CheckRedeemable(now), ErrVoucherInactive)
	})
}

func TestNewRedemption(t *testing.T) {
	t.Run("snapshots the credits granted", func(t *testing.T) {
		userID := uuid.New()
		voucherID := uuid.New()
		redemption, err := NewRedemption(userID, voucherID, 50)
		require.NoError(t, err)
		assert.Equal(t, userID, redemption.UserID)
		assert.Equal(t, voucherID, redemption.VoucherID)
		assert.Equal(t, int64(50), redemption.CreditsAdded)
	})

	t.Run("rejects empty ids", func(t *testing.T) {
		_, err := NewRedemption(uuid.Nil, uuid.New(), 50)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive credits", func(t *testing.T) {
		_, err := NewRedemption(uuid.New(), uuid.New(), 0)
		assert.Error(t, err)
	})
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SPRING24", NormalizeCode(" spring24\t"))
	assert.Equal(t, "", NormalizeCode("   "))
}
