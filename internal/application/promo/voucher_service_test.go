package promo

import (
	"context"
	"testing"
	"time"

	"github.com/flowcredit/backend/internal/domain/promo"
	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVoucherService_CreateVoucher(t *testing.T) {
	t.Run("creates a voucher with a normalized code", func(t *testing.T) {
		voucherRepo := new(mockVoucherRepository)
		voucherRepo.On("Create", mock.Anything, mock.MatchedBy(func(v *promo.Voucher) bool {
			return v.Code == "SUMMER24" && v.Credits == 25 && v.MaxUses == 10 && v.IsActive
		})).Return(nil)

		service := NewVoucherService(voucherRepo, nil)

		voucher, err := service.CreateVoucher(context.Background(), CreateVoucherInput{
			Code:    "  summer24 ",
			Credits: 25,
			MaxUses: 10,
		})

		require.NoError(t, err)
		assert.Equal(t, "SUMMER24", voucher.Code)
		assert.Nil(t, voucher.ExpiresAt)
		voucherRepo.AssertExpectations(t)
	})

	t.Run("sets the expiry when provided", func(t *testing.T) {
		voucherRepo := new(mockVoucherRepository)
		voucherRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		expiry := time.Now().Add(48 * time.Hour)

		service := NewVoucherService(voucherRepo, nil)

		voucher, err := service.CreateVoucher(context.Background(), CreateVoucherInput{
			Code:      "FLASH",
			Credits:   10,
			MaxUses:   5,
			ExpiresAt: &expiry,
		})

		require.NoError(t, err)
		require.NotNil(t, voucher.ExpiresAt)
		assert.True(t, voucher.ExpiresAt.Equal(expiry))
	})

	t.Run("rejects non-positive credits", func(t *testing.T) {
		voucherRepo := new(mockVoucherRepository)

		service := NewVoucherService(voucherRepo, nil)

		_, err := service.CreateVoucher(context.Background(), CreateVoucherInput{
			Code:    "BROKE",
			Credits: 0,
			MaxUses: 5,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
		voucherRepo.AssertNotCalled(t, "Create")
	})

	t.Run("propagates a duplicate code", func(t *testing.T) {
		voucherRepo := new(mockVoucherRepository)
		voucherRepo.On("Create", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)

		service := NewVoucherService(voucherRepo, nil)

		_, err := service.CreateVoucher(context.Background(), CreateVoucherInput{
			Code:    "SPRING24",
			Credits: 50,
			MaxUses: 100,
		})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestVoucherService_UpdateVoucher(t *testing.T) {
	t.Run("applies partial edits", func(t *testing.T) {
		voucherRepo := new(mockVoucherRepository)
		voucher := newTestVoucher(t)

		voucherRepo.On("FindByID", mock.Anything, voucher.ID).Return(voucher, nil)
		voucherRepo.On("Save", mock.Anything, voucher).Return(nil)

		service := NewVoucherService(voucherRepo, nil)

		newCredits := int64(75)
		inactive := false
		updated, err := service.UpdateVoucher(context.Background(), voucher.ID, UpdateVoucherInput{
			Credits:  &newCredits,
			IsActive: &inactive,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(75), updated.Credits)
		assert.False(t, updated.IsActive)
		assert.Equal(t, 100, updated.MaxUses)
		voucherRepo.AssertExpectations(t)
	})

	t.Run("refuses max uses below the used count", func(t *testing.T) {
		voucherRepo := new(mockVoucherRepository)
		voucher := newTestVoucher(t)
		voucher.UsedCount = 7

		voucherRepo.On("FindByID", mock.Anything, voucher.ID).Return(voucher, nil)

		service := NewVoucherService(voucherRepo, nil)

		lower := 5
		_, err := service.UpdateVoucher(context.Background(), voucher.ID, UpdateVoucherInput{
			MaxUses: &lower,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
		voucherRepo.AssertNotCalled(t, "Save")
	})

	t.Run("refuses non-positive credit edits", func(t *testing.T) {
		voucherRepo := new(mockVoucherRepository)
		voucher := newTestVoucher(t)

		voucherRepo.On("FindByID", mock.Anything, voucher.ID).Return(voucher, nil)

		service := NewVoucherService(voucherRepo, nil)

		zero := int64(0)
		_, err := service.UpdateVoucher(context.Background(), voucher.ID, UpdateVoucherInput{
			Credits: &zero,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	})

	t.Run("propagates not found", func(t *testing.T) {
		voucherRepo := new(mockVoucherRepository)
		voucher := newTestVoucher(t)
		voucherRepo.On("FindByID", mock.Anything, voucher.ID).Return(nil, shared.ErrNotFound)

		service := NewVoucherService(voucherRepo, nil)

		_, err := service.UpdateVoucher(context.Background(), voucher.ID, UpdateVoucherInput{})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestVoucherService_ListVouchers(t *testing.T) {
	voucherRepo := new(mockVoucherRepository)
	voucher := newTestVoucher(t)
	voucherRepo.On("List", mock.Anything, 1, 20).Return([]*promo.Voucher{voucher}, int64(1), nil)

	service := NewVoucherService(voucherRepo, nil)

	vouchers, total, err := service.ListVouchers(context.Background(), 1, 20)

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, vouchers, 1)
	assert.Equal(t, "SPRING24", vouchers[0].Code)
}
