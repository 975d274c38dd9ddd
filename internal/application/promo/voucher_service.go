package promo

import (
	"context"
	"time"

	"github.com/flowcredit/backend/internal/domain/promo"
	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VoucherService handles admin voucher management
type VoucherService struct {
	voucherRepo promo.VoucherRepository
	logger      *zap.Logger
}

// NewVoucherService creates a new voucher management service
func NewVoucherService(voucherRepo promo.VoucherRepository, logger *zap.Logger) *VoucherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoucherService{
		voucherRepo: voucherRepo,
		logger:      logger,
	}
}

// CreateVoucherInput carries the fields for a new voucher.
type CreateVoucherInput struct {
	Code      string
	Credits   int64
	MaxUses   int
	ExpiresAt *time.Time
}

// CreateVoucher creates a new voucher with a normalized code
func (s *VoucherService) CreateVoucher(ctx context.Context, input CreateVoucherInput) (*promo.Voucher, error) {
	voucher, err := promo.NewVoucher(input.Code, input.Credits, input.MaxUses)
	if err != nil {
		return nil, err
	}
	if input.ExpiresAt != nil {
		voucher.WithExpiry(*input.ExpiresAt)
	}

	if err := s.voucherRepo.Create(ctx, voucher); err != nil {
		return nil, err
	}

	s.logger.Info("Voucher created",
		zap.String("code", voucher.Code),
		zap.Int64("credits", voucher.Credits),
		zap.Int("max_uses", voucher.MaxUses))

	return voucher, nil
}

// UpdateVoucherInput carries optional voucher edits; nil fields are untouched.
// Used counts are never edited, they belong to the redemption path.
type UpdateVoucherInput struct {
	Credits   *int64
	MaxUses   *int
	IsActive  *bool
	ExpiresAt *time.Time
}

// UpdateVoucher applies admin edits to an existing voucher
func (s *VoucherService) UpdateVoucher(ctx context.Context, id uuid.UUID, input UpdateVoucherInput) (*promo.Voucher, error) {
	voucher, err := s.voucherRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Credits != nil {
		if *input.Credits <= 0 {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Voucher credit value must be positive")
		}
		voucher.Credits = *input.Credits
	}
	if input.MaxUses != nil {
		if *input.MaxUses < voucher.UsedCount {
			return nil, shared.NewDomainError("INVALID_INPUT", "Max uses cannot drop below the current used count")
		}
		voucher.MaxUses = *input.MaxUses
	}
	if input.IsActive != nil {
		if *input.IsActive {
			voucher.Activate()
		} else {
			voucher.Deactivate()
		}
	}
	if input.ExpiresAt != nil {
		voucher.WithExpiry(*input.ExpiresAt)
	}

	if err := s.voucherRepo.Save(ctx, voucher); err != nil {
		return nil, err
	}

	s.logger.Info("Voucher updated", zap.String("voucher_id", id.String()))
	return voucher, nil
}

// ListVouchers returns vouchers newest-first with the total count
func (s *VoucherService) ListVouchers(ctx context.Context, page, pageSize int) ([]*promo.Voucher, int64, error) {
	return s.voucherRepo.List(ctx, page, pageSize)
}
