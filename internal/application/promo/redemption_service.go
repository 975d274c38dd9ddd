package promo

import (
	"context"
	"time"

	"github.com/flowcredit/backend/internal/domain/promo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RedemptionService orchestrates voucher redemption. Validation here is a
// fast-fail courtesy; the persistence store's constraints decide races.
type RedemptionService struct {
	voucherRepo    promo.VoucherRepository
	redemptionRepo promo.RedemptionRepository
	store          promo.RedemptionStore
	logger         *zap.Logger
}

// NewRedemptionService creates a new redemption service
func NewRedemptionService(
	voucherRepo promo.VoucherRepository,
	redemptionRepo promo.RedemptionRepository,
	store promo.RedemptionStore,
	logger *zap.Logger,
) *RedemptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedemptionService{
		voucherRepo:    voucherRepo,
		redemptionRepo: redemptionRepo,
		store:          store,
		logger:         logger,
	}
}

// Redeem redeems a voucher code for a user. Each failure mode carries its own
// error code so the client never has to show a generic "redemption failed".
func (s *RedemptionService) Redeem(ctx context.Context, userID uuid.UUID, code string) (*promo.RedemptionResult, error) {
	voucher, err := s.voucherRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := voucher.CheckRedeemable(time.Now()); err != nil {
		return nil, err
	}

	existing, err := s.redemptionRepo.FindByUserAndVoucher(ctx, userID, voucher.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, promo.ErrAlreadyRedeemed
	}

	result, err := s.store.Redeem(ctx, userID, voucher)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Voucher redeemed",
		zap.String("user_id", userID.String()),
		zap.String("voucher_code", voucher.Code),
		zap.Int64("credits_added", result.CreditsAdded),
		zap.Int64("new_balance", result.NewBalance))

	return result, nil
}
