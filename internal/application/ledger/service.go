package ledger

import (
	"context"
	"fmt"

	"github.com/flowcredit/backend/internal/domain/ledger"
	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes account and ledger operations to the interface layer.
// All balance mutations flow through the ledger store; this service never
// touches the balance column itself.
type Service struct {
	store       ledger.Store
	accountRepo ledger.AccountRepository
	txRepo      ledger.TransactionRepository
	signupBonus int64
	logger      *zap.Logger
}

// ServiceOption is a functional option for configuring the service
type ServiceOption func(*Service)

// WithSignupBonus sets the credit amount granted at account creation
func WithSignupBonus(bonus int64) ServiceOption {
	return func(s *Service) {
		s.signupBonus = bonus
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new ledger service
func NewService(
	store ledger.Store,
	accountRepo ledger.AccountRepository,
	txRepo ledger.TransactionRepository,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		store:       store,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount creates a credit account for a new user. When a signup bonus
// is configured the bonus is granted through the ledger store so the account
// starts with a matching transaction entry.
func (s *Service) CreateAccount(ctx context.Context, userID uuid.UUID) (*ledger.Account, error) {
	account, err := ledger.NewAccount(userID)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if s.signupBonus > 0 {
		result, err := s.store.ApplyDelta(ctx, ledger.ApplyDeltaInput{
			UserID:      userID,
			Amount:      s.signupBonus,
			Type:        ledger.TransactionTypeSignupBonus,
			Description: "Signup bonus",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to grant signup bonus: %w", err)
		}
		account.Balance = result.NewBalance
		s.logger.Info("Granted signup bonus",
			zap.String("user_id", userID.String()),
			zap.Int64("amount", s.signupBonus))
	}

	return account, nil
}

// GetBalance returns the current credit balance for a user
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	account, err := s.accountRepo.FindByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// ListTransactions returns a user's ledger entries newest-first with the total count
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, filter ledger.TransactionFilter) ([]*ledger.Transaction, int64, error) {
	return s.txRepo.ListByUser(ctx, userID, filter)
}

// AdminAdjust applies a privileged manual credit or debit. Authorization is
// the boundary's responsibility; this method only enforces ledger rules.
func (s *Service) AdminAdjust(ctx context.Context, adminID, targetUserID uuid.UUID, amount int64, reason string) (int64, error) {
	if amount == 0 {
		return 0, shared.NewDomainError("INVALID_AMOUNT", "Adjustment amount cannot be zero")
	}

	description := reason
	if description == "" {
		description = fmt.Sprintf("Admin adjustment by %s", adminID)
	}

	result, err := s.store.ApplyDelta(ctx, ledger.ApplyDeltaInput{
		UserID:      targetUserID,
		Amount:      amount,
		Type:        ledger.TransactionTypeAdminAdjustment,
		Description: description,
		Reference: &ledger.Reference{
			Type: ledger.ReferenceTypeAdmin,
			ID:   adminID.String(),
		},
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Admin adjustment applied",
		zap.String("admin_id", adminID.String()),
		zap.String("target_user_id", targetUserID.String()),
		zap.Int64("amount", amount),
		zap.Int64("new_balance", result.NewBalance))

	return result.NewBalance, nil
}

// ConsistencyReport compares an account balance with the sum of its entries.
type ConsistencyReport struct {
	UserID     uuid.UUID `json:"user_id"`
	Balance    int64     `json:"balance"`
	EntrySum   int64     `json:"entry_sum"`
	Consistent bool      `json:"consistent"`
}

// CheckConsistency verifies the ledger invariant for one user: the account
// balance must equal the sum of all transaction entries.
func (s *Service) CheckConsistency(ctx context.Context, userID uuid.UUID) (*ConsistencyReport, error) {
	account, err := s.accountRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum, err := s.txRepo.SumByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		UserID:     userID,
		Balance:    account.Balance,
		EntrySum:   sum,
		Consistent: account.Balance == sum,
	}
	if !report.Consistent {
		s.logger.Error("Ledger consistency violation detected",
			zap.String("user_id", userID.String()),
			zap.Int64("balance", account.Balance),
			zap.Int64("entry_sum", sum))
	}
	return report, nil
}
