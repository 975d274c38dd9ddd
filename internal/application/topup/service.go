package topup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowcredit/backend/internal/domain/ledger"
	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/flowcredit/backend/internal/domain/topup"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service owns the top-up order lifecycle: package catalog, order creation
// against the payment gateway, and the two reconciliation entry points
// (gateway callback and client poll). Both entry points converge on the
// completion store, whose conditional update decides every race.
type Service struct {
	orderRepo   topup.OrderRepository
	completions topup.CompletionStore
	accounts    ledger.AccountRepository
	gateway     topup.PaymentGateway
	idempotency shared.IdempotencyStore
	packages    []topup.Package
	packageByID map[string]topup.Package
	successURL  string
	cancelURL   string
	dedupTTL    time.Duration
	logger      *zap.Logger
}

// ServiceConfig contains the dependencies and settings for the top-up service
type ServiceConfig struct {
	OrderRepo   topup.OrderRepository
	Completions topup.CompletionStore
	Accounts    ledger.AccountRepository
	Gateway     topup.PaymentGateway
	Idempotency shared.IdempotencyStore
	Packages    []topup.Package
	SuccessURL  string
	CancelURL   string
	DedupTTL    time.Duration
	Logger      *zap.Logger
}

// NewService creates a new top-up service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dedupTTL := cfg.DedupTTL
	if dedupTTL == 0 {
		dedupTTL = 24 * time.Hour
	}

	byID := make(map[string]topup.Package, len(cfg.Packages))
	for _, pkg := range cfg.Packages {
		byID[pkg.ID] = pkg
	}

	return &Service{
		orderRepo:   cfg.OrderRepo,
		completions: cfg.Completions,
		accounts:    cfg.Accounts,
		gateway:     cfg.Gateway,
		idempotency: cfg.Idempotency,
		packages:    cfg.Packages,
		packageByID: byID,
		successURL:  cfg.SuccessURL,
		cancelURL:   cfg.CancelURL,
		dedupTTL:    dedupTTL,
		logger:      logger,
	}
}

// ListPackages returns the configured top-up package catalog
func (s *Service) ListPackages() []topup.Package {
	return s.packages
}

// CreateOrderResult carries the new order and the checkout URL for redirect.
type CreateOrderResult struct {
	Order       *topup.Order
	CheckoutURL string
}

// CreateOrder creates a pending order for a package and opens a checkout
// session at the gateway. The order row is written before the gateway call
// so a crash mid-call leaves a failed-able pending order, never a paid
// session without an order.
func (s *Service) CreateOrder(ctx context.Context, userID uuid.UUID, packageID string) (*CreateOrderResult, error) {
	pkg, ok := s.packageByID[packageID]
	if !ok {
		return nil, topup.ErrInvalidPackage
	}

	order, err := topup.NewOrder(userID, pkg)
	if err != nil {
		return nil, err
	}
	order.PaymentMethod = s.gateway.Name()

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	checkout, err := s.gateway.CreateCheckout(ctx, topup.CreateCheckoutRequest{
		Order:       order,
		SuccessURL:  s.successURL,
		CancelURL:   s.cancelURL,
		Description: pkg.Label,
	})
	if err != nil {
		s.logger.Error("Gateway checkout creation failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		if failErr := s.completions.MarkFailed(ctx, order.ID, fmt.Sprintf("checkout creation failed: %v", err)); failErr != nil {
			s.logger.Error("Failed to mark order failed after gateway error",
				zap.String("order_id", order.ID.String()),
				zap.Error(failErr))
		}
		return nil, topup.ErrGatewayError
	}

	if err := s.orderRepo.SetGatewayReference(ctx, order.ID, checkout.GatewayReference); err != nil {
		return nil, err
	}
	order.GatewayReference = checkout.GatewayReference

	s.logger.Info("Top-up order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("package_id", packageID),
		zap.String("gateway_reference", checkout.GatewayReference))

	return &CreateOrderResult{
		Order:       order,
		CheckoutURL: checkout.CheckoutURL,
	}, nil
}

// CallbackResult reports how a gateway callback was handled.
type CallbackResult struct {
	EventID   string `json:"event_id"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// HandleCallback processes a verified gateway notification. Duplicate events
// and duplicate completions are inert; a callback contradicting a failed
// order is logged as an integrity signal and never applied. Signature
// failures are the only error path that should surface as a rejected
// delivery.
func (s *Service) HandleCallback(ctx context.Context, payload []byte, signature string) (*CallbackResult, error) {
	event, err := s.gateway.VerifyCallback(payload, signature)
	if err != nil {
		s.logger.Warn("Callback signature verification failed", zap.Error(err))
		return nil, topup.ErrInvalidSignature
	}

	if !event.Relevant {
		return &CallbackResult{EventID: event.EventID, Processed: false, Message: "event type ignored"}, nil
	}

	// Best-effort dedup in front of the database; the completion store's
	// conditional update remains the correctness mechanism.
	if s.idempotency != nil {
		processed, err := s.idempotency.IsProcessed(ctx, event.EventID)
		if err != nil {
			s.logger.Warn("Idempotency check failed, continuing",
				zap.String("event_id", event.EventID),
				zap.Error(err))
		} else if processed {
			return &CallbackResult{EventID: event.EventID, Processed: false, Message: "duplicate event"}, nil
		}
	}

	order, err := s.resolveOrder(ctx, event)
	if err != nil {
		return nil, err
	}

	result, err := s.applyOutcome(ctx, order, event.Outcome)
	if err != nil {
		return nil, err
	}
	result.EventID = event.EventID

	if s.idempotency != nil {
		if _, err := s.idempotency.MarkProcessed(ctx, event.EventID, s.dedupTTL); err != nil {
			s.logger.Warn("Failed to record processed event",
				zap.String("event_id", event.EventID),
				zap.Error(err))
		}
	}

	return result, nil
}

// resolveOrder locates the order a callback refers to, preferring the echoed
// order ID and falling back to the gateway session reference.
func (s *Service) resolveOrder(ctx context.Context, event *topup.CallbackEvent) (*topup.Order, error) {
	if event.OrderID != "" {
		if orderID, err := uuid.Parse(event.OrderID); err == nil {
			order, err := s.orderRepo.FindByID(ctx, orderID)
			if err == nil {
				return order, nil
			}
			if !errors.Is(err, shared.ErrNotFound) {
				return nil, err
			}
		}
	}
	if event.GatewayReference != "" {
		return s.orderRepo.FindByGatewayReference(ctx, event.GatewayReference)
	}
	return nil, shared.ErrNotFound
}

// amountMatches verifies a reported payment amount against the order. An
// outcome without an amount passes; the gateway does not always echo one.
func (s *Service) amountMatches(order *topup.Order, outcome topup.Outcome) bool {
	if outcome.AmountMinor == 0 {
		return true
	}
	return outcome.AmountMinor == order.AmountMinorUnits()
}

// applyOutcome drives an order toward the state a verified outcome reports
func (s *Service) applyOutcome(ctx context.Context, order *topup.Order, outcome topup.Outcome) (*CallbackResult, error) {
	switch {
	case outcome.Succeeded:
		if !s.amountMatches(order, outcome) {
			// A paid amount that disagrees with the order is an integrity
			// signal, never a completion.
			s.logger.Error("Callback amount does not match order",
				zap.String("order_id", order.ID.String()),
				zap.Int64("order_minor_units", order.AmountMinorUnits()),
				zap.Int64("reported_minor_units", outcome.AmountMinor),
				zap.String("error_code", topup.ErrInconsistentCallback.Code))
			return &CallbackResult{Processed: false, Message: "amount mismatch"}, nil
		}
		result, err := s.completions.TryComplete(ctx, order.ID, outcome)
		if err != nil {
			if errors.Is(err, shared.ErrInvalidState) {
				// Success reported for an order we already failed. Logged and
				// dropped; crediting here would corrupt the ledger.
				s.logger.Error("Inconsistent callback for failed order",
					zap.String("order_id", order.ID.String()),
					zap.String("error_code", topup.ErrInconsistentCallback.Code))
				return &CallbackResult{Processed: false, Message: "order already failed"}, nil
			}
			return nil, err
		}
		if !result.Completed {
			return &CallbackResult{Processed: false, Message: "order already completed"}, nil
		}
		s.logger.Info("Top-up order completed via callback",
			zap.String("order_id", order.ID.String()),
			zap.Int64("new_balance", result.NewBalance))
		return &CallbackResult{Processed: true}, nil

	case outcome.Failed:
		if err := s.completions.MarkFailed(ctx, order.ID, "gateway reported failure"); err != nil {
			if errors.Is(err, shared.ErrInvalidState) {
				s.logger.Error("Inconsistent callback for completed order",
					zap.String("order_id", order.ID.String()),
					zap.String("error_code", topup.ErrInconsistentCallback.Code))
				return &CallbackResult{Processed: false, Message: "order already completed"}, nil
			}
			return nil, err
		}
		s.logger.Info("Top-up order failed via callback",
			zap.String("order_id", order.ID.String()))
		return &CallbackResult{Processed: true}, nil

	default:
		// Inconclusive; the order stays pending until a decisive event or poll.
		return &CallbackResult{Processed: false, Message: "outcome inconclusive"}, nil
	}
}

// OrderStatus is a polled order state. NewBalance is set only for a completed
// order: the balance after its credits, from this poll's completion when this
// poll won the race, otherwise the current account balance.
type OrderStatus struct {
	Order      *topup.Order
	NewBalance *int64
}

// GetStatus returns the current state of a user's order, reconciling a
// pending order against the gateway first. The gateway query runs outside
// any database transaction; only the verified outcome touches the store.
func (s *Service) GetStatus(ctx context.Context, userID, orderID uuid.UUID) (*OrderStatus, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		// Do not leak other users' orders.
		return nil, shared.ErrNotFound
	}

	if !order.IsPending() || order.GatewayReference == "" {
		return s.orderStatus(ctx, order, nil), nil
	}

	query, err := s.gateway.QueryPayment(ctx, order.GatewayReference)
	if err != nil {
		s.logger.Warn("Gateway status query failed, returning stored state",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return &OrderStatus{Order: order}, nil
	}

	var completedBalance *int64
	switch {
	case query.Outcome.Succeeded:
		if !s.amountMatches(order, query.Outcome) {
			s.logger.Error("Gateway amount does not match order",
				zap.String("order_id", order.ID.String()),
				zap.Int64("order_minor_units", order.AmountMinorUnits()),
				zap.Int64("reported_minor_units", query.Outcome.AmountMinor))
			return &OrderStatus{Order: order}, nil
		}
		result, err := s.completions.TryComplete(ctx, order.ID, query.Outcome)
		if err != nil && !errors.Is(err, shared.ErrInvalidState) {
			return nil, err
		}
		if err == nil && result.Completed {
			completedBalance = &result.NewBalance
			s.logger.Info("Top-up order completed via poll",
				zap.String("order_id", order.ID.String()),
				zap.Int64("new_balance", result.NewBalance))
		}
	case query.Outcome.Failed:
		if err := s.completions.MarkFailed(ctx, order.ID, "gateway reported failure on poll"); err != nil && !errors.Is(err, shared.ErrInvalidState) {
			return nil, err
		}
	default:
		return &OrderStatus{Order: order}, nil
	}

	order, err = s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.orderStatus(ctx, order, completedBalance), nil
}

// orderStatus attaches the post-completion balance to a completed order,
// falling back to the current account balance when this call did not perform
// the completion itself.
func (s *Service) orderStatus(ctx context.Context, order *topup.Order, completedBalance *int64) *OrderStatus {
	status := &OrderStatus{Order: order}
	if order.Status != topup.OrderStatusCompleted {
		return status
	}
	if completedBalance != nil {
		status.NewBalance = completedBalance
		return status
	}
	if s.accounts == nil {
		return status
	}
	account, err := s.accounts.FindByUserID(ctx, order.UserID)
	if err != nil {
		s.logger.Warn("Failed to read balance for completed order",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return status
	}
	balance := account.Balance
	status.NewBalance = &balance
	return status
}

// ListOrders returns a user's orders newest-first with the total count
func (s *Service) ListOrders(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*topup.Order, int64, error) {
	return s.orderRepo.ListByUser(ctx, userID, page, pageSize)
}
