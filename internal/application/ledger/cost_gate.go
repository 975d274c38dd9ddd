package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowcredit/backend/internal/domain/ledger"
	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/flowcredit/backend/internal/domain/workflow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CostGate is the hard precondition in front of paid workflows: it prices a
// workflow type and performs the debit-or-reject decision. A workflow is
// never dispatched speculatively; the deduction happens before dispatch and a
// retry is a new submission that deducts again.
type CostGate struct {
	costs       workflow.CostProvider
	costRepo    workflow.CostRepository
	store       ledger.Store
	accountRepo ledger.AccountRepository
	logger      *zap.Logger
}

// NewCostGate creates a new workflow cost gate
func NewCostGate(
	costs workflow.CostProvider,
	costRepo workflow.CostRepository,
	store ledger.Store,
	accountRepo ledger.AccountRepository,
	logger *zap.Logger,
) *CostGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CostGate{
		costs:       costs,
		costRepo:    costRepo,
		store:       store,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// ChargeResult reports a successful cost gate decision.
type ChargeResult struct {
	WorkflowType  string    `json:"workflow_type"`
	Credits       int64     `json:"credits"`
	NewBalance    int64     `json:"new_balance"`
	TransactionID uuid.UUID `json:"transaction_id"`
}

// CheckAndDeduct resolves the cost of a workflow type and atomically deducts
// it. Returns UNKNOWN_WORKFLOW_TYPE for unpriced types and
// INSUFFICIENT_CREDITS with the exact shortfall when the balance does not
// cover the cost. A zero-cost workflow passes without writing an entry.
func (g *CostGate) CheckAndDeduct(ctx context.Context, userID uuid.UUID, workflowType, submissionID string) (*ChargeResult, error) {
	cost, err := g.costs.Resolve(ctx, workflowType)
	if err != nil {
		return nil, err
	}

	if cost.Credits == 0 {
		account, err := g.accountRepo.FindByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &ChargeResult{
			WorkflowType: cost.WorkflowType,
			Credits:      0,
			NewBalance:   account.Balance,
		}, nil
	}

	result, err := g.store.ApplyDelta(ctx, ledger.ApplyDeltaInput{
		UserID:      userID,
		Amount:      -cost.Credits,
		Type:        ledger.TransactionTypeDeduction,
		Description: fmt.Sprintf("Workflow %s", cost.WorkflowType),
		Reference: &ledger.Reference{
			Type: ledger.ReferenceTypeSubmission,
			ID:   submissionID,
		},
	})
	if err != nil {
		// Surface the gate-specific rejection while keeping the shortfall details.
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "INSUFFICIENT_BALANCE" {
			required, _ := domainErr.Details["required"].(int64)
			available, _ := domainErr.Details["available"].(int64)
			return nil, ledger.NewInsufficientCreditsError(required, available)
		}
		return nil, err
	}

	g.logger.Info("Workflow charge applied",
		zap.String("user_id", userID.String()),
		zap.String("workflow_type", cost.WorkflowType),
		zap.String("submission_id", submissionID),
		zap.Int64("credits", cost.Credits),
		zap.Int64("new_balance", result.NewBalance))

	return &ChargeResult{
		WorkflowType:  cost.WorkflowType,
		Credits:       cost.Credits,
		NewBalance:    result.NewBalance,
		TransactionID: result.TransactionID,
	}, nil
}

// ListCosts returns the (possibly cached) workflow cost table
func (g *CostGate) ListCosts(ctx context.Context) ([]*workflow.Cost, error) {
	return g.costs.ListAll(ctx)
}

// CostEntry is one admin-supplied workflow cost row.
type CostEntry struct {
	WorkflowType string
	Credits      int64
	Label        string
}

// UpsertCosts replaces workflow cost entries and invalidates the cache so the
// new prices take effect without waiting out the TTL.
func (g *CostGate) UpsertCosts(ctx context.Context, entries []CostEntry) ([]*workflow.Cost, error) {
	costs := make([]*workflow.Cost, 0, len(entries))
	for _, e := range entries {
		cost, err := workflow.NewCost(e.WorkflowType, e.Credits, e.Label)
		if err != nil {
			return nil, err
		}
		costs = append(costs, cost)
	}

	if err := g.costRepo.Upsert(ctx, costs); err != nil {
		return nil, err
	}
	g.costs.Invalidate()

	g.logger.Info("Workflow costs updated", zap.Int("entries", len(costs)))
	return costs, nil
}
