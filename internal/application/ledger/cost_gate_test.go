package ledger

import (
	"context"
	"testing"

	"github.com/flowcredit/backend/internal/domain/ledger"
	"github.com/flowcredit/backend/internal/domain/shared"
	"github.com/flowcredit/backend/internal/domain/workflow"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCostGate_CheckAndDeduct(t *testing.T) {
	t.Run("deducts the configured cost before dispatch", func(t *testing.T) {
		costs := new(mockCostProvider)
		store := new(mockLedgerStore)
		accountRepo := new(mockAccountRepository)
		userID := uuid.New()

		costs.On("Resolve", mock.Anything, "image_generation").
			Return(&workflow.Cost{WorkflowType: "image_generation", Credits: 10}, nil)
		store.On("ApplyDelta", mock.Anything, mock.MatchedBy(func(input ledger.ApplyDeltaInput) bool {
			return input.UserID == userID &&
				input.Amount == -10 &&
				input.Type == ledger.TransactionTypeDeduction &&
				input.Reference != nil &&
				input.Reference.Type == ledger.ReferenceTypeSubmission &&
				input.Reference.ID == "sub-123"
		})).Return(&ledger.ApplyDeltaResult{TransactionID: uuid.New(), NewBalance: 90}, nil)

		gate := NewCostGate(costs, new(mockCostRepository), store, accountRepo, nil)

		result, err := gate.CheckAndDeduct(context.Background(), userID, "image_generation", "sub-123")

		require.NoError(t, err)
		assert.Equal(t, int64(10), result.Credits)
		assert.Equal(t, int64(90), result.NewBalance)
		store.AssertExpectations(t)
	})

	t.Run("rejects unknown workflow types", func(t *testing.T) {
		costs := new(mockCostProvider)
		store := new(mockLedgerStore)

		costs.On("Resolve", mock.Anything, "mystery").Return(nil, workflow.ErrUnknownWorkflowType)

		gate := NewCostGate(costs, new(mockCostRepository), store, new(mockAccountRepository), nil)

		_, err := gate.CheckAndDeduct(context.Background(), uuid.New(), "mystery", "sub-1")

		assert.ErrorIs(t, err, workflow.ErrUnknownWorkflowType)
		store.AssertNotCalled(t, "ApplyDelta")
	})

	t.Run("zero cost workflow passes without a ledger entry", func(t *testing.T) {
		costs := new(mockCostProvider)
		store := new(mockLedgerStore)
		accountRepo := new(mockAccountRepository)
		userID := uuid.New()

		costs.On("Resolve", mock.Anything, "preview").
			Return(&workflow.Cost{WorkflowType: "preview", Credits: 0}, nil)
		account, err := ledger.NewAccount(userID)
		require.NoError(t, err)
		account.Balance = 55
		accountRepo.On("FindByUserID", mock.Anything, userID).Return(account, nil)

		gate := NewCostGate(costs, new(mockCostRepository), store, accountRepo, nil)

		result, err := gate.CheckAndDeduct(context.Background(), userID, "preview", "sub-2")

		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Credits)
		assert.Equal(t, int64(55), result.NewBalance)
		store.AssertNotCalled(t, "ApplyDelta")
	})

	t.Run("translates a rejected debit into insufficient credits", func(t *testing.T) {
		costs := new(mockCostProvider)
		store := new(mockLedgerStore)

		costs.On("Resolve", mock.Anything, "video_render").
			Return(&workflow.Cost{WorkflowType: "video_render", Credits: 40}, nil)
		store.On("ApplyDelta", mock.Anything, mock.Anything).
			Return(nil, ledger.NewInsufficientBalanceError(40, 15))

		gate := NewCostGate(costs, new(mockCostRepository), store, new(mockAccountRepository), nil)

		_, err := gate.CheckAndDeduct(context.Background(), uuid.New(), "video_render", "sub-3")

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_CREDITS", domainErr.Code)
		assert.Equal(t, int64(40), domainErr.Details["required"])
		assert.Equal(t, int64(15), domainErr.Details["available"])
	})
}

func TestCostGate_UpsertCosts(t *testing.T) {
	t.Run("persists entries and invalidates the cache", func(t *testing.T) {
		costs := new(mockCostProvider)
		costRepo := new(mockCostRepository)

		costRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(entries []*workflow.Cost) bool {
			return len(entries) == 2 && entries[0].WorkflowType == "image_generation"
		})).Return(nil)
		costs.On("Invalidate").Return()

		gate := NewCostGate(costs, costRepo, new(mockLedgerStore), new(mockAccountRepository), nil)

		updated, err := gate.UpsertCosts(context.Background(), []CostEntry{
			{WorkflowType: "Image_Generation", Credits: 10, Label: "Image generation"},
			{WorkflowType: "video_render", Credits: 40, Label: "Video render"},
		})

		require.NoError(t, err)
		require.Len(t, updated, 2)
		assert.Equal(t, "image_generation", updated[0].WorkflowType)
		costs.AssertExpectations(t)
		costRepo.AssertExpectations(t)
	})

	t.Run("rejects negative costs before touching storage", func(t *testing.T) {
		costs := new(mockCostProvider)
		costRepo := new(mockCostRepository)

		gate := NewCostGate(costs, costRepo, new(mockLedgerStore), new(mockAccountRepository), nil)

		_, err := gate.UpsertCosts(context.Background(), []CostEntry{
			{WorkflowType: "image_generation", Credits: -5},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
		costRepo.AssertNotCalled(t, "Upsert")
		costs.AssertNotCalled(t, "Invalidate")
	})
}

func TestCostGate_ListCosts(t *testing.T) {
	costs := new(mockCostProvider)
	costs.On("ListAll", mock.Anything).Return([]*workflow.Cost{
		{WorkflowType: "image_generation", Credits: 10},
	}, nil)

	gate := NewCostGate(costs, new(mockCostRepository), new(mockLedgerStore), new(mockAccountRepository), nil)

	table, err := gate.ListCosts(context.Background())

	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, int64(10), table[0].Credits)
}
