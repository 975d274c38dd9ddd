package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appledger "github.com/flowcredit/backend/internal/application/ledger"
	apppromo "github.com/flowcredit/backend/internal/application/promo"
	"github.com/flowcredit/backend/internal/domain/ledger"
	"github.com/flowcredit/backend/internal/domain/promo"
	"github.com/flowcredit/backend/internal/domain/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAdminRouter(t *testing.T, adminID uuid.UUID) (*gin.Engine, *creditTestEnv) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &creditTestEnv{
		store:          new(mockLedgerStore),
		accountRepo:    new(mockAccountRepository),
		txRepo:         new(mockTransactionRepository),
		costs:          new(mockCostProvider),
		costRepo:       new(mockCostRepository),
		voucherRepo:    new(mockVoucherRepository),
		redemptionRepo: new(mockRedemptionRepository),
		redemptions:    new(mockRedemptionStore),
	}

	ledgerService := appledger.NewService(env.store, env.accountRepo, env.txRepo)
	costGate := appledger.NewCostGate(env.costs, env.costRepo, env.store, env.accountRepo, nil)
	voucherService := apppromo.NewVoucherService(env.voucherRepo, nil)

	h := NewAdminHandler(ledgerService, costGate, voucherService)

	router := gin.New()
	group := router.Group("/api/v1/admin", authAs(adminID, "admin"))
	group.POST("/users/:id/credits/adjust", h.AdjustCredits)
	group.GET("/users/:id/credits/consistency", h.GetConsistency)
	group.GET("/workflow-costs", h.ListWorkflowCosts)
	group.PUT("/workflow-costs", h.UpdateWorkflowCosts)
	group.GET("/vouchers", h.ListVouchers)
	group.POST("/vouchers", h.CreateVoucher)
	group.PUT("/vouchers/:id", h.UpdateVoucher)

	return router, env
}

func TestAdminHandler_AdjustCredits(t *testing.T) {
	t.Run("applies a debit adjustment", func(t *testing.T) {
		adminID := uuid.New()
		targetID := uuid.New()
		router, env := setupAdminRouter(t, adminID)

		env.store.On("ApplyDelta", mock.Anything, mock.MatchedBy(func(input ledger.ApplyDeltaInput) bool {
			return input.UserID == targetID &&
				input.Amount == -30 &&
				input.Type == ledger.TransactionTypeAdminAdjustment &&
				input.Reference != nil &&
				input.Reference.ID == adminID.String()
		})).Return(&ledger.ApplyDeltaResult{NewBalance: 70}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users/"+targetID.String()+"/credits/adjust",
			strings.NewReader(`{"amount":-30,"reason":"Chargeback correction"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"new_balance":70`)
		env.store.AssertExpectations(t)
	})

	t.Run("rejects a zero amount", func(t *testing.T) {
		router, env := setupAdminRouter(t, uuid.New())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users/"+uuid.New().String()+"/credits/adjust",
			strings.NewReader(`{"amount":0}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env.store.AssertNotCalled(t, "ApplyDelta")
	})

	t.Run("returns 422 when a debit exceeds the balance", func(t *testing.T) {
		router, env := setupAdminRouter(t, uuid.New())

		env.store.On("ApplyDelta", mock.Anything, mock.Anything).
			Return(nil, ledger.NewInsufficientBalanceError(50, 20))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users/"+uuid.New().String()+"/credits/adjust",
			strings.NewReader(`{"amount":-50,"reason":"clawback"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "INSUFFICIENT_BALANCE")
	})
}

func TestAdminHandler_UpdateWorkflowCosts(t *testing.T) {
	router, env := setupAdminRouter(t, uuid.New())

	env.costRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(costs []*workflow.Cost) bool {
		return len(costs) == 1 && costs[0].WorkflowType == "image_generation" && costs[0].Credits == 12
	})).Return(nil)
	env.costs.On("Invalidate").Return()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/workflow-costs",
		strings.NewReader(`{"costs":[{"workflow_type":"Image_Generation","credits":12,"label":"Image generation"}]}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"workflow_type":"image_generation"`)
	env.costRepo.AssertExpectations(t)
	env.costs.AssertExpectations(t)
}

func TestAdminHandler_Vouchers(t *testing.T) {
	t.Run("creates a voucher", func(t *testing.T) {
		router, env := setupAdminRouter(t, uuid.New())

		env.voucherRepo.On("Create", mock.Anything, mock.MatchedBy(func(v *promo.Voucher) bool {
			return v.Code == "SPRING24" && v.Credits == 50 && v.MaxUses == 100
		})).Return(nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/vouchers",
			strings.NewReader(`{"code":"spring24","credits":50,"max_uses":100}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"SPRING24"`)
	})

	t.Run("deactivates a voucher", func(t *testing.T) {
		router, env := setupAdminRouter(t, uuid.New())

		voucher, err := promo.NewVoucher("SPRING24", 50, 100)
		require.NoError(t, err)
		env.voucherRepo.On("FindByID", mock.Anything, voucher.ID).Return(voucher, nil)
		env.voucherRepo.On("Save", mock.Anything, voucher).Return(nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/vouchers/"+voucher.ID.String(),
			strings.NewReader(`{"is_active":false}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"is_active":false`)
	})
}

func TestAdminHandler_GetConsistency(t *testing.T) {
	router, env := setupAdminRouter(t, uuid.New())
	targetID := uuid.New()

	account, err := ledger.NewAccount(targetID)
	require.NoError(t, err)
	account.Balance = 80
	env.accountRepo.On("FindByUserID", mock.Anything, targetID).Return(account, nil)
	env.txRepo.On("SumByUser", mock.Anything, targetID).Return(int64(75), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users/"+targetID.String()+"/credits/consistency", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"consistent":false`)
}
