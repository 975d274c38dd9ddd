package handler

import (
	"time"

	appledger "github.com/flowcredit/backend/internal/application/ledger"
	apppromo "github.com/flowcredit/backend/internal/application/promo"
	"github.com/flowcredit/backend/internal/domain/promo"
	"github.com/flowcredit/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler exposes the privileged surface: manual adjustments, workflow
// cost management and voucher management. All routes require the admin role.
type AdminHandler struct {
	BaseHandler
	ledgerService  *appledger.Service
	costGate       *appledger.CostGate
	voucherService *apppromo.VoucherService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	ledgerService *appledger.Service,
	costGate *appledger.CostGate,
	voucherService *apppromo.VoucherService,
) *AdminHandler {
	return &AdminHandler{
		ledgerService:  ledgerService,
		costGate:       costGate,
		voucherService: voucherService,
	}
}

// AdjustCreditsRequest carries a manual credit or debit
type AdjustCreditsRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

// AdjustCreditsResponse reports the balance after the adjustment
type AdjustCreditsResponse struct {
	UserID     string `json:"user_id"`
	Amount     int64  `json:"amount"`
	NewBalance int64  `json:"new_balance"`
}

// AdjustCredits applies a manual adjustment to a user's balance. The acting
// admin is recorded on the ledger entry.
func (h *AdminHandler) AdjustCredits(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}
	targetID, err := uuid.Parse(idReq.ID)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req AdjustCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "amount is required and cannot be zero")
		return
	}

	newBalance, err := h.ledgerService.AdminAdjust(c.Request.Context(), adminID, targetID, req.Amount, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AdjustCreditsResponse{
		UserID:     targetID.String(),
		Amount:     req.Amount,
		NewBalance: newBalance,
	})
}

// GetConsistency reports whether a user's balance matches the sum of entries
func (h *AdminHandler) GetConsistency(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}
	targetID, err := uuid.Parse(idReq.ID)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	report, err := h.ledgerService.CheckConsistency(c.Request.Context(), targetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ListWorkflowCosts returns the workflow cost table for admins
func (h *AdminHandler) ListWorkflowCosts(c *gin.Context) {
	costs, err := h.costGate.ListCosts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]CostResponse, 0, len(costs))
	for _, cost := range costs {
		responses = append(responses, CostResponse{
			WorkflowType: cost.WorkflowType,
			Credits:      cost.Credits,
			Label:        cost.Label,
		})
	}
	h.Success(c, responses)
}

// UpdateWorkflowCostsRequest replaces workflow cost entries
type UpdateWorkflowCostsRequest struct {
	Costs []struct {
		WorkflowType string `json:"workflow_type" binding:"required"`
		Credits      int64  `json:"credits"`
		Label        string `json:"label"`
	} `json:"costs" binding:"required,min=1,dive"`
}

// UpdateWorkflowCosts upserts workflow cost entries and refreshes the cache
func (h *AdminHandler) UpdateWorkflowCosts(c *gin.Context) {
	var req UpdateWorkflowCostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "costs must contain at least one entry with a workflow_type")
		return
	}

	entries := make([]appledger.CostEntry, 0, len(req.Costs))
	for _, cost := range req.Costs {
		entries = append(entries, appledger.CostEntry{
			WorkflowType: cost.WorkflowType,
			Credits:      cost.Credits,
			Label:        cost.Label,
		})
	}

	updated, err := h.costGate.UpsertCosts(c.Request.Context(), entries)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]CostResponse, 0, len(updated))
	for _, cost := range updated {
		responses = append(responses, CostResponse{
			WorkflowType: cost.WorkflowType,
			Credits:      cost.Credits,
			Label:        cost.Label,
		})
	}
	h.Success(c, responses)
}

// VoucherResponse represents a voucher for the admin surface
type VoucherResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Credits   int64  `json:"credits"`
	MaxUses   int    `json:"max_uses"`
	UsedCount int    `json:"used_count"`
	IsActive  bool   `json:"is_active"`
	ExpiresAt string `json:"expires_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

// CreateVoucherRequest carries the fields for a new voucher
type CreateVoucherRequest struct {
	Code      string     `json:"code" binding:"required,vouchercode"`
	Credits   int64      `json:"credits" binding:"required,min=1"`
	MaxUses   int        `json:"max_uses" binding:"required,min=1"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// CreateVoucher creates a new voucher
func (h *AdminHandler) CreateVoucher(c *gin.Context) {
	var req CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "code, credits and max_uses are required")
		return
	}

	voucher, err := h.voucherService.CreateVoucher(c.Request.Context(), apppromo.CreateVoucherInput{
		Code:      req.Code,
		Credits:   req.Credits,
		MaxUses:   req.MaxUses,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toVoucherResponse(voucher))
}

// UpdateVoucherRequest carries optional voucher edits
type UpdateVoucherRequest struct {
	Credits   *int64     `json:"credits"`
	MaxUses   *int       `json:"max_uses"`
	IsActive  *bool      `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// UpdateVoucher applies admin edits to a voucher
func (h *AdminHandler) UpdateVoucher(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid voucher ID")
		return
	}
	voucherID, err := uuid.Parse(idReq.ID)
	if err != nil {
		h.BadRequest(c, "Invalid voucher ID")
		return
	}

	var req UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	voucher, err := h.voucherService.UpdateVoucher(c.Request.Context(), voucherID, apppromo.UpdateVoucherInput{
		Credits:   req.Credits,
		MaxUses:   req.MaxUses,
		IsActive:  req.IsActive,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toVoucherResponse(voucher))
}

// ListVouchers returns vouchers newest-first
func (h *AdminHandler) ListVouchers(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	req.Normalize()

	vouchers, total, err := h.voucherService.ListVouchers(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]VoucherResponse, 0, len(vouchers))
	for _, voucher := range vouchers {
		responses = append(responses, toVoucherResponse(voucher))
	}
	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

func toVoucherResponse(voucher *promo.Voucher) VoucherResponse {
	response := VoucherResponse{
		ID:        voucher.ID.String(),
		Code:      voucher.Code,
		Credits:   voucher.Credits,
		MaxUses:   voucher.MaxUses,
		UsedCount: voucher.UsedCount,
		IsActive:  voucher.IsActive,
		CreatedAt: voucher.CreatedAt.Format(time.RFC3339),
	}
	if voucher.ExpiresAt != nil {
		response.ExpiresAt = voucher.ExpiresAt.Format(time.RFC3339)
	}
	return response
}
