package handler

import (
	"time"

	appledger "github.com/flowcredit/backend/internal/application/ledger"
	apppromo "github.com/flowcredit/backend/internal/application/promo"
	"github.com/flowcredit/backend/internal/domain/ledger"
	"github.com/flowcredit/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreditHandler exposes the credit account surface: balance, transaction
// history, workflow charges and voucher redemption.
type CreditHandler struct {
	BaseHandler
	ledgerService     *appledger.Service
	costGate          *appledger.CostGate
	redemptionService *apppromo.RedemptionService
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(
	ledgerService *appledger.Service,
	costGate *appledger.CostGate,
	redemptionService *apppromo.RedemptionService,
) *CreditHandler {
	return &CreditHandler{
		ledgerService:     ledgerService,
		costGate:          costGate,
		redemptionService: redemptionService,
	}
}

// AccountResponse represents a credit account
type AccountResponse struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

// CreateAccount provisions a credit account for the authenticated user,
// granting the signup bonus when one is configured.
func (h *CreditHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	account, err := h.ledgerService.CreateAccount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, AccountResponse{
		UserID:  account.UserID.String(),
		Balance: account.Balance,
	})
}

// GetBalance returns the authenticated user's credit balance
func (h *CreditHandler) GetBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AccountResponse{
		UserID:  userID.String(),
		Balance: balance,
	})
}

// TransactionResponse represents one ledger entry
type TransactionResponse struct {
	ID            string `json:"id"`
	Amount        int64  `json:"amount"`
	Type          string `json:"type"`
	Description   string `json:"description"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// ListTransactionsRequest carries history filters
type ListTransactionsRequest struct {
	dto.ListRequest
	Type string `form:"type"`
	From string `form:"from"`
	To   string `form:"to"`
}

// ListTransactions returns the authenticated user's ledger entries newest-first
func (h *CreditHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	req.Normalize()

	filter := ledger.TransactionFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Type != "" {
		txType := ledger.TransactionType(req.Type)
		if !txType.IsValid() {
			h.BadRequest(c, "Invalid transaction type")
			return
		}
		filter.Type = &txType
	}
	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			h.BadRequest(c, "Invalid 'from' timestamp, expected RFC3339")
			return
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			h.BadRequest(c, "Invalid 'to' timestamp, expected RFC3339")
			return
		}
		filter.To = &to
	}

	entries, total, err := h.ledgerService.ListTransactions(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]TransactionResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, toTransactionResponse(entry))
	}

	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// ChargeRequest asks to price and deduct a workflow submission
type ChargeRequest struct {
	WorkflowType string `json:"workflow_type" binding:"required"`
	SubmissionID string `json:"submission_id" binding:"required"`
}

// ChargeResponse reports a successful workflow charge
type ChargeResponse struct {
	WorkflowType  string `json:"workflow_type"`
	Credits       int64  `json:"credits"`
	NewBalance    int64  `json:"new_balance"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// Charge prices a workflow type and atomically deducts its cost. The workflow
// is only dispatched by the caller after this returns success.
func (h *CreditHandler) Charge(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "workflow_type and submission_id are required")
		return
	}

	result, err := h.costGate.CheckAndDeduct(c.Request.Context(), userID, req.WorkflowType, req.SubmissionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := ChargeResponse{
		WorkflowType: result.WorkflowType,
		Credits:      result.Credits,
		NewBalance:   result.NewBalance,
	}
	if result.TransactionID != uuid.Nil {
		response.TransactionID = result.TransactionID.String()
	}
	h.Success(c, response)
}

// CostResponse represents one workflow cost entry
type CostResponse struct {
	WorkflowType string `json:"workflow_type"`
	Credits      int64  `json:"credits"`
	Label        string `json:"label,omitempty"`
}

// ListCosts returns the workflow cost table
func (h *CreditHandler) ListCosts(c *gin.Context) {
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

// RedeemRequest carries a voucher code
type RedeemRequest struct {
	Code string `json:"code" binding:"required,vouchercode"`
}

// RedeemResponse reports a successful redemption
type RedeemResponse struct {
	CreditsAdded int64 `json:"credits_added"`
	NewBalance   int64 `json:"new_balance"`
}

// RedeemVoucher redeems a voucher code for the authenticated user
func (h *CreditHandler) RedeemVoucher(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "code is required")
		return
	}

	result, err := h.redemptionService.Redeem(c.Request.Context(), userID, req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RedeemResponse{
		CreditsAdded: result.CreditsAdded,
		NewBalance:   result.NewBalance,
	})
}

func toTransactionResponse(entry *ledger.Transaction) TransactionResponse {
	response := TransactionResponse{
		ID:          entry.ID.String(),
		Amount:      entry.Amount,
		Type:        entry.Type.String(),
		Description: entry.Description,
		CreatedAt:   entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.Reference != nil {
		response.ReferenceType = string(entry.Reference.Type)
		response.ReferenceID = entry.Reference.ID
	}
	return response
}
