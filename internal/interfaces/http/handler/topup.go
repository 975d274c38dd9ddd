package handler

import (
	"io"
	"time"

	apptopup "github.com/flowcredit/backend/internal/application/topup"
	"github.com/flowcredit/backend/internal/domain/topup"
	"github.com/flowcredit/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TopUpHandler exposes the top-up order surface: package catalog, order
// creation, status polling and the gateway webhook.
type TopUpHandler struct {
	BaseHandler
	topupService *apptopup.Service
	logger       *zap.Logger
}

// NewTopUpHandler creates a new TopUpHandler
func NewTopUpHandler(topupService *apptopup.Service, logger *zap.Logger) *TopUpHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TopUpHandler{
		topupService: topupService,
		logger:       logger,
	}
}

// PackageResponse represents one purchasable credit package
type PackageResponse struct {
	ID       string `json:"id"`
	Credits  int64  `json:"credits"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Label    string `json:"label,omitempty"`
}

// ListPackages returns the configured package catalog
func (h *TopUpHandler) ListPackages(c *gin.Context) {
	packages := h.topupService.ListPackages()

	responses := make([]PackageResponse, 0, len(packages))
	for _, pkg := range packages {
		responses = append(responses, PackageResponse{
			ID:       pkg.ID,
			Credits:  pkg.Credits,
			Price:    pkg.Price.StringFixed(2),
			Currency: pkg.Currency,
			Label:    pkg.Label,
		})
	}
	h.Success(c, responses)
}

// CreateOrderRequest selects the package to purchase
type CreateOrderRequest struct {
	PackageID string `json:"package_id" binding:"required"`
}

// OrderResponse represents a top-up order. NewBalance is present only when
// the order is completed.
type OrderResponse struct {
	ID          string `json:"id"`
	PackageID   string `json:"package_id"`
	Credits     int64  `json:"credits"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	NewBalance  *int64 `json:"new_balance,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// CreateOrder creates a pending order and returns the checkout URL
func (h *TopUpHandler) CreateOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "package_id is required")
		return
	}

	result, err := h.topupService.CreateOrder(c.Request.Context(), userID, req.PackageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := toOrderResponse(result.Order)
	response.CheckoutURL = result.CheckoutURL
	h.Created(c, response)
}

// GetOrder returns the current state of the authenticated user's order,
// reconciling a still-pending order against the gateway first.
func (h *TopUpHandler) GetOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	orderID, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	status, err := h.topupService.GetStatus(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := toOrderResponse(status.Order)
	response.NewBalance = status.NewBalance
	h.Success(c, response)
}

// ListOrders returns the authenticated user's orders newest-first
func (h *TopUpHandler) ListOrders(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	req.Normalize()

	orders, total, err := h.topupService.ListOrders(c.Request.Context(), userID, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, toOrderResponse(order))
	}
	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// StripeWebhook receives gateway notifications. Unauthenticated; the payload
// signature is the authentication. Returns 200 for everything handled,
// including duplicates and events for orders in terminal states; errors keep
// their own status codes and the gateway retries them.
func (h *TopUpHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Unable to read request body")
		return
	}
	signature := c.GetHeader("Stripe-Signature")

	result, err := h.topupService.HandleCallback(c.Request.Context(), payload, signature)
	if err != nil {
		// Signature failures map to 400 so the gateway knows the delivery was
		// rejected; anything else keeps its own status so operators can tell a
		// store fault from a forged payload.
		h.logger.Warn("Gateway callback not processed",
			zap.Error(err))
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

func toOrderResponse(order *topup.Order) OrderResponse {
	response := OrderResponse{
		ID:        order.ID.String(),
		PackageID: order.PackageID,
		Credits:   order.Credits,
		Amount:    order.Amount.StringFixed(2),
		Currency:  order.Currency,
		Status:    order.Status.String(),
		CreatedAt: order.CreatedAt.Format(time.RFC3339),
	}
	if order.CompletedAt != nil {
		response.CompletedAt = order.CompletedAt.Format(time.RFC3339)
	}
	return response
}
