package topup

import (
	"context"
)

// CreateCheckoutRequest asks the gateway for a hosted checkout session.
type CreateCheckoutRequest struct {
	Order       *Order
	SuccessURL  string
	CancelURL   string
	Description string
}

// CreateCheckoutResponse carries the gateway session handle and the URL the
// user is redirected to.
type CreateCheckoutResponse struct {
	GatewayReference string
	CheckoutURL      string
}

// QueryResult is the gateway's answer to a status verification call.
type QueryResult struct {
	Outcome Outcome
}

// CallbackEvent is a verified, parsed gateway notification.
type CallbackEvent struct {
	// EventID uniquely identifies the notification for deduplication
	EventID string
	// GatewayReference identifies the checkout session the event concerns
	GatewayReference string
	// OrderID is our order ID as echoed back by the gateway, when present
	OrderID string
	// Outcome is the verified payment result carried by the event
	Outcome Outcome
	// Relevant is false for event types this service does not act on
	Relevant bool
}

// PaymentGateway is the port to the external payment provider. Calls go over
// the network with a client-side timeout and are never made while holding a
// database transaction; verification and commit are separate phases.
type PaymentGateway interface {
	// Name identifies the gateway (recorded as the order payment method)
	Name() string
	// CreateCheckout creates a hosted checkout session for a pending order
	CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*CreateCheckoutResponse, error)
	// QueryPayment verifies the current payment state of a checkout session
	QueryPayment(ctx context.Context, gatewayReference string) (*QueryResult, error)
	// VerifyCallback authenticates a raw webhook payload and parses it.
	// Returns an error when the signature is invalid.
	VerifyCallback(payload []byte, signature string) (*CallbackEvent, error)
}
