package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flowcredit/backend/internal/domain/topup"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// orderIDMetadataKey is the metadata key carrying our order ID through Stripe
const orderIDMetadataKey = "order_id"

// StripeGateway implements topup.PaymentGateway on Stripe Checkout. Each
// pending order gets a hosted checkout session; reconciliation reads the
// session state back, either from a webhook event or by querying Stripe.
type StripeGateway struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(config *StripeConfig, logger *zap.Logger) (*StripeGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.InitStripeClient()

	return &StripeGateway{
		config: config,
		logger: logger,
	}, nil
}

var _ topup.PaymentGateway = (*StripeGateway)(nil)

// Name identifies the gateway
func (g *StripeGateway) Name() string {
	return "stripe"
}

// CreateCheckout creates a hosted checkout session for a pending order
func (g *StripeGateway) CreateCheckout(ctx context.Context, req topup.CreateCheckoutRequest) (*topup.CreateCheckoutResponse, error) {
	order := req.Order

	unitAmount, err := toMinorUnits(order.Amount)
	if err != nil {
		return nil, fmt.Errorf("stripe: %w", err)
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("%d credits", order.Credits)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(order.ID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(order.Currency)),
					UnitAmount: stripe.Int64(unitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.Metadata = map[string]string{
		orderIDMetadataKey: order.ID.String(),
	}

	sess, err := session.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe checkout session",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	g.logger.Info("Created Stripe checkout session",
		zap.String("order_id", order.ID.String()),
		zap.String("session_id", sess.ID))

	return &topup.CreateCheckoutResponse{
		GatewayReference: sess.ID,
		CheckoutURL:      sess.URL,
	}, nil
}

// QueryPayment verifies the current payment state of a checkout session
func (g *StripeGateway) QueryPayment(ctx context.Context, gatewayReference string) (*topup.QueryResult, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(gatewayReference, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to get checkout session: %w", err)
	}

	return &topup.QueryResult{Outcome: sessionOutcome(sess)}, nil
}

// VerifyCallback authenticates a raw webhook payload and parses it
func (g *StripeGateway) VerifyCallback(payload []byte, signature string) (*topup.CallbackEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.config.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("stripe: webhook signature verification failed: %w", err)
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded,
		stripe.EventTypeCheckoutSessionAsyncPaymentFailed,
		stripe.EventTypeCheckoutSessionExpired:
	default:
		g.logger.Debug("Ignoring Stripe event type", zap.String("event_type", string(event.Type)))
		return &topup.CallbackEvent{EventID: event.ID, Relevant: false}, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("stripe: failed to unmarshal checkout session: %w", err)
	}

	return &topup.CallbackEvent{
		EventID:          event.ID,
		GatewayReference: sess.ID,
		OrderID:          sess.Metadata[orderIDMetadataKey],
		Outcome:          sessionOutcome(&sess),
		Relevant:         true,
	}, nil
}

// sessionOutcome maps a checkout session to a reconciliation outcome. A
// session that is neither paid nor expired is inconclusive and leaves the
// order pending.
func sessionOutcome(sess *stripe.CheckoutSession) topup.Outcome {
	outcome := topup.Outcome{
		PaymentMethod: "stripe",
		AmountMinor:   sess.AmountTotal,
		Currency:      string(sess.Currency),
	}

	if sess.PaymentIntent != nil {
		outcome.PaymentReference = sess.PaymentIntent.ID
	}

	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		outcome.Succeeded = true
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		outcome.Failed = true
	}

	return outcome
}

// toMinorUnits converts a decimal amount to the gateway's integer minor units.
// Rejects amounts with sub-cent precision rather than rounding money silently.
func toMinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Mul(decimal.NewFromInt(100))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has sub-cent precision", amount.String())
	}
	return minor.IntPart(), nil
}
