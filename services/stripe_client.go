package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Company-KERL/Kerl-backend/models"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
)

// StripeProcessor opens PaymentIntents and verifies Stripe webhooks.
type StripeProcessor struct {
	webhookSecret string
	newIntent     func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

func NewStripeProcessor(secretKey, webhookSecret string) *StripeProcessor {
	stripe.Key = secretKey
	return &StripeProcessor{webhookSecret: webhookSecret, newIntent: paymentintent.New}
}

func (p *StripeProcessor) Name() string { return ProviderStripe }

func (p *StripeProcessor) CreateOrder(ctx context.Context, req ProcessorOrderRequest) (*ProcessorOrder, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID)
	params.AddMetadata("user_id", req.UserID)
	params.AddMetadata("receipt", req.Receipt)

	pi, err := p.newIntent(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent create failed: %w", err)
	}
	return &ProcessorOrder{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (p *StripeProcessor) ParseWebhook(payload []byte, signatureHeader string) (*WebhookOutcome, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, err
	}

	var status string
	switch string(event.Type) {
	case "payment_intent.succeeded":
		status = models.PaymentStatusCompleted
	case "payment_intent.payment_failed":
		status = models.PaymentStatusFailed
	default:
		return nil, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent: %w", err)
	}

	outcome := &WebhookOutcome{ProcessorOrderID: pi.ID, Status: status}
	if pi.LatestCharge != nil {
		outcome.ProcessorPaymentID = pi.LatestCharge.ID
	}
	return outcome, nil
}
