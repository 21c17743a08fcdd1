package services

import "context"

const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
)

// ProcessorOrderRequest describes the processor-side order to open for a
// payment attempt. Amount is in minor units.
type ProcessorOrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	OrderID  string
	UserID   string
}

// ProcessorOrder is what the processor handed back. ClientSecret is only
// set by processors that confirm on the client (Stripe).
type ProcessorOrder struct {
	ID           string
	ClientSecret string
}

// PaymentProcessor opens payment intents with an external gateway.
type PaymentProcessor interface {
	Name() string
	CreateOrder(ctx context.Context, req ProcessorOrderRequest) (*ProcessorOrder, error)
}

// WebhookOutcome is a processor notification that a payment reached a
// terminal state.
type WebhookOutcome struct {
	ProcessorOrderID   string
	ProcessorPaymentID string
	Status             string
}

// WebhookParser verifies and decodes processor webhooks. A nil outcome
// with a nil error means the event is not one we act on.
type WebhookParser interface {
	ParseWebhook(payload []byte, signatureHeader string) (*WebhookOutcome, error)
}
