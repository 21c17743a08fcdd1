package models

import "time"

// Domain event types.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
	EventPaymentCompleted   = "payment.completed"
	EventPaymentFailed      = "payment.failed"
)

// Event is the envelope published to the event bus.
type Event struct {
	Type      string      `json:"type"`
	Key       string      `json:"key"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type OrderEvent struct {
	OrderID       string  `json:"orderId"`
	UserID        string  `json:"userId"`
	TotalPrice    float64 `json:"totalPrice"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	ItemCount     int     `json:"itemCount"`
}

type PaymentEvent struct {
	PaymentID          string `json:"paymentId"`
	OrderID            string `json:"orderId"`
	UserID             string `json:"userId"`
	Provider           string `json:"provider"`
	ProcessorOrderID   string `json:"processorOrderId"`
	ProcessorPaymentID string `json:"processorPaymentId,omitempty"`
	Amount             int64  `json:"amount"`
	Currency           string `json:"currency"`
	Status             string `json:"status"`
}
