package services

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

type razorpayOrders interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayProcessor opens Razorpay orders and verifies checkout signatures.
type RazorpayProcessor struct {
	orders razorpayOrders
}

func NewRazorpayProcessor(keyID, keySecret string) *RazorpayProcessor {
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayProcessor{orders: client.Order}
}

func (p *RazorpayProcessor) Name() string { return ProviderRazorpay }

func (p *RazorpayProcessor) CreateOrder(_ context.Context, req ProcessorOrderRequest) (*ProcessorOrder, error) {
	body, err := p.orders.Create(map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes": map[string]interface{}{
			"order_id": req.OrderID,
			"user_id":  req.UserID,
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create failed: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order create returned no id")
	}
	return &ProcessorOrder{ID: id}, nil
}

// VerifyCheckoutSignature checks hex(HMAC-SHA256(secret, orderID|paymentID))
// against signature.
func VerifyCheckoutSignature(secret, processorOrderID, processorPaymentID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return utils.VerifySignature([]byte(processorOrderID+"|"+processorPaymentID), signature, secret)
}
