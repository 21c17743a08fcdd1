package controllers

import (
	"net/http"

	apperrors "github.com/Company-KERL/Kerl-backend/common/errors"
	"github.com/Company-KERL/Kerl-backend/models"
	"github.com/Company-KERL/Kerl-backend/services"
	"github.com/gin-gonic/gin"
)

// StripeSignatureHeader carries the signature of Stripe webhook deliveries.
const StripeSignatureHeader = "Stripe-Signature"

// maxWebhookBytes bounds webhook payloads read into memory.
const maxWebhookBytes = 64 << 10

// PaymentController handles payment creation, verification and webhooks.
type PaymentController struct {
	paymentService services.PaymentService
}

func NewPaymentController(paymentService services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

// CreatePayment handles POST /payments.
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var req models.CreatePaymentRequest
	if !bindJSON(c, &req, "orderId is required") {
		return
	}
	userID, ok := sessionUser(c, "")
	if !ok {
		return
	}

	payment, err := pc.paymentService.CreatePayment(c.Request.Context(), userID, &req)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Payment created",
		"razorpayOrderId": payment.ProcessorOrderID,
		"payment":         payment,
	})
}

// UpdatePayment handles PUT /payments, the checkout callback carrying the
// processor's signature.
func (pc *PaymentController) UpdatePayment(c *gin.Context) {
	var req models.UpdatePaymentRequest
	if !bindJSON(c, &req, "razorpayOrderId, razorpayPaymentId, razorpaySignature and orderId are required") {
		return
	}
	userID, ok := sessionUser(c, req.UserID)
	if !ok {
		return
	}

	payment, order, err := pc.paymentService.UpdatePayment(c.Request.Context(), userID, &req)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment updated successfully",
		"payment": payment,
		"order":   order,
	})
}

// GetPayment handles GET /payments/:orderId.
func (pc *PaymentController) GetPayment(c *gin.Context) {
	userID, ok := sessionUser(c, "")
	if !ok {
		return
	}

	payment, err := pc.paymentService.GetPayment(c.Request.Context(), userID, c.Param("orderId"))
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment retrieved", "payment": payment})
}

// StripeWebhook handles POST /payments/webhook/stripe. It is not session
// protected; the payload signature authenticates the sender.
func (pc *PaymentController) StripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes)
	payload, err := c.GetRawData()
	if err != nil {
		abort(c, apperrors.New(http.StatusBadRequest, "Invalid webhook", err))
		return
	}

	if err := pc.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader(StripeSignatureHeader)); err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Webhook received"})
}
