package services

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/Company-KERL/Kerl-backend/common/errors"
	"github.com/Company-KERL/Kerl-backend/models"
	aws_pkg "github.com/Company-KERL/Kerl-backend/pkg/aws"
	"github.com/Company-KERL/Kerl-backend/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type PaymentService interface {
	CreatePayment(ctx context.Context, userID primitive.ObjectID, req *models.CreatePaymentRequest) (*models.Payment, error)
	UpdatePayment(ctx context.Context, userID primitive.ObjectID, req *models.UpdatePaymentRequest) (*models.Payment, *models.Order, error)
	GetPayment(ctx context.Context, userID primitive.ObjectID, orderID string) (*models.Payment, error)
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error
}

type paymentServiceImpl struct {
	payments        repository.PaymentRepository
	orders          repository.OrderRepository
	carts           repository.CartRepository
	processor       PaymentProcessor
	webhooks        WebhookParser
	signatureSecret string
	currency        string
	events          EventPublisher
	metrics         Metrics
	logger          *zap.Logger
}

// PaymentConfig carries the processor wiring of the payment service.
type PaymentConfig struct {
	Processor       PaymentProcessor
	Webhooks        WebhookParser
	SignatureSecret string
	Currency        string
}

func NewPaymentService(
	payments repository.PaymentRepository,
	orders repository.OrderRepository,
	carts repository.CartRepository,
	cfg PaymentConfig,
	events EventPublisher,
	metrics Metrics,
	logger *zap.Logger,
) PaymentService {
	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}
	return &paymentServiceImpl{
		payments:        payments,
		orders:          orders,
		carts:           carts,
		processor:       cfg.Processor,
		webhooks:        cfg.Webhooks,
		signatureSecret: cfg.SignatureSecret,
		currency:        currency,
		events:          events,
		metrics:         metrics,
		logger:          logger,
	}
}

var errPaymentNotFound = apperrors.NotFound("Payment not found")

// CreatePayment opens a processor order for orderId and records a pending
// payment attempt. Without a totalPrice the order's total is charged.
func (s *paymentServiceImpl) CreatePayment(ctx context.Context, userID primitive.ObjectID, req *models.CreatePaymentRequest) (*models.Payment, error) {
	order, err := s.ownedOrder(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentStatusCompleted {
		return nil, apperrors.Conflict("Order is already paid")
	}

	total := order.TotalPrice
	if req.TotalPrice != nil {
		total = *req.TotalPrice
	}
	amount := ToMinorUnits(total)
	if amount <= 0 {
		return nil, apperrors.Validation("Payment amount must be positive")
	}

	receipt := strings.ReplaceAll(uuid.NewString(), "-", "")
	processed, err := s.processor.CreateOrder(ctx, ProcessorOrderRequest{
		Amount:   amount,
		Currency: s.currency,
		Receipt:  receipt,
		OrderID:  order.ID.Hex(),
		UserID:   order.UserID.Hex(),
	})
	if err != nil {
		return nil, apperrors.External("Failed to create "+s.processor.Name()+" order", err)
	}

	payment := &models.Payment{
		OrderID:          order.ID,
		UserID:           order.UserID,
		Provider:         s.processor.Name(),
		ProcessorOrderID: processed.ID,
		ClientSecret:     processed.ClientSecret,
		Amount:           amount,
		Currency:         s.currency,
		Receipt:          receipt,
		Status:           models.PaymentStatusPending,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, apperrors.Internal("Error creating payment", err)
	}

	recordCount(s.metrics, aws_pkg.MetricPaymentCreated, map[string]string{"Provider": payment.Provider})
	s.logger.Info("Payment created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("processor_order_id", processed.ID),
		zap.Int64("amount", amount),
	)
	return payment, nil
}

// UpdatePayment finalises the latest attempt for an order from a checkout
// callback. A signature mismatch fails both payment and order.
func (s *paymentServiceImpl) UpdatePayment(ctx context.Context, userID primitive.ObjectID, req *models.UpdatePaymentRequest) (*models.Payment, *models.Order, error) {
	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return nil, nil, errPaymentNotFound
	}

	payment, err := s.payments.FindByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, errPaymentNotFound
	}
	if err != nil {
		return nil, nil, apperrors.Internal("Error updating payment", err)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, errOrderNotFound
	}
	if err != nil {
		return nil, nil, apperrors.Internal("Error updating payment", err)
	}
	if order.UserID != userID {
		return nil, nil, apperrors.ErrUnauthorized
	}
	if payment.IsTerminal() {
		return nil, nil, apperrors.Validation("Payment has already been " + payment.Status)
	}

	valid := req.RazorpayOrderID == payment.ProcessorOrderID &&
		VerifyCheckoutSignature(s.signatureSecret, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if !valid {
		if _, err := s.finalize(ctx, payment, models.PaymentStatusFailed); err != nil {
			return nil, nil, err
		}
		s.logger.Warn("Payment signature mismatch",
			zap.String("order_id", req.OrderID),
			zap.String("processor_order_id", req.RazorpayOrderID),
		)
		return nil, nil, apperrors.Validation("Invalid signature")
	}

	payment.ProcessorPaymentID = req.RazorpayPaymentID
	payment.Signature = req.RazorpaySignature
	order, err = s.finalize(ctx, payment, models.PaymentStatusCompleted)
	if err != nil {
		return nil, nil, err
	}

	deleted, err := s.carts.DeleteByUserID(ctx, order.UserID)
	if err != nil || !deleted {
		return nil, nil, apperrors.Internal("Error clearing cart after payment", err)
	}
	return payment, order, nil
}

func (s *paymentServiceImpl) GetPayment(ctx context.Context, userID primitive.ObjectID, orderID string) (*models.Payment, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, errPaymentNotFound
	}
	payment, err := s.payments.FindByOrderID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errPaymentNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Error retrieving payment", err)
	}
	if payment.UserID != userID {
		return nil, apperrors.ErrUnauthorized
	}
	return payment, nil
}

// HandleWebhook applies a processor notification. Repeated deliveries for
// a finished payment are acknowledged without changes.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	if s.webhooks == nil {
		return apperrors.NotFound("Webhooks are not enabled")
	}

	outcome, err := s.webhooks.ParseWebhook(payload, signatureHeader)
	if err != nil {
		s.logger.Warn("Webhook verification failed", zap.Error(err))
		return apperrors.Validation("Invalid webhook")
	}
	if outcome == nil {
		return nil
	}

	payment, err := s.payments.FindByProcessorOrderID(ctx, outcome.ProcessorOrderID)
	if errors.Is(err, repository.ErrNotFound) {
		return errPaymentNotFound
	}
	if err != nil {
		return apperrors.Internal("Error updating payment", err)
	}
	if payment.IsTerminal() {
		s.logger.Info("Skipping duplicate payment webhook",
			zap.String("processor_order_id", outcome.ProcessorOrderID),
			zap.String("status", payment.Status),
		)
		return nil
	}

	if outcome.ProcessorPaymentID != "" {
		payment.ProcessorPaymentID = outcome.ProcessorPaymentID
	}
	order, err := s.finalize(ctx, payment, outcome.Status)
	if err != nil {
		return err
	}

	if outcome.Status == models.PaymentStatusCompleted {
		if deleted, err := s.carts.DeleteByUserID(ctx, order.UserID); err != nil || !deleted {
			s.logger.Warn("No cart cleared after webhook payment",
				zap.String("user_id", order.UserID.Hex()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// finalize moves payment and its order to status and announces it.
func (s *paymentServiceImpl) finalize(ctx context.Context, payment *models.Payment, status string) (*models.Order, error) {
	payment.Status = status
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, apperrors.Internal("Error updating payment", err)
	}

	order, err := s.orders.UpdatePaymentStatus(ctx, payment.OrderID, status)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errOrderNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Error updating payment", err)
	}

	eventType, metric := models.EventPaymentCompleted, aws_pkg.MetricPaymentSucceeded
	if status == models.PaymentStatusFailed {
		eventType, metric = models.EventPaymentFailed, aws_pkg.MetricPaymentFailed
	}
	publishEvent(ctx, s.events, s.logger, NewEvent(eventType, payment.OrderID.Hex(), models.PaymentEvent{
		PaymentID:          payment.ID.Hex(),
		OrderID:            payment.OrderID.Hex(),
		UserID:             payment.UserID.Hex(),
		Provider:           payment.Provider,
		ProcessorOrderID:   payment.ProcessorOrderID,
		ProcessorPaymentID: payment.ProcessorPaymentID,
		Amount:             payment.Amount,
		Currency:           payment.Currency,
		Status:             status,
	}))
	recordCount(s.metrics, metric, map[string]string{"Provider": payment.Provider})
	return order, nil
}

func (s *paymentServiceImpl) ownedOrder(ctx context.Context, userID primitive.ObjectID, orderID string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, errOrderNotFound
	}
	order, err := s.orders.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errOrderNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Error creating payment", err)
	}
	if order.UserID != userID {
		return nil, apperrors.ErrUnauthorized
	}
	return order, nil
}
