package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/Company-KERL/Kerl-backend/common/errors"
	"github.com/Company-KERL/Kerl-backend/models"
	aws_pkg "github.com/Company-KERL/Kerl-backend/pkg/aws"
	"github.com/Company-KERL/Kerl-backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// IdempotencyTTL is how long an Idempotency-Key replays its order.
const IdempotencyTTL = 24 * time.Hour

type OrderService interface {
	// CreateOrder reports replayed=true when idempotencyKey matched an
	// earlier order, which is returned unchanged.
	CreateOrder(ctx context.Context, userID primitive.ObjectID, req *models.CreateOrderRequest, idempotencyKey string) (order *models.Order, replayed bool, err error)
	GetUserOrders(ctx context.Context, userID primitive.ObjectID) ([]models.OrderView, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
	GetAddresses(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error)
}

type orderServiceImpl struct {
	orders      repository.OrderRepository
	products    repository.ProductRepository
	idempotency repository.IdempotencyStore
	cache       *CacheManager
	events      EventPublisher
	metrics     Metrics
	logger      *zap.Logger
}

// NewOrderService wires order placement. idempotency, cache and events may
// be nil.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	idempotency repository.IdempotencyStore,
	cache *CacheManager,
	events EventPublisher,
	metrics Metrics,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orders:      orders,
		products:    products,
		idempotency: idempotency,
		cache:       cache,
		events:      events,
		metrics:     metrics,
		logger:      logger,
	}
}

var errOrderNotFound = apperrors.NotFound("Order not found")

// reservation is stock taken from one product for one order line.
type reservation struct {
	productID primitive.ObjectID
	quantity  int
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, userID primitive.ObjectID, req *models.CreateOrderRequest, idempotencyKey string) (*models.Order, bool, error) {
	if order, ok := s.replay(ctx, userID, idempotencyKey); ok {
		return order, true, nil
	}

	if len(req.Items) == 0 {
		return nil, false, apperrors.Validation("Order must contain at least one item")
	}
	if !addressComplete(req.Address) {
		return nil, false, apperrors.Validation("Address must include street, city, state and zip")
	}

	items, names, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, false, err
	}

	reserved, err := s.reserveStock(ctx, items, names)
	if err != nil {
		recordCount(s.metrics, aws_pkg.MetricOrdersRejected, nil)
		return nil, false, err
	}

	order := &models.Order{
		UserID:        userID,
		Items:         items,
		TotalPrice:    Total(items),
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		Address:       req.Address,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.releaseStock(ctx, reserved)
		return nil, false, apperrors.Internal("Error creating order", err)
	}

	for _, r := range reserved {
		s.cache.InvalidateProduct(ctx, r.productID.Hex())
	}
	s.remember(ctx, userID, idempotencyKey, order.ID)

	publishEvent(ctx, s.events, s.logger, NewEvent(models.EventOrderCreated, order.ID.Hex(), orderEvent(order)))
	recordCount(s.metrics, aws_pkg.MetricOrdersCreated, nil)
	s.logger.Info("Order created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.Float64("total_price", order.TotalPrice),
	)
	return order, false, nil
}

// priceItems validates every requested line and snapshots its price from
// the product's per-size table.
func (s *orderServiceImpl) priceItems(ctx context.Context, reqItems []models.OrderItemRequest) ([]models.LineItem, map[primitive.ObjectID]string, error) {
	ids := make([]primitive.ObjectID, 0, len(reqItems))
	for _, item := range reqItems {
		if item.Quantity < 1 {
			return nil, nil, apperrors.Validation("Quantity must be at least 1")
		}
		if item.SelectedSizeIndex == nil {
			return nil, nil, apperrors.Validation("Selected size is required")
		}
		oid, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, nil, productMissing(item.ProductID)
		}
		ids = append(ids, oid)
	}

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, apperrors.Internal("Error creating order", err)
	}

	items := make([]models.LineItem, 0, len(reqItems))
	names := make(map[primitive.ObjectID]string, len(found))
	for i, item := range reqItems {
		product, ok := found[ids[i]]
		if !ok {
			return nil, nil, productMissing(item.ProductID)
		}
		unitPrice, ok := product.PriceFor(*item.SelectedSizeIndex)
		if !ok {
			return nil, nil, apperrors.Validation("Invalid size selection for product: " + product.Name)
		}
		names[product.ID] = product.Name
		items = append(items, models.LineItem{
			ProductID:         product.ID,
			Quantity:          item.Quantity,
			Price:             LinePrice(unitPrice, item.Quantity),
			SelectedSizeIndex: *item.SelectedSizeIndex,
		})
	}
	return items, names, nil
}

// reserveStock takes stock line by line with a conditional decrement. On
// the first failure every earlier reservation is released, so a rejected
// order leaves stock untouched.
func (s *orderServiceImpl) reserveStock(ctx context.Context, items []models.LineItem, names map[primitive.ObjectID]string) ([]reservation, error) {
	reserved := make([]reservation, 0, len(items))
	for _, item := range items {
		err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err == nil {
			reserved = append(reserved, reservation{productID: item.ProductID, quantity: item.Quantity})
			continue
		}

		s.releaseStock(ctx, reserved)
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, apperrors.InsufficientStock(names[item.ProductID])
		case errors.Is(err, repository.ErrNotFound):
			return nil, productMissing(item.ProductID.Hex())
		default:
			return nil, apperrors.Internal("Error creating order", err)
		}
	}
	return reserved, nil
}

// releaseStock gives reserved units back. It runs on a fresh context so a
// cancelled request still restores stock.
func (s *orderServiceImpl) releaseStock(ctx context.Context, reserved []reservation) {
	if len(reserved) == 0 {
		return
	}
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	for _, r := range reserved {
		if err := s.products.IncrementStock(releaseCtx, r.productID, r.quantity); err != nil {
			s.logger.Error("Failed to release reserved stock",
				zap.String("product_id", r.productID.Hex()),
				zap.Int("quantity", r.quantity),
				zap.Error(err),
			)
		}
	}
}

func (s *orderServiceImpl) replay(ctx context.Context, userID primitive.ObjectID, key string) (*models.Order, bool) {
	if s.idempotency == nil || key == "" {
		return nil, false
	}
	orderID, err := s.idempotency.Get(ctx, idempotencyScope(userID, key))
	if err != nil {
		s.logger.Warn("Idempotency lookup failed", zap.Error(err))
		return nil, false
	}
	if orderID == "" {
		return nil, false
	}
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, false
	}
	order, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		return nil, false
	}
	return order, true
}

func (s *orderServiceImpl) remember(ctx context.Context, userID primitive.ObjectID, key string, orderID primitive.ObjectID) {
	if s.idempotency == nil || key == "" {
		return
	}
	if err := s.idempotency.Set(ctx, idempotencyScope(userID, key), orderID.Hex(), IdempotencyTTL); err != nil {
		s.logger.Warn("Failed to store idempotency key", zap.String("order_id", orderID.Hex()), zap.Error(err))
	}
}

// GetUserOrders returns the user's orders with products attached. No
// orders is an empty slice, not an error.
func (s *orderServiceImpl) GetUserOrders(ctx context.Context, userID primitive.ObjectID) ([]models.OrderView, error) {
	orders, err := s.orders.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Error retrieving orders", err)
	}

	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		items, err := resolveLineItems(ctx, s.products, o.Items)
		if err != nil {
			return nil, apperrors.Internal("Error retrieving orders", err)
		}
		views = append(views, models.OrderView{
			ID:            o.ID,
			UserID:        o.UserID,
			Items:         items,
			TotalPrice:    o.TotalPrice,
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
			Address:       o.Address,
			CreatedAt:     o.CreatedAt,
			UpdatedAt:     o.UpdatedAt,
		})
	}
	return views, nil
}

func (s *orderServiceImpl) UpdateOrderStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, apperrors.Validation("Invalid status")
	}
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, errOrderNotFound
	}

	order, err := s.orders.UpdateStatus(ctx, oid, status)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errOrderNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Error updating order status", err)
	}

	publishEvent(ctx, s.events, s.logger, NewEvent(models.EventOrderStatusUpdated, order.ID.Hex(), orderEvent(order)))
	return order, nil
}

func (s *orderServiceImpl) DeleteOrder(ctx context.Context, orderID string) error {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return errOrderNotFound
	}
	if err := s.orders.Delete(ctx, oid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errOrderNotFound
		}
		return apperrors.Internal("Error deleting order", err)
	}
	s.logger.Info("Order deleted", zap.String("order_id", orderID))
	return nil
}

// GetAddresses lists the shipping address of every past order, duplicates
// included, newest first.
func (s *orderServiceImpl) GetAddresses(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	orders, err := s.orders.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Error retrieving addresses", err)
	}
	addresses := make([]models.Address, 0, len(orders))
	for _, o := range orders {
		addresses = append(addresses, o.Address)
	}
	return addresses, nil
}

func addressComplete(a models.Address) bool {
	return strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.State) != "" &&
		strings.TrimSpace(a.Zip) != ""
}

func productMissing(id string) error {
	return apperrors.NotFound(fmt.Sprintf("Product with ID %s not found", id))
}

func idempotencyScope(userID primitive.ObjectID, key string) string {
	return userID.Hex() + ":" + key
}

func orderEvent(o *models.Order) models.OrderEvent {
	return models.OrderEvent{
		OrderID:       o.ID.Hex(),
		UserID:        o.UserID.Hex(),
		TotalPrice:    o.TotalPrice,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		ItemCount:     len(o.Items),
	}
}
