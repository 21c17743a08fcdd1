package services

import (
	"context"
	"errors"

	apperrors "github.com/Company-KERL/Kerl-backend/common/errors"
	"github.com/Company-KERL/Kerl-backend/models"
	aws_pkg "github.com/Company-KERL/Kerl-backend/pkg/aws"
	"github.com/Company-KERL/Kerl-backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CartService interface {
	AddItem(ctx context.Context, userID primitive.ObjectID, req *models.AddCartItemRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID primitive.ObjectID, productID string) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID primitive.ObjectID, req *models.UpdateCartItemRequest) (*models.Cart, error)
	GetItems(ctx context.Context, userID primitive.ObjectID) (*models.CartView, error)
	GetLength(ctx context.Context, userID primitive.ObjectID) (int, error)
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
}

type cartServiceImpl struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	metrics  Metrics
	logger   *zap.Logger
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, metrics Metrics, logger *zap.Logger) CartService {
	return &cartServiceImpl{
		carts:    carts,
		products: products,
		metrics:  metrics,
		logger:   logger,
	}
}

var errCartNotFound = apperrors.NotFound("Cart not found")

// AddItem merges into the line with the same product and size, or appends
// a new line. The cart is created on first use.
func (s *cartServiceImpl) AddItem(ctx context.Context, userID primitive.ObjectID, req *models.AddCartItemRequest) (*models.Cart, error) {
	if req.Quantity < 1 {
		return nil, apperrors.Validation("Quantity must be at least 1")
	}
	if req.SelectedSizeIndex == nil {
		return nil, apperrors.Validation("Selected size is required")
	}
	sizeIndex := *req.SelectedSizeIndex

	product, err := s.lookupProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	unitPrice, ok := product.PriceFor(sizeIndex)
	if !ok {
		return nil, apperrors.Validation("Invalid size selection")
	}

	cart, err := s.carts.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		cart = &models.Cart{UserID: userID, Items: []models.LineItem{}}
	} else if err != nil {
		return nil, apperrors.Internal("Error adding item to cart", err)
	}

	merged := false
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.ProductID == product.ID && item.SelectedSizeIndex == sizeIndex {
			item.Quantity += req.Quantity
			item.Price = LinePrice(unitPrice, item.Quantity)
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.LineItem{
			ProductID:         product.ID,
			Quantity:          req.Quantity,
			Price:             LinePrice(unitPrice, req.Quantity),
			SelectedSizeIndex: sizeIndex,
		})
	}
	cart.TotalPrice = Total(cart.Items)

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, apperrors.Internal("Error adding item to cart", err)
	}

	recordCount(s.metrics, aws_pkg.MetricCartItemsAdded, nil)
	return cart, nil
}

// RemoveItem drops every line of productID whatever its size.
func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID primitive.ObjectID, productID string) (*models.Cart, error) {
	cart, err := s.findCart(ctx, userID, "Error removing item from cart")
	if err != nil {
		return nil, err
	}

	kept := make([]models.LineItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.ProductID.Hex() != productID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	cart.TotalPrice = Total(cart.Items)

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, apperrors.Internal("Error removing item from cart", err)
	}
	return cart, nil
}

func (s *cartServiceImpl) UpdateItemQuantity(ctx context.Context, userID primitive.ObjectID, req *models.UpdateCartItemRequest) (*models.Cart, error) {
	if req.Quantity < 1 {
		return nil, apperrors.Validation("Quantity must be at least 1")
	}
	if req.SelectedSizeIndex == nil {
		return nil, apperrors.Validation("Selected size is required")
	}
	sizeIndex := *req.SelectedSizeIndex

	cart, err := s.findCart(ctx, userID, "Error updating cart item quantity")
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, item := range cart.Items {
		if item.ProductID.Hex() == req.ProductID && item.SelectedSizeIndex == sizeIndex {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, apperrors.NotFound("Product not found in cart")
	}

	product, err := s.lookupProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	unitPrice, ok := product.PriceFor(sizeIndex)
	if !ok {
		return nil, apperrors.Validation("Invalid size selection")
	}

	cart.Items[idx].Quantity = req.Quantity
	cart.Items[idx].Price = LinePrice(unitPrice, req.Quantity)
	cart.TotalPrice = Total(cart.Items)

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, apperrors.Internal("Error updating cart item quantity", err)
	}
	return cart, nil
}

// GetItems returns the cart with each line's product attached.
func (s *cartServiceImpl) GetItems(ctx context.Context, userID primitive.ObjectID) (*models.CartView, error) {
	cart, err := s.findCart(ctx, userID, "Error retrieving cart")
	if err != nil {
		return nil, err
	}

	items, err := resolveLineItems(ctx, s.products, cart.Items)
	if err != nil {
		return nil, apperrors.Internal("Error retrieving cart", err)
	}
	return &models.CartView{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Items:      items,
		TotalPrice: cart.TotalPrice,
		UpdatedAt:  cart.UpdatedAt,
	}, nil
}

// GetLength is the total number of units in the cart.
func (s *cartServiceImpl) GetLength(ctx context.Context, userID primitive.ObjectID) (int, error) {
	cart, err := s.findCart(ctx, userID, "Error retrieving cart")
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range cart.Items {
		n += item.Quantity
	}
	return n, nil
}

func (s *cartServiceImpl) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	deleted, err := s.carts.DeleteByUserID(ctx, userID)
	if err != nil {
		return apperrors.Internal("Error clearing cart", err)
	}
	if !deleted {
		return errCartNotFound
	}
	return nil
}

func (s *cartServiceImpl) findCart(ctx context.Context, userID primitive.ObjectID, failMsg string) (*models.Cart, error) {
	cart, err := s.carts.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errCartNotFound
	}
	if err != nil {
		return nil, apperrors.Internal(failMsg, err)
	}
	return cart, nil
}

func (s *cartServiceImpl) lookupProduct(ctx context.Context, productID string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, errProductNotFound
	}
	product, err := s.products.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errProductNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Server error", err)
	}
	return product, nil
}

// resolveLineItems attaches product documents to line items. Lines whose
// product has been deleted keep a nil Product.
func resolveLineItems(ctx context.Context, products repository.ProductRepository, items []models.LineItem) ([]models.ResolvedLineItem, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	seen := make(map[primitive.ObjectID]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	found, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	resolved := make([]models.ResolvedLineItem, 0, len(items))
	for _, item := range items {
		resolved = append(resolved, models.ResolvedLineItem{LineItem: item, Product: found[item.ProductID]})
	}
	return resolved, nil
}
