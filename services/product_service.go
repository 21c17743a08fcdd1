package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	apperrors "github.com/Company-KERL/Kerl-backend/common/errors"
	"github.com/Company-KERL/Kerl-backend/models"
	aws_pkg "github.com/Company-KERL/Kerl-backend/pkg/aws"
	"github.com/Company-KERL/Kerl-backend/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	defaultPresignExpiry = 15 * time.Minute
	maxPresignExpiry     = time.Hour
)

// ImagePresigner issues upload URLs for product images.
type ImagePresigner interface {
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	PublicURL(key string) string
}

type ProductService interface {
	Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	PresignImageUpload(ctx context.Context, id string, req *models.PresignImageRequest) (*models.PresignedUpload, error)
}

type productServiceImpl struct {
	products  repository.ProductRepository
	cache     *CacheManager
	presigner ImagePresigner
	metrics   Metrics
	logger    *zap.Logger
}

// NewProductService wires the catalog. cache and presigner may be nil.
func NewProductService(products repository.ProductRepository, cache *CacheManager, presigner ImagePresigner, metrics Metrics, logger *zap.Logger) ProductService {
	return &productServiceImpl{
		products:  products,
		cache:     cache,
		presigner: presigner,
		metrics:   metrics,
		logger:    logger,
	}
}

var errProductNotFound = apperrors.NotFound("Product not found")

func (s *productServiceImpl) Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if req.Stock == nil {
		return nil, apperrors.Validation("All fields are required")
	}
	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Sizes:       req.Sizes,
		Prices:      req.Prices,
		Offers:      req.Offers,
		Images:      req.Images,
		Stock:       *req.Stock,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.Internal("Server error", err)
	}

	s.cache.InvalidateProduct(ctx, product.ID.Hex())
	recordCount(s.metrics, aws_pkg.MetricProductsCreated, nil)
	s.logger.Info("Product created", zap.String("product_id", product.ID.Hex()), zap.String("name", product.Name))
	return product, nil
}

func (s *productServiceImpl) List(ctx context.Context) ([]models.Product, error) {
	if products, ok := s.cache.GetProductList(ctx); ok {
		recordCount(s.metrics, aws_pkg.MetricCacheHits, map[string]string{"Cache": "product_list"})
		return products, nil
	}
	if s.cache != nil {
		recordCount(s.metrics, aws_pkg.MetricCacheMisses, map[string]string{"Cache": "product_list"})
	}

	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Server error", err)
	}
	s.cache.SetProductListAsync(products)
	return products, nil
}

func (s *productServiceImpl) Get(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errProductNotFound
	}

	if product, ok := s.cache.GetProduct(ctx, id); ok {
		recordCount(s.metrics, aws_pkg.MetricCacheHits, map[string]string{"Cache": "product"})
		return product, nil
	}

	product, err := s.products.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errProductNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Server error", err)
	}
	s.cache.SetProductAsync(id, product)
	return product, nil
}

// Update replaces each field present in req and re-checks the merged
// document before writing.
func (s *productServiceImpl) Update(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errProductNotFound
	}

	current, err := s.products.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errProductNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Server error", err)
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		current.Name = *req.Name
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		current.Description = *req.Description
		fields["description"] = *req.Description
	}
	if req.Sizes != nil {
		current.Sizes = *req.Sizes
		fields["sizes"] = *req.Sizes
	}
	if req.Prices != nil {
		current.Prices = *req.Prices
		fields["prices"] = *req.Prices
	}
	if req.Offers != nil {
		current.Offers = *req.Offers
		fields["offers"] = *req.Offers
	}
	if req.Images != nil {
		current.Images = *req.Images
		fields["images"] = *req.Images
	}
	if req.Stock != nil {
		current.Stock = *req.Stock
		fields["stock"] = *req.Stock
	}
	if err := validateProduct(current); err != nil {
		return nil, err
	}

	updated, err := s.products.Update(ctx, oid, fields)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errProductNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Server error", err)
	}

	s.cache.InvalidateProduct(ctx, id)
	return updated, nil
}

func (s *productServiceImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errProductNotFound
	}

	if err := s.products.Delete(ctx, oid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errProductNotFound
		}
		return apperrors.Internal("Server error", err)
	}

	s.cache.InvalidateProduct(ctx, id)
	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

// PresignImageUpload returns a presigned S3 PUT for a new image of product id.
func (s *productServiceImpl) PresignImageUpload(ctx context.Context, id string, req *models.PresignImageRequest) (*models.PresignedUpload, error) {
	if s.presigner == nil {
		return nil, apperrors.Internal("Image uploads are not configured", nil)
	}
	if !strings.HasPrefix(req.ContentType, "image/") {
		return nil, apperrors.Validation("Only image uploads are allowed")
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	expiry := defaultPresignExpiry
	if req.ExpiresIn > 0 {
		expiry = time.Duration(req.ExpiresIn) * time.Second
	}
	if expiry > maxPresignExpiry {
		expiry = maxPresignExpiry
	}

	key := fmt.Sprintf("products/%s/%s%s", product.ID.Hex(), uuid.NewString(), strings.ToLower(path.Ext(req.Filename)))
	url, err := s.presigner.PresignPut(ctx, key, req.ContentType, expiry)
	if err != nil {
		return nil, apperrors.External("Failed to generate upload URL", err)
	}

	return &models.PresignedUpload{
		UploadURL: url,
		Method:    "PUT",
		Key:       key,
		PublicURL: s.presigner.PublicURL(key),
		ExpiresIn: int64(expiry.Seconds()),
	}, nil
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "" || p.Description == "" || len(p.Sizes) == 0 || len(p.Prices) == 0 || len(p.Images) == 0:
		return apperrors.Validation("All fields are required")
	case len(p.Prices) != len(p.Sizes):
		return apperrors.Validation("Each size must have exactly one price")
	case p.Stock < 0:
		return apperrors.Validation("Stock cannot be negative")
	}
	for _, price := range p.Prices {
		if price < 0 {
			return apperrors.Validation("Prices cannot be negative")
		}
	}
	return nil
}
