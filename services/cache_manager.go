package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Company-KERL/Kerl-backend/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ProductCachePrefix     = "product:detail:"
	ProductListCachePrefix = "products:v:"
	CacheVersionKey        = "products:version"

	DefaultCacheTTL = 10 * time.Minute
)

// CacheManager handles the Redis product cache. List entries are keyed by
// a version counter so one INCR invalidates every cached list. A nil
// *CacheManager is a valid, always-missing cache.
type CacheManager struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCacheManager(client *redis.Client, ttl time.Duration) *CacheManager {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheManager{redis: client, ttl: ttl}
}

// GetProductList retrieves the cached catalog listing
func (cm *CacheManager) GetProductList(ctx context.Context) ([]models.Product, bool) {
	if cm == nil {
		return nil, false
	}
	version, err := cm.getCacheVersion(ctx)
	if err != nil {
		return nil, false
	}

	cached, err := cm.redis.Get(ctx, listKey(version)).Bytes()
	if err != nil {
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal(cached, &products); err != nil {
		zap.L().Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return products, true
}

// SetProductListAsync caches the catalog listing asynchronously
func (cm *CacheManager) SetProductListAsync(products []models.Product) {
	if cm == nil {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.getCacheVersion(bgCtx)
		if err != nil {
			return
		}

		body, err := json.Marshal(products)
		if err != nil {
			zap.L().Warn("Failed to marshal product list for cache", zap.Error(err))
			return
		}
		if err := cm.redis.Set(bgCtx, listKey(version), body, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

func (cm *CacheManager) GetProduct(ctx context.Context, productID string) (*models.Product, bool) {
	if cm == nil {
		return nil, false
	}
	cached, err := cm.redis.Get(ctx, ProductCachePrefix+productID).Bytes()
	if err != nil {
		return nil, false
	}

	var product models.Product
	if err := json.Unmarshal(cached, &product); err != nil {
		zap.L().Warn("Failed to unmarshal cached product", zap.Error(err), zap.String("product_id", productID))
		return nil, false
	}
	return &product, true
}

// SetProductAsync caches a single product asynchronously
func (cm *CacheManager) SetProductAsync(productID string, product *models.Product) {
	if cm == nil {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		body, err := json.Marshal(product)
		if err != nil {
			zap.L().Warn("Failed to marshal product for cache", zap.Error(err), zap.String("product_id", productID))
			return
		}
		if err := cm.redis.Set(bgCtx, ProductCachePrefix+productID, body, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product", zap.Error(err), zap.String("product_id", productID))
		}
	}()
}

// Invalidate invalidates all list caches by bumping the version
func (cm *CacheManager) Invalidate(ctx context.Context) error {
	if cm == nil {
		return nil
	}
	newVersion, err := cm.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	zap.L().Debug("Product cache invalidated", zap.Int64("new_version", newVersion))
	return nil
}

// InvalidateProduct drops the list caches and the product's detail entry.
func (cm *CacheManager) InvalidateProduct(ctx context.Context, productID string) {
	if cm == nil {
		return
	}
	if err := cm.Invalidate(ctx); err != nil {
		zap.L().Error("Failed to invalidate product cache", zap.Error(err), zap.String("product_id", productID))
	}
	if err := cm.redis.Del(ctx, ProductCachePrefix+productID).Err(); err != nil {
		zap.L().Warn("Failed to delete product cache", zap.Error(err), zap.String("product_id", productID))
	}
}

// getCacheVersion retrieves the current cache version, initialising it on
// first use.
func (cm *CacheManager) getCacheVersion(ctx context.Context) (int64, error) {
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		ver, err := cm.redis.Get(ctx, CacheVersionKey).Int64()
		if err == nil && ver > 0 {
			return ver, nil
		}
		if err == redis.Nil {
			// SETNX so a concurrent Invalidate is never overwritten.
			if err := cm.redis.SetNX(ctx, CacheVersionKey, 1, 0).Err(); err == nil {
				continue
			}
		}
		if ctx.Err() != nil {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(50 * time.Millisecond)
		}
	}
	return 0, fmt.Errorf("failed to get cache version after %d retries", maxRetries)
}

func listKey(version int64) string {
	return fmt.Sprintf("%s%d:all", ProductListCachePrefix, version)
}
