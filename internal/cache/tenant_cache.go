package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
)

// ErrCacheMiss is returned when the key is absent or the cache is unavailable.
var ErrCacheMiss = errors.New("cache miss")

// TenantCache caches the subdomain->tenant lookup that runs on every request.
// Redis failures degrade to cache misses so resolution always falls back to
// the database.
type TenantCache struct {
	redis  *redis.Client
	logger *logrus.Logger
	ttl    time.Duration
}

// NewTenantCache creates a new tenant cache
func NewTenantCache(client *redis.Client, logger *logrus.Logger, ttl time.Duration) *TenantCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &TenantCache{
		redis:  client,
		logger: logger,
		ttl:    ttl,
	}
}

func (c *TenantCache) key(subdomain string) string {
	return fmt.Sprintf("tenant:subdomain:%s", subdomain)
}

// GetBySubdomain returns the cached tenant or ErrCacheMiss.
func (c *TenantCache) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	if c.redis == nil {
		return nil, ErrCacheMiss
	}

	data, err := c.redis.Get(ctx, c.key(subdomain)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).WithField("subdomain", subdomain).Warn("Tenant cache read failed")
		}
		return nil, ErrCacheMiss
	}

	var tenant models.Tenant
	if err := json.Unmarshal(data, &tenant); err != nil {
		c.logger.WithError(err).WithField("subdomain", subdomain).Warn("Corrupt tenant cache entry, evicting")
		c.redis.Del(ctx, c.key(subdomain))
		return nil, ErrCacheMiss
	}
	return &tenant, nil
}

// Set stores a tenant under its subdomain key.
func (c *TenantCache) Set(ctx context.Context, tenant *models.Tenant) {
	if c.redis == nil || tenant == nil || tenant.Subdomain == "" {
		return
	}

	data, err := json.Marshal(tenant)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to marshal tenant for cache")
		return
	}
	if err := c.redis.Set(ctx, c.key(tenant.Subdomain), data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("subdomain", tenant.Subdomain).Warn("Tenant cache write failed")
	}
}

// Invalidate drops the cached entry; called after tenant updates and
// suspensions so stale activation state cannot satisfy resolution.
func (c *TenantCache) Invalidate(ctx context.Context, subdomain string) {
	if c.redis == nil || subdomain == "" {
		return
	}
	if err := c.redis.Del(ctx, c.key(subdomain)).Err(); err != nil {
		c.logger.WithError(err).WithField("subdomain", subdomain).Warn("Tenant cache invalidation failed")
	}
}
