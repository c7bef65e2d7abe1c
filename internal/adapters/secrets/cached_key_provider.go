package secrets

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/kevin07696/merchant-gateway/internal/domain/ports"
)

// CachedKeyProvider keeps keys from another provider in memory for a TTL
type CachedKeyProvider struct {
	next   ports.KeyProvider
	cache  *cache.Cache
	logger ports.Logger
}

var _ ports.KeyProvider = (*CachedKeyProvider)(nil)

// NewCachedKeyProvider wraps next with a TTL cache
func NewCachedKeyProvider(next ports.KeyProvider, ttl time.Duration, logger ports.Logger) *CachedKeyProvider {
	return &CachedKeyProvider{
		next:   next,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// GetKey returns a cached key or loads it from the wrapped provider
func (p *CachedKeyProvider) GetKey(ctx context.Context, path string) ([]byte, error) {
	if cached, found := p.cache.Get(path); found {
		p.logger.Debug("Key retrieved from cache", ports.String("path", path))
		return cached.([]byte), nil
	}

	key, err := p.next.GetKey(ctx, path)
	if err != nil {
		return nil, err
	}

	p.cache.SetDefault(path, key)
	return key, nil
}

// Invalidate drops a cached key, forcing the next GetKey to reload it
func (p *CachedKeyProvider) Invalidate(path string) {
	p.cache.Delete(path)
}
