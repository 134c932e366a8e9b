package service

import (
	"context"
	"time"
)

const (
	manhwaCacheTTL  = 5 * time.Minute
	profileCacheTTL = 10 * time.Minute
)

// Cache is the read-through cache used by the services. *cache.Client
// satisfies it and treats redis failures as misses.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	// AddJSON writes only when key is absent, so a read-through fill never
	// replaces a value written by a mutation.
	AddJSON(ctx context.Context, key string, v any, ttl time.Duration) bool
	Delete(ctx context.Context, keys ...string) error
}

type noopCache struct{}

func (noopCache) GetJSON(context.Context, string, any) bool                 { return false }
func (noopCache) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (noopCache) AddJSON(context.Context, string, any, time.Duration) bool  { return false }
func (noopCache) Delete(context.Context, ...string) error                   { return nil }

func cacheOrNoop(c Cache) Cache {
	if c == nil {
		return noopCache{}
	}
	return c
}
