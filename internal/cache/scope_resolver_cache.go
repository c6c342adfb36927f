package cache

import (
	"time"

	"github.com/bwmarrin/snowflake"
	storedomain "github.com/pitlane-hq/pitlane/internal/store/domain"
)

const defaultScopeTTL = 30 * time.Second

// ScopeResolverCache memoises a user's resolved store scope for a short
// window. Grant changes evict eagerly; everything else ages out on the TTL.
type ScopeResolverCache interface {
	GetScope(userID snowflake.ID) (*storedomain.StoreScope, bool)
	SetScope(userID snowflake.ID, scope *storedomain.StoreScope)
	EvictScope(userID snowflake.ID)
}

type scopeResolverCache struct {
	scopes Cache[snowflake.ID, *storedomain.StoreScope]
	ttl    time.Duration
}

// NewScopeResolverCache returns an in-memory cache tuned for scope lookups.
func NewScopeResolverCache() ScopeResolverCache {
	return &scopeResolverCache{
		scopes: NewTTLCache[snowflake.ID, *storedomain.StoreScope](),
		ttl:    defaultScopeTTL,
	}
}

func (c *scopeResolverCache) GetScope(userID snowflake.ID) (*storedomain.StoreScope, bool) {
	return c.scopes.Get(userID)
}

func (c *scopeResolverCache) SetScope(userID snowflake.ID, scope *storedomain.StoreScope) {
	if scope == nil {
		return
	}
	c.scopes.Set(userID, scope, c.ttl)
}

func (c *scopeResolverCache) EvictScope(userID snowflake.ID) {
	c.scopes.Delete(userID)
}
