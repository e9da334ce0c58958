package cache

import (
	"context"
	"time"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

// CatalogKey is the cache key of the NFL player catalog
const CatalogKey = "catalog:nfl"

// DefaultCatalogTTL matches Sleeper's guidance of fetching players at most daily
const DefaultCatalogTTL = 12 * time.Hour

// CatalogSource fetches the full remote player catalog
type CatalogSource interface {
	FetchPlayers(ctx context.Context) ([]models.RemotePlayer, error)
}

// CachedCatalog serves the catalog from a Store and falls through to the source on a miss.
// Slice order is preserved through the cache.
type CachedCatalog struct {
	source CatalogSource
	store  Store
	ttl    time.Duration
}

func NewCachedCatalog(source CatalogSource, store Store, ttl time.Duration) *CachedCatalog {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CachedCatalog{source: source, store: store, ttl: ttl}
}

func (c *CachedCatalog) FetchPlayers(ctx context.Context) ([]models.RemotePlayer, error) {
	var players []models.RemotePlayer
	found, err := c.store.Get(ctx, CatalogKey, &players)
	if err != nil {
		logger.Warn("Catalog cache read failed", "error", err)
	}
	if found && len(players) > 0 {
		logger.Debug("Catalog served from cache", "players", len(players))
		return players, nil
	}

	players, err = c.source.FetchPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, CatalogKey, players, c.ttl); err != nil {
		logger.Warn("Catalog cache write failed", "error", err)
	}
	return players, nil
}

// Invalidate drops the cached catalog so the next fetch hits the source
func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx, CatalogKey)
}
