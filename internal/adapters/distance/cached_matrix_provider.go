package distance

import (
	"context"
	"io"
	"log/slog"

	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/ports"
)

// CachedMatrixProvider wraps a MatrixProvider with a cache-aside lookup.
// Legs found in the cache are served without touching the inner provider;
// only the misses are fetched and written back.
//
// Cache writes are best effort: a failed write is logged and the fetched
// legs are still returned. Cache reads are not, because a broken cache
// backend should surface instead of silently doubling provider traffic.
type CachedMatrixProvider struct {
	Provider ports.MatrixProvider
	Cache    ports.MatrixCache
	Log      *slog.Logger
}

func NewCachedMatrixProvider(provider ports.MatrixProvider, cache ports.MatrixCache, log *slog.Logger) *CachedMatrixProvider {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CachedMatrixProvider{Provider: provider, Cache: cache, Log: log}
}

func (c *CachedMatrixProvider) Legs(
	ctx context.Context,
	origin domain.Location,
	destinations []domain.Location,
	traffic bool,
) (map[string]ports.Leg, error) {
	if c.Cache == nil {
		return c.Provider.Legs(ctx, origin, destinations, traffic)
	}

	ids := make([]string, 0, len(destinations))
	for _, d := range destinations {
		ids = append(ids, d.LocationID)
	}

	hits, err := c.Cache.GetMany(ctx, origin.LocationID, ids)
	if err != nil {
		return nil, err
	}

	missing := make([]domain.Location, 0, len(destinations))
	for _, d := range destinations {
		if _, ok := hits[d.LocationID]; !ok {
			missing = append(missing, d)
		}
	}

	if len(missing) == 0 {
		return hits, nil
	}

	fetched, err := c.Provider.Legs(ctx, origin, missing, traffic)
	if err != nil {
		return nil, err
	}

	if err := c.Cache.PutMany(ctx, origin.LocationID, fetched); err != nil {
		c.Log.Warn("matrix cache write failed",
			"origin", origin.LocationID,
			"legs", len(fetched),
			"err", err,
		)
	}

	for id, leg := range fetched {
		hits[id] = leg
	}

	return hits, nil
}
