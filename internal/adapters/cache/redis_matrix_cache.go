package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"fleet-route-optimizer/internal/platform/obs"
	"fleet-route-optimizer/internal/ports"
)

const defaultLegTTL = 24 * time.Hour

// RedisMatrixCache caches travel legs in Redis with a TTL, for deployments
// where several optimizer instances share one warm cache.
type RedisMatrixCache struct {
	Client *redis.Client
	TTL    time.Duration
	Log    *slog.Logger
}

func NewRedisMatrixCache(client *redis.Client, ttl time.Duration, log *slog.Logger) *RedisMatrixCache {
	if ttl <= 0 {
		ttl = defaultLegTTL
	}
	return &RedisMatrixCache{Client: client, TTL: ttl, Log: log}
}

func legCacheKey(origin, destination string) string {
	return "matrix:" + origin + "|" + destination
}

type cachedLeg struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
	TollCost    float64 `json:"toll_cost,omitempty"`
}

// Fetch cached legs for one origin via a single MGET. Undecodable entries
// count as misses so they get rewritten on the next PutMany.
func (r *RedisMatrixCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.Leg, err error) {
	defer obs.Time(r.Log, "matrix.cache.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("matrix cache: redis client is nil")
	}

	if origin == "" {
		return nil, errors.New("get matrix cache: origin must not be empty")
	}

	if len(destinations) == 0 {
		return map[string]ports.Leg{}, nil
	}

	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(destinations))
	for _, d := range destinations {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}

		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		uniq = append(uniq, d)
	}

	if len(uniq) == 0 {
		return map[string]ports.Leg{}, nil
	}

	keys := make([]string, len(uniq))
	for i, d := range uniq {
		keys[i] = legCacheKey(origin, d)
	}

	vals, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get matrix cache: mget: %w", err)
	}

	out := make(map[string]ports.Leg, len(uniq))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}

		var c cachedLeg
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			continue
		}
		out[uniq[i]] = ports.Leg{
			DistanceKm:  c.DistanceKm,
			DurationMin: c.DurationMin,
			TollCost:    c.TollCost,
		}
	}

	return out, nil
}

// Store many legs for a single origin in one pipeline round trip.
func (r *RedisMatrixCache) PutMany(
	ctx context.Context,
	origin string,
	legs map[string]ports.Leg,
) error {
	if r.Client == nil {
		return errors.New("matrix cache: redis client is nil")
	}

	if origin == "" {
		return errors.New("insert matrix cache: origin must not be empty")
	}

	if len(legs) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for dest, l := range legs {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert matrix cache: empty destination key")
		}

		payload, err := json.Marshal(cachedLeg{
			DistanceKm:  l.DistanceKm,
			DurationMin: l.DurationMin,
			TollCost:    l.TollCost,
		})
		if err != nil {
			return fmt.Errorf("insert matrix cache dest=%q: marshal: %w", dest, err)
		}

		pipe.Set(ctx, legCacheKey(origin, dest), payload, r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert matrix cache: pipeline exec: %w", err)
	}

	return nil
}
