package geoapify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anokye0712/ai-route-planner/internal/model"
)

// Geocoder resolves one address to a coordinate pair. Implemented by *Client
// and by GeocodeCache, so callers never know whether a lookup hit the wire.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (model.LonLat, error)
}

const geocodeKeyPrefix = "geocode:v1:"

// GeocodeCache is a read-through Redis cache in front of a Geocoder.
// Cache trouble is never fatal: a failed read falls through to the live
// geocoder, a failed write is logged and dropped. Only successful lookups
// are cached; failures stay uncached so a transient geocoder outage does
// not poison a week of lookups.
type GeocodeCache struct {
	geocoder Geocoder
	redis    *redis.Client
	ttl      time.Duration
}

func NewGeocodeCache(geocoder Geocoder, client *redis.Client, ttl time.Duration) *GeocodeCache {
	return &GeocodeCache{
		geocoder: geocoder,
		redis:    client,
		ttl:      ttl,
	}
}

func (g *GeocodeCache) Geocode(ctx context.Context, address string) (model.LonLat, error) {
	key := geocodeKeyPrefix + address

	cached, err := g.redis.Get(ctx, key).Result()
	if err == nil {
		var loc model.LonLat
		if err := json.Unmarshal([]byte(cached), &loc); err == nil {
			return loc, nil
		}
		slog.WarnContext(ctx, "dropping undecodable geocode cache entry", "key", key)
		g.redis.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		slog.WarnContext(ctx, "geocode cache read failed, falling through", "error", err)
	}

	loc, err := g.geocoder.Geocode(ctx, address)
	if err != nil {
		return model.LonLat{}, err
	}

	encoded, err := json.Marshal(loc)
	if err == nil {
		if err := g.redis.Set(ctx, key, encoded, g.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "geocode cache write failed", "error", err)
		}
	}
	return loc, nil
}
