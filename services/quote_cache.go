package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"travel-backend/pricing"
)

// QuoteCache memoizes stay quotes in Redis. Entries are keyed by a per-room
// version counter, so invalidating a room is a single INCR and stale entries
// simply expire. A nil cache or client behaves as a permanent miss.
type QuoteCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewQuoteCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *QuoteCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &QuoteCache{rdb: rdb, ttl: ttl, log: log}
}

func (c *QuoteCache) enabled() bool {
	return c != nil && c.rdb != nil
}

func versionKey(roomID uint) string {
	return fmt.Sprintf("quote:ver:%d", roomID)
}

func quoteKey(version int64, req pricing.StayRequest) string {
	return fmt.Sprintf("quote:%d:v%d:%s:%s:%s:%d",
		req.RoomID, version,
		req.CheckIn.Format(time.DateOnly), req.CheckOut.Format(time.DateOnly),
		req.Category, req.Guests,
	)
}

func (c *QuoteCache) version(ctx context.Context, roomID uint) (int64, error) {
	ver, err := c.rdb.Get(ctx, versionKey(roomID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return ver, err
}

// Get returns the cached quote and the room version it was looked up under.
// The version must be handed back to Set so a quote computed while the room
// changed is stored under the stale version and never served.
func (c *QuoteCache) Get(ctx context.Context, req pricing.StayRequest) (pricing.StayPriceResult, int64, bool) {
	if !c.enabled() {
		return pricing.StayPriceResult{}, 0, false
	}
	ver, err := c.version(ctx, req.RoomID)
	if err != nil {
		c.log.WarnContext(ctx, "quote cache version read failed", "room_id", req.RoomID, "error", err)
		return pricing.StayPriceResult{}, -1, false
	}
	raw, err := c.rdb.Get(ctx, quoteKey(ver, req)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "quote cache read failed", "room_id", req.RoomID, "error", err)
		}
		return pricing.StayPriceResult{}, ver, false
	}
	var res pricing.StayPriceResult
	if err := json.Unmarshal(raw, &res); err != nil {
		c.log.WarnContext(ctx, "quote cache entry corrupt", "room_id", req.RoomID, "error", err)
		return pricing.StayPriceResult{}, ver, false
	}
	return res, ver, true
}

func (c *QuoteCache) Set(ctx context.Context, version int64, req pricing.StayRequest, res pricing.StayPriceResult) {
	if !c.enabled() || version < 0 {
		return
	}
	body, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, quoteKey(version, req), body, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "quote cache write failed", "room_id", req.RoomID, "error", err)
	}
}

// Invalidate bumps the room version; failures are logged and the old entries
// live until their TTL.
func (c *QuoteCache) Invalidate(ctx context.Context, roomID uint) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Incr(ctx, versionKey(roomID)).Err(); err != nil {
		c.log.WarnContext(ctx, "quote cache invalidation failed", "room_id", roomID, "error", err)
	}
}
