package cache

import (
	"context"
	"time"

	"github.com/CloudGreet/voice-service/pkg/logger"
	appredis "github.com/CloudGreet/voice-service/pkg/redis"
	gocache "github.com/patrickmn/go-cache"
)

const dedupTTL = 10 * time.Minute

// EventDeduper tracks webhook event ids that have already been processed,
// so a provider redelivery is acknowledged without re-running side effects.
// Redis makes the window shared across instances; the in-process cache
// covers deployments without Redis and Redis outages.
type EventDeduper struct {
	redis appredis.RedisServiceInterface
	local *gocache.Cache
}

// NewEventDeduper creates a deduper. redisService may be nil, in which case
// deduplication is process-local only.
func NewEventDeduper(redisService appredis.RedisServiceInterface) *EventDeduper {
	return &EventDeduper{
		redis: redisService,
		local: gocache.New(dedupTTL, 2*dedupTTL),
	}
}

// Seen records the event id and reports whether it had been seen before.
// The first caller for an id gets false; every later caller inside the
// dedup window gets true.
func (d *EventDeduper) Seen(ctx context.Context, eventID string) bool {
	if eventID == "" {
		// Events without an id cannot be deduplicated
		return false
	}

	if err := d.local.Add(eventID, struct{}{}, dedupTTL); err != nil {
		return true
	}

	if d.redis != nil {
		key := d.redis.GenerateKey(appredis.WEBHOOK_EVENT, eventID)
		set, err := d.redis.SetIfAbsent(ctx, key, "1", dedupTTL)
		if err != nil {
			logger.L().Warnw("webhook dedup redis check failed, using local cache only",
				"event_id", eventID, "error", err)
			return false
		}
		return !set
	}

	return false
}

// Forget clears the dedup entry for an event. Called when handling the
// event failed, so the provider's retry of the same event id is processed
// again instead of being swallowed as a duplicate.
func (d *EventDeduper) Forget(ctx context.Context, eventID string) {
	if eventID == "" {
		return
	}

	d.local.Delete(eventID)

	if d.redis != nil {
		key := d.redis.GenerateKey(appredis.WEBHOOK_EVENT, eventID)
		if err := d.redis.DelValue(ctx, key); err != nil {
			logger.L().Warnw("webhook dedup redis clear failed",
				"event_id", eventID, "error", err)
		}
	}
}
