package cache

import (
	"time"

	"github.com/CloudGreet/voice-service/internal/domain"
	"github.com/CloudGreet/voice-service/pkg/logger"
	"github.com/jinzhu/copier"
	gocache "github.com/patrickmn/go-cache"
)

const (
	receptionistTTL      = 5 * time.Minute
	receptionistSweep    = 10 * time.Minute
	negativeLookupTTL    = 30 * time.Second
	negativeLookupMarker = "unassigned"
)

// Receptionist is the resolved configuration for one inbound number:
// the owning business and its active agent.
type Receptionist struct {
	Business *domain.Business
	Agent    *domain.AIAgent
}

// ReceptionistCache caches phone-number-to-receptionist resolutions so the
// per-call lookup does not hit the database on every webhook. Unassigned
// numbers are cached negatively with a shorter TTL so a fresh assignment
// takes effect quickly.
type ReceptionistCache struct {
	store *gocache.Cache
}

// NewReceptionistCache creates an empty receptionist cache
func NewReceptionistCache() *ReceptionistCache {
	return &ReceptionistCache{
		store: gocache.New(receptionistTTL, receptionistSweep),
	}
}

// Get returns the cached resolution for a number. The second return value
// reports a cache hit; a hit with a nil Receptionist means the number was
// recently resolved as unassigned.
func (c *ReceptionistCache) Get(phoneNumber string) (*Receptionist, bool) {
	entry, found := c.store.Get(phoneNumber)
	if !found {
		return nil, false
	}

	if entry == negativeLookupMarker {
		return nil, true
	}

	cached, ok := entry.(*Receptionist)
	if !ok {
		return nil, false
	}

	// Deep copy so callers cannot mutate the cached entry
	out := &Receptionist{Business: &domain.Business{}, Agent: &domain.AIAgent{}}
	if err := copier.CopyWithOption(out.Business, cached.Business, copier.Option{DeepCopy: true}); err != nil {
		logger.L().Warnw("failed to copy cached business", "phone_number", phoneNumber, "error", err)
		return nil, false
	}
	if err := copier.CopyWithOption(out.Agent, cached.Agent, copier.Option{DeepCopy: true}); err != nil {
		logger.L().Warnw("failed to copy cached agent", "phone_number", phoneNumber, "error", err)
		return nil, false
	}

	return out, true
}

// Set caches a successful resolution for a number
func (c *ReceptionistCache) Set(phoneNumber string, r *Receptionist) {
	stored := &Receptionist{Business: &domain.Business{}, Agent: &domain.AIAgent{}}
	if err := copier.CopyWithOption(stored.Business, r.Business, copier.Option{DeepCopy: true}); err != nil {
		logger.L().Warnw("failed to cache business", "phone_number", phoneNumber, "error", err)
		return
	}
	if err := copier.CopyWithOption(stored.Agent, r.Agent, copier.Option{DeepCopy: true}); err != nil {
		logger.L().Warnw("failed to cache agent", "phone_number", phoneNumber, "error", err)
		return
	}

	c.store.Set(phoneNumber, stored, receptionistTTL)
}

// SetUnassigned caches a failed resolution for a number
func (c *ReceptionistCache) SetUnassigned(phoneNumber string) {
	c.store.Set(phoneNumber, negativeLookupMarker, negativeLookupTTL)
}

// Invalidate drops the cached resolution for a number, called after admin
// writes that change its assignment or agent configuration
func (c *ReceptionistCache) Invalidate(phoneNumber string) {
	c.store.Delete(phoneNumber)
}

// Flush drops every cached resolution
func (c *ReceptionistCache) Flush() {
	c.store.Flush()
}
