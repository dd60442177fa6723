package cache

import (
	"testing"

	"github.com/CloudGreet/voice-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReceptionist() *Receptionist {
	return &Receptionist{
		Business: &domain.Business{ID: "biz-1", BusinessName: "Apex HVAC", Status: domain.BusinessStatusActive},
		Agent:    &domain.AIAgent{ID: "agent-1", AgentName: "Grace", Voice: "nova", IsActive: true},
	}
}

func TestReceptionistCacheHit(t *testing.T) {
	c := NewReceptionistCache()
	c.Set("+15551230000", testReceptionist())

	got, hit := c.Get("+15551230000")
	require.True(t, hit)
	require.NotNil(t, got)
	assert.Equal(t, "biz-1", got.Business.ID)
	assert.Equal(t, "Grace", got.Agent.AgentName)
}

func TestReceptionistCacheMiss(t *testing.T) {
	c := NewReceptionistCache()

	got, hit := c.Get("+15550000000")
	assert.False(t, hit)
	assert.Nil(t, got)
}

func TestReceptionistCacheReturnsCopies(t *testing.T) {
	c := NewReceptionistCache()
	original := testReceptionist()
	c.Set("+15551230000", original)

	// Mutating the original after Set must not affect the cache
	original.Agent.Voice = "onyx"

	first, hit := c.Get("+15551230000")
	require.True(t, hit)
	assert.Equal(t, "nova", first.Agent.Voice)

	// Mutating a returned entry must not affect later reads
	first.Business.BusinessName = "changed"

	second, hit := c.Get("+15551230000")
	require.True(t, hit)
	assert.Equal(t, "Apex HVAC", second.Business.BusinessName)
}

func TestReceptionistCacheNegativeEntry(t *testing.T) {
	c := NewReceptionistCache()
	c.SetUnassigned("+18005551234")

	got, hit := c.Get("+18005551234")
	assert.True(t, hit, "negative lookups are cache hits")
	assert.Nil(t, got, "with a nil receptionist")
}

func TestReceptionistCacheInvalidate(t *testing.T) {
	c := NewReceptionistCache()
	c.Set("+15551230000", testReceptionist())

	c.Invalidate("+15551230000")

	_, hit := c.Get("+15551230000")
	assert.False(t, hit)
}
