package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventDeduperFirstDeliveryNotSeen(t *testing.T) {
	d := NewEventDeduper(nil)

	assert.False(t, d.Seen(context.Background(), "evt-1"))
	assert.True(t, d.Seen(context.Background(), "evt-1"))
	assert.True(t, d.Seen(context.Background(), "evt-1"))
}

func TestEventDeduperDistinctEvents(t *testing.T) {
	d := NewEventDeduper(nil)

	assert.False(t, d.Seen(context.Background(), "evt-a"))
	assert.False(t, d.Seen(context.Background(), "evt-b"))
}

func TestEventDeduperForgetAllowsRedelivery(t *testing.T) {
	d := NewEventDeduper(nil)

	assert.False(t, d.Seen(context.Background(), "evt-1"))
	d.Forget(context.Background(), "evt-1")

	// After a failed handling attempt the retry counts as a fresh delivery
	assert.False(t, d.Seen(context.Background(), "evt-1"))
	assert.True(t, d.Seen(context.Background(), "evt-1"))
}

func TestEventDeduperEmptyIDNeverDeduped(t *testing.T) {
	d := NewEventDeduper(nil)

	assert.False(t, d.Seen(context.Background(), ""))
	assert.False(t, d.Seen(context.Background(), ""))
}
