package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCreatedEvent struct {
	BaseDomainEvent
	Amount int `json:"amount"`
}

func TestEventJSONRoundTrip(t *testing.T) {
	RegisterEvent("stub.created", func() Event { return &stubCreatedEvent{} })

	src := &stubCreatedEvent{
		BaseDomainEvent: NewBaseDomainEvent("stub.created", "stub", "agg-1", "tenant-1", 3),
		Amount:          7,
	}

	data, err := ToJSON(src)
	require.NoError(t, err)

	restored, err := FromJSON(data)
	require.NoError(t, err)

	got, ok := restored.(*stubCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "stub.created", got.Name())
	assert.Equal(t, 7, got.Amount)
	assert.Equal(t, int64(3), got.AggregateVersion)
	assert.Equal(t, src.EventID, got.EventID)

	aggType, aggID := got.Aggregate()
	assert.Equal(t, "stub", aggType)
	assert.Equal(t, "agg-1", aggID)
}

func TestFromJSONUnknownType(t *testing.T) {
	_, err := FromJSON([]byte(`{"event_type":"stub.never-registered"}`))
	assert.ErrorContains(t, err, "unknown event type")

	_, err = FromJSON([]byte(`{"amount":1}`))
	assert.ErrorContains(t, err, "missing event_type")
}

func TestAggregateRootPullEvents(t *testing.T) {
	var root AggregateRoot
	root.Record(&stubCreatedEvent{BaseDomainEvent: NewBaseDomainEvent("stub.created", "stub", "a", "t", 1)})
	root.Record(&stubCreatedEvent{BaseDomainEvent: NewBaseDomainEvent("stub.created", "stub", "a", "t", 2)})

	assert.Len(t, root.PendingEvents(), 2)

	events := root.PullEvents()
	assert.Len(t, events, 2)
	assert.Empty(t, root.PullEvents())
}
