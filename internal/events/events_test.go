package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe(TypeCommitted, func(e Event) { got = append(got, e) })
	bus.Subscribe(TypeCommitted, func(e Event) { got = append(got, e) })
	bus.Subscribe(TypeConflict, func(e Event) { t.Fatal("wrong type delivered") })

	bus.Publish(TypeCommitted, 2)

	assert.Len(t, got, 2)
	assert.Equal(t, TypeCommitted, got[0].Type)
	assert.Equal(t, 2, got[0].Payload)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestBus_NoSubscribers(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() { bus.Publish(TypeRefreshed, nil) })
}
