package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher_PublishesToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string
	d.Subscribe(EventTicketStatusChanged, func(_ context.Context, e Event) error {
		got = append(got, "first")
		return nil
	})
	d.Subscribe(EventTicketStatusChanged, func(_ context.Context, e Event) error {
		got = append(got, "second")
		return nil
	})
	d.Subscribe(EventTicketPriorityChanged, func(_ context.Context, e Event) error {
		got = append(got, "priority")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketStatusChanged, TicketID: 1}))
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestInMemoryDispatcher_HandlerErrorsDoNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	called := false
	d.Subscribe(EventTicketPriorityChanged, func(context.Context, Event) error { return boom })
	d.Subscribe(EventTicketPriorityChanged, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketPriorityChanged})
	require.ErrorIs(t, err, boom)
	assert.True(t, called)
}

func TestInMemoryDispatcher_NoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketStatusChanged}))
}
