package notes

import (
	"context"
	"testing"

	"notes-store/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_FanOut(t *testing.T) {
	events := NewEventService()
	a := events.Subscribe()
	b := events.Subscribe()
	require.Equal(t, 2, events.Subscribers())

	event := model.NoteEvent{Type: model.EventDeleted, NoteIDs: []string{"x"}}
	require.NoError(t, events.Publish(context.Background(), event))

	assert.Equal(t, event, <-a)
	assert.Equal(t, event, <-b)
}

func TestEventService_DropsWhenBufferFull(t *testing.T) {
	events := NewEventService()
	ch := events.Subscribe()

	for i := 0; i < subscriberBuffer+5; i++ {
		require.NoError(t, events.Publish(context.Background(), model.NoteEvent{Type: model.EventCreated}))
	}

	assert.Len(t, ch, subscriberBuffer)
}

func TestEventService_Unsubscribe(t *testing.T) {
	events := NewEventService()
	ch := events.Subscribe()

	events.Unsubscribe(ch)
	events.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, events.Subscribers())
}

func TestEventService_WiredIntoService(t *testing.T) {
	ctx := context.Background()
	events := NewEventService()
	ch := events.Subscribe()
	service := NewNoteService(newMockRepository(), WithPublishers(events))

	note, err := service.Create(ctx, model.NoteInput{Title: "Suscrita"})
	require.NoError(t, err)

	got := <-ch
	assert.Equal(t, model.EventCreated, got.Type)
	assert.Equal(t, []string{note.ID}, got.NoteIDs)
}
