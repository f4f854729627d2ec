package httpapi

import (
	"encoding/json"
	"testing"

	"github.com/cobaltline/outreach/pkg/models"
)

func TestSSEHubPublishesTypedEvents(t *testing.T) {
	t.Parallel()
	hub := NewSSEHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	hub.Publish(models.StreamEvent{
		Type:       models.StreamSend,
		ScheduleID: "sch-1",
		StepID:     "step-1",
		Channel:    "email",
		MessageID:  "msg-1",
	})

	raw := <-ch
	var got models.StreamEvent
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if got.Type != models.StreamSend || got.Channel != "email" || got.MessageID != "msg-1" {
		t.Errorf("event = %+v", got)
	}

	// Fields unrelated to a send stay off the wire.
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal fields: %v", err)
	}
	if _, ok := fields["campaign_id"]; ok {
		t.Error("empty campaign_id serialized")
	}

	// Typeless events are dropped, not broadcast.
	hub.Publish(models.StreamEvent{MessageID: "msg-2"})
	select {
	case raw := <-ch:
		t.Errorf("typeless event broadcast: %s", raw)
	default:
	}
}

func TestSSEHubDropsSlowSubscriber(t *testing.T) {
	t.Parallel()
	hub := NewSSEHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	// Overrun the subscriber buffer; Publish must never block.
	for i := 0; i < 300; i++ {
		hub.Publish(models.StreamEvent{Type: models.StreamSweep, Due: i + 1})
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffer = %d/%d, want full", len(ch), cap(ch))
	}
}
