package server

import (
	"encoding/json"
	"testing"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()

	ch := b.Subscribe("party-1")
	other := b.Subscribe("party-2")

	b.Publish("party-1", PartyEvent{Type: EventPlayerJoined, Username: "alice"})

	select {
	case data := <-ch:
		var event PartyEvent
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("decoding event: %v", err)
		}
		if event.Type != EventPlayerJoined || event.Username != "alice" {
			t.Errorf("event = %+v, want player_joined/alice", event)
		}
	default:
		t.Fatal("expected an event on the subscribed channel")
	}

	select {
	case <-other:
		t.Fatal("party-2 subscriber should not receive party-1 events")
	default:
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()

	ch := b.Subscribe("party-1")
	b.Unsubscribe("party-1", ch)

	b.Publish("party-1", PartyEvent{Type: EventPlayerLeft})

	select {
	case <-ch:
		t.Fatal("unsubscribed channel should not receive events")
	default:
	}
}

func TestBrokerDropsWhenSlow(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("party-1")

	// Overfill the subscriber buffer; Publish must not block.
	for i := 0; i < 32; i++ {
		b.Publish("party-1", PartyEvent{Type: EventScoreUpdated})
	}

	if got := len(ch); got != cap(ch) {
		t.Errorf("buffered = %d, want full buffer %d", got, cap(ch))
	}
}
