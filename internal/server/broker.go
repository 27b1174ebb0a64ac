package server

import (
	"encoding/json"
	"sync"
)

// PartyEvent is the payload published to party subscribers.
type PartyEvent struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Correct  bool   `json:"correct,omitempty"`
	Score    *Score `json:"score,omitempty"`
}

// Event types published by the handlers.
const (
	EventPlayerJoined = "player_joined"
	EventPlayerLeft   = "player_left"
	EventScoreUpdated = "score_updated"
)

// Broker is an in-process pub/sub for party events, keyed by party ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given party.
func (b *Broker) Subscribe(partyID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[partyID] == nil {
		b.subs[partyID] = make(map[chan []byte]struct{})
	}
	b.subs[partyID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the party's subscribers.
func (b *Broker) Unsubscribe(partyID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[partyID], ch)
	if len(b.subs[partyID]) == 0 {
		delete(b.subs, partyID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given party.
func (b *Broker) Publish(partyID string, event PartyEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[partyID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
