package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// liveSnapshot is one frame on the live scoreboard socket: the party
// view as of the triggering event, plus the event itself.
type liveSnapshot struct {
	Party PartyView   `json:"party"`
	Event *PartyEvent `json:"event,omitempty"`
}

// handleLive streams party scoreboard snapshots over a websocket: one
// frame on connect, then one per party event.
func handleLive(logger *slog.Logger, store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partyID, err := requireParty(r, store)
		if errors.Is(err, ErrPartyNotFound) {
			writeError(w, http.StatusNotFound, "party not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		// The client never sends data; CloseRead keeps control frames
		// flowing and cancels the context when the peer goes away.
		ctx := conn.CloseRead(r.Context())

		ch := broker.Subscribe(partyID)
		defer broker.Unsubscribe(partyID, ch)

		if err := writeSnapshot(ctx, conn, store, partyID, nil); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case data := <-ch:
				var event PartyEvent
				if err := json.Unmarshal(data, &event); err != nil {
					continue
				}
				if err := writeSnapshot(ctx, conn, store, partyID, &event); err != nil {
					return
				}
			}
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, store Store, partyID string, event *PartyEvent) error {
	// The party may have been garbage-collected between the event and
	// this read; close cleanly in that case.
	party, err := store.GetParty(ctx, partyID)
	if err != nil {
		conn.Close(websocket.StatusNormalClosure, "party gone")
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return wsjson.Write(wctx, conn, liveSnapshot{Party: party, Event: event})
}
