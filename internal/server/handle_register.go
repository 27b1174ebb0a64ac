package server

import (
	"errors"
	"net/http"
	"strings"
)

type RegisterRequest struct {
	Username string `json:"username"`
	PartyID  string `json:"partyID"`
}

type RegisterResponse struct {
	UserID   string    `json:"userID"`
	Username string    `json:"username"`
	Score    Score     `json:"score"`
	PartyID  string    `json:"partyID"`
	Party    PartyView `json:"party"`
}

func handleRegister(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" {
			writeError(w, http.StatusBadRequest, "valid username is required")
			return
		}

		user, party, err := store.RegisterUser(r.Context(), req.Username, req.PartyID)
		if errors.Is(err, ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "username already exists")
			return
		}
		if errors.Is(err, ErrPartyNotFound) {
			writeError(w, http.StatusNotFound, "party with ID "+req.PartyID+" not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Joining an existing party is visible to its members; a party
		// created for a solo registrant has nobody listening yet.
		if req.PartyID != "" {
			broker.Publish(party.ID, PartyEvent{
				Type:     EventPlayerJoined,
				Username: user.Username,
			})
		}

		writeJSON(w, http.StatusOK, RegisterResponse{
			UserID:   user.UserID,
			Username: user.Username,
			Score:    user.Score,
			PartyID:  user.PartyID,
			Party:    party,
		})
	}
}
