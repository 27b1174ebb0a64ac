package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type UserResponse struct {
	UserID   string     `json:"userID"`
	Username string     `json:"username"`
	Score    Score      `json:"score"`
	PartyID  string     `json:"partyID,omitempty"`
	Party    *PartyView `json:"party,omitempty"`
}

func handleGetUser(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "id")

		user, err := store.GetUser(r.Context(), userID)
		if errors.Is(err, ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := UserResponse{
			UserID:   user.UserID,
			Username: user.Username,
			Score:    user.Score,
			PartyID:  user.PartyID,
		}

		if user.PartyID != "" {
			party, err := store.GetParty(r.Context(), user.PartyID)
			if err != nil {
				logger.Warn("party lookup for user failed", "user_id", userID, "party_id", user.PartyID, "error", err)
			} else {
				resp.Party = &party
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
