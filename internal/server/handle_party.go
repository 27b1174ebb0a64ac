package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type PartyMemberRequest struct {
	UserID string `json:"userId"`
}

type LeaveResponse struct {
	Message string     `json:"message"`
	Party   *PartyView `json:"party,omitempty"`
	Deleted bool       `json:"deleted,omitempty"`
}

func handleGetParty(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		party, err := store.GetParty(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrPartyNotFound) {
			writeError(w, http.StatusNotFound, "party not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, party)
	}
}

func handlePartyJoin(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partyID := chi.URLParam(r, "partyID")

		var req PartyMemberRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, "valid user ID is required")
			return
		}

		party, err := store.JoinParty(r.Context(), partyID, req.UserID)
		switch {
		case errors.Is(err, ErrPartyNotFound):
			writeError(w, http.StatusNotFound, "party not found")
			return
		case errors.Is(err, ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
			return
		case errors.Is(err, ErrAlreadyMember):
			writeError(w, http.StatusConflict, "user is already in this party")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(partyID, PartyEvent{
			Type:     EventPlayerJoined,
			Username: memberName(party, req.UserID),
		})

		writeJSON(w, http.StatusOK, party)
	}
}

func handlePartyLeave(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partyID := chi.URLParam(r, "partyID")

		var req PartyMemberRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, "valid user ID is required")
			return
		}

		result, err := store.LeaveParty(r.Context(), partyID, req.UserID)
		switch {
		case errors.Is(err, ErrPartyNotFound):
			writeError(w, http.StatusNotFound, "party not found")
			return
		case errors.Is(err, ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
			return
		case errors.Is(err, ErrNotAMember):
			writeError(w, http.StatusConflict, "user is not in this party")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if result.Deleted {
			writeJSON(w, http.StatusOK, LeaveResponse{
				Message: "left party successfully, party was deleted as it's now empty",
				Deleted: true,
			})
			return
		}

		broker.Publish(partyID, PartyEvent{Type: EventPlayerLeft})

		writeJSON(w, http.StatusOK, LeaveResponse{
			Message: "left party successfully",
			Party:   result.Party,
		})
	}
}

func memberName(party PartyView, userID string) string {
	for _, m := range party.Members {
		if m.ID == userID {
			return m.Username
		}
	}
	return ""
}
