package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/globetrotter-game/api/internal/quiz"
)

type AnswerRequest struct {
	DestinationID *int   `json:"destinationId"`
	UserAnswer    string `json:"userAnswer"`
	UserID        string `json:"userID"`
}

type AnswerResponse struct {
	Correct       bool       `json:"correct"`
	CorrectAnswer string     `json:"correctAnswer"`
	FunFact       string     `json:"funFact"`
	UpdatedScore  Score      `json:"updatedScore"`
	Party         *PartyView `json:"party,omitempty"`
	PartyError    bool       `json:"partyError,omitempty"`
}

func handleAnswer(logger *slog.Logger, store Store, engine *quiz.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.DestinationID == nil || req.UserAnswer == "" || req.UserID == "" {
			writeError(w, http.StatusBadRequest, "invalid request - required fields: destinationId, userAnswer, userID")
			return
		}

		result, err := engine.Evaluate(*req.DestinationID, req.UserAnswer)
		if errors.Is(err, quiz.ErrUnknownQuestion) {
			writeError(w, http.StatusBadRequest, "invalid request - required fields: destinationId, userAnswer, userID")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		user, err := store.ApplyAnswer(r.Context(), req.UserID, result.Correct)
		if errors.Is(err, ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			// The evaluation itself succeeded; return it alongside the error
			// so the client still learns the outcome.
			logger.Error("updating score failed", "user_id", req.UserID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error":         "failed to update user score",
				"correct":       result.Correct,
				"correctAnswer": result.CorrectAnswer,
				"funFact":       result.FunFact,
			})
			return
		}

		resp := AnswerResponse{
			Correct:       result.Correct,
			CorrectAnswer: result.CorrectAnswer,
			FunFact:       result.FunFact,
			UpdatedScore:  user.Score,
		}

		// The score is committed at this point; a failing party lookup only
		// degrades the response, it never rolls the answer back.
		if user.PartyID != "" {
			party, err := store.GetParty(r.Context(), user.PartyID)
			switch {
			case errors.Is(err, ErrPartyNotFound):
				logger.Warn("user references missing party", "user_id", user.UserID, "party_id", user.PartyID)
			case err != nil:
				logger.Error("refreshing party view failed", "party_id", user.PartyID, "error", err)
				resp.PartyError = true
			default:
				resp.Party = &party
				broker.Publish(user.PartyID, PartyEvent{
					Type:     EventScoreUpdated,
					Username: user.Username,
					Correct:  result.Correct,
					Score:    &user.Score,
				})
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
