package server

import (
	"errors"
	"net/http"

	"github.com/globetrotter-game/api/internal/quiz"
)

func handleQuestion(engine *quiz.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := engine.NextQuestion()
		if errors.Is(err, quiz.ErrEmptyCatalog) {
			writeError(w, http.StatusInternalServerError, "no destinations available")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, q)
	}
}
