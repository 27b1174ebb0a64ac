package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Globetrotter API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, deps.DB, deps.Redis))

	r.Route("/api", func(r chi.Router) {
		if deps.Redis != nil {
			r.Use(rateLimit(logger, deps.Redis, deps.RateLimitRPS))
		}

		r.Get("/destinations/random", handleQuestion(deps.Engine))
		r.Post("/destinations/answer", handleAnswer(logger, deps.Store, deps.Engine, broker))

		r.Post("/users/register", handleRegister(deps.Store, broker))
		r.Get("/users/{id}", handleGetUser(logger, deps.Store))

		r.Get("/parties/{id}", handleGetParty(deps.Store))
		r.Post("/parties/{partyID}/join", handlePartyJoin(deps.Store, broker))
		r.Post("/parties/{partyID}/leave", handlePartyLeave(deps.Store, broker))
		r.Get("/parties/{id}/events", handleEvents(deps.Store, broker))
		r.Get("/parties/{id}/live", handleLive(logger, deps.Store, broker))
	})
}
