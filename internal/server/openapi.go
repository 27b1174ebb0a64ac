package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/globetrotter-game/api/internal/quiz"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Globetrotter API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Globetrotter geography guessing game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/destinations/random
	getRandom, _ := r.NewOperationContext(http.MethodGet, "/api/destinations/random")
	getRandom.SetSummary("Random question")
	getRandom.SetDescription("Returns a random destination question: one or two clues and a shuffled set of up to four city options.")
	getRandom.AddRespStructure(quiz.Question{}, openapi.WithHTTPStatus(http.StatusOK))
	getRandom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(getRandom)

	// POST /api/destinations/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/destinations/answer")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Checks an answer against the question's destination, updates the user's score, and returns the party scoreboard when the user is in a party.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postAnswer)

	// POST /api/users/register
	postRegister, _ := r.NewOperationContext(http.MethodPost, "/api/users/register")
	postRegister.SetSummary("Register user")
	postRegister.SetDescription("Creates a user. Joins the given party, or creates a new party with the user as sole member when no partyID is supplied.")
	postRegister.AddReqStructure(RegisterRequest{})
	postRegister.AddRespStructure(RegisterResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postRegister)

	// GET /api/users/{id}
	getUser, _ := r.NewOperationContext(http.MethodGet, "/api/users/{id}")
	getUser.SetSummary("Get user")
	getUser.SetDescription("Returns a user with their current score and party view.")
	getUser.AddRespStructure(UserResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getUser.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getUser)

	// GET /api/parties/{id}
	getParty, _ := r.NewOperationContext(http.MethodGet, "/api/parties/{id}")
	getParty.SetSummary("Get party")
	getParty.SetDescription("Returns a party with member scores resolved from the user records.")
	getParty.AddRespStructure(PartyView{}, openapi.WithHTTPStatus(http.StatusOK))
	getParty.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getParty)

	// POST /api/parties/{partyID}/join
	postJoin, _ := r.NewOperationContext(http.MethodPost, "/api/parties/{partyID}/join")
	postJoin.SetSummary("Join party")
	postJoin.SetDescription("Adds a user to the party, removing them from any previous party first.")
	postJoin.AddReqStructure(PartyMemberRequest{})
	postJoin.AddRespStructure(PartyView{}, openapi.WithHTTPStatus(http.StatusOK))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postJoin)

	// POST /api/parties/{partyID}/leave
	postLeave, _ := r.NewOperationContext(http.MethodPost, "/api/parties/{partyID}/leave")
	postLeave.SetSummary("Leave party")
	postLeave.SetDescription("Removes a user from the party. A party emptied by the departure is deleted.")
	postLeave.AddReqStructure(PartyMemberRequest{})
	postLeave.AddRespStructure(LeaveResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLeave.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postLeave.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postLeave.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postLeave)

	// GET /api/parties/{id}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/parties/{id}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of party events: joins, departures, and score updates.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	getEvents.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getEvents)

	// GET /api/parties/{id}/live
	getLive, _ := r.NewOperationContext(http.MethodGet, "/api/parties/{id}/live")
	getLive.SetSummary("Live scoreboard")
	getLive.SetDescription("WebSocket pushing a party scoreboard snapshot on every party event.")
	getLive.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	getLive.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getLive)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
