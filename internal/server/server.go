// Package server lets browsers and scripts ask for moves over HTTP, or play
// a game against the resolver over a websocket.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cricklet/brothfish/internal/backend"
	"github.com/cricklet/brothfish/internal/game"
	. "github.com/cricklet/brothfish/internal/helpers"
	"github.com/cricklet/brothfish/internal/resolver"
)

type Server struct {
	native    Optional[backend.Backend]
	generator game.MoveGenerator
	logger    zerolog.Logger
	options   []resolver.Option

	upgrader websocket.Upgrader
}

// New serves resolvers sharing one native backend. options are applied to
// every resolver the server creates.
func New(native Optional[backend.Backend], generator game.MoveGenerator, logger zerolog.Logger, options ...resolver.Option) *Server {
	return &Server{
		native:    native,
		generator: generator,
		logger:    logger,
		options:   options,
	}
}

func (s *Server) newResolver(logger zerolog.Logger) *resolver.MoveResolver {
	options := append([]resolver.Option{}, s.options...)
	options = append(options, resolver.WithLogger(logger))
	return resolver.New(s.native, s.generator, options...)
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	router.HandleFunc("/resolve", s.resolve).Methods(http.MethodPost)
	router.HandleFunc("/ws", s.ws)
	return router
}

type HealthResponse struct {
	Native bool `json:"native"`
}

type ResolveRequest struct {
	Fen   string `json:"fen"`
	Depth *int   `json:"depth"`
}

type ResolveResponse struct {
	Move     string `json:"move"`
	Nodes    int    `json:"nodes"`
	Source   string `json:"source"`
	Verified bool   `json:"verified"`
	Failure  string `json:"failure,omitempty"`
	Eval     *int   `json:"eval,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Native: s.native.HasValue()})
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	var request ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{"invalid request: " + err.Error()})
		return
	}

	fen := request.Fen
	if fen == "" {
		fen = game.StartFen
	}
	board, err := game.PositionFromFen(fen)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}

	res := s.newResolver(s.logger)
	if request.Depth != nil {
		res.Configure(*request.Depth)
	}

	result := res.ResolveVerbose(board)
	response := ResolveResponse{
		Nodes:    result.Stats.Nodes,
		Source:   result.Stats.Source.String(),
		Verified: result.Verified,
	}
	if result.Move.HasValue() {
		response.Move = result.Move.Value().String()
	}
	if result.Stats.Failure != nil {
		response.Failure = result.Stats.Failure.Error()
	}
	if eval := res.Evaluate(board); eval.HasValue() {
		value := eval.Value()
		response.Eval = &value
	}

	s.logger.Info().Str("fen", fen).Str("move", response.Move).Str("source", response.Source).Msg("resolved")
	writeJSON(w, http.StatusOK, response)
}
