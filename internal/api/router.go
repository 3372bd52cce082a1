// Package api wires net/http routing to the handlers and middleware
// that bridge HTTP/WebSocket transport into the tetris core, mirroring
// cmd/api/main.go's router construction (SPEC_FULL.md §1).
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tetris-arena/backend/internal/api/handlers"
	"github.com/tetris-arena/backend/internal/api/middleware"
	"github.com/tetris-arena/backend/internal/scorestore"
	"github.com/tetris-arena/backend/internal/transport"
	"github.com/tetris-arena/backend/internal/tetris"
)

// NewRouter builds the full HTTP router: CORS, protected game routes,
// the WebSocket upgrade endpoint, and the optional results routes.
func NewRouter(registry *tetris.Registry, hub *transport.Hub, store scorestore.ScoreStore) http.Handler {
	gameHandler := handlers.NewGameHandler(registry, hub)
	resultHandler := handlers.NewResultHandler(store)

	router := mux.NewRouter()
	router.Use(middleware.CORSHandler())

	game := router.PathPrefix("/api/game").Subrouter()
	game.Use(middleware.AuthMiddleware)
	game.HandleFunc("/room/{roomId}", gameHandler.CreateRoom).Methods(http.MethodPost)
	game.HandleFunc("/room/{roomId}/join", gameHandler.JoinRoom).Methods(http.MethodPost)
	game.HandleFunc("/room/{roomId}/status", gameHandler.GetRoomStatus).Methods(http.MethodGet)
	game.HandleFunc("/room/{roomId}", gameHandler.DeleteRoom).Methods(http.MethodDelete)

	// The WebSocket endpoint authenticates via a post-upgrade frame
	// rather than AuthMiddleware, matching game_handler.go's
	// HandleWebSocketConnection handshake (SPEC_FULL.md §1).
	router.HandleFunc("/api/game/ws/{roomId}", gameHandler.HandleWebSocketConnection)

	results := router.PathPrefix("/api/results").Subrouter()
	results.HandleFunc("/top", resultHandler.TopScores).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return router
}
