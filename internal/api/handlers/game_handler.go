package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	apimw "github.com/tetris-arena/backend/internal/api/middleware"
	"github.com/tetris-arena/backend/internal/models"
	"github.com/tetris-arena/backend/internal/tetris"
	"github.com/tetris-arena/backend/internal/transport"
)

// GameHandler bridges HTTP/WebSocket requests to the tetris Registry,
// generalizing game_handler.go's chi-routed, passcode-keyed handlers to
// gorilla/mux path variables and arbitrary room ids (SPEC_FULL.md §3).
type GameHandler struct {
	registry   *tetris.Registry
	hub        *transport.Hub
	dispatcher *transport.Dispatcher
}

// NewGameHandler wires a GameHandler to registry and hub.
func NewGameHandler(registry *tetris.Registry, hub *transport.Hub) *GameHandler {
	return &GameHandler{
		registry:   registry,
		hub:        hub,
		dispatcher: transport.NewDispatcher(registry, hub),
	}
}

func writeJSONResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSONResponse(w, status, map[string]string{"error": message})
}

// CreateRoom ensures a room exists for the path's roomId and responds
// 201 with that roomId only; the room's phase and roster are not
// included. Mirrors game_handler.go's CreateRoom.
func (h *GameHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	if roomID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "roomId is required")
		return
	}
	h.registry.GetOrCreate(roomID)
	writeJSONResponse(w, http.StatusCreated, map[string]string{"roomId": roomID})
}

// JoinRoom adds the authenticated user to a room via plain HTTP,
// mirroring game_handler.go's JoinRoom for clients that join before
// opening their WebSocket.
func (h *GameHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	userID, ok := apimw.GetUserIDFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "missing user id")
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}
	if body.Name == "" {
		body.Name = userID
	}

	connID := uuid.New().String()
	ps, gerr := h.registry.Join(roomID, userID, body.Name, connID)
	if gerr != nil {
		writeErrorResponse(w, statusFor(gerr.Code()), gerr.Error())
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"connId": connID,
		"player": ps.ToInfo(roomID),
	})
}

// GetRoomStatus reports whether a room exists without mutating it.
func (h *GameHandler) GetRoomStatus(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	_, ok := h.registry.Get(roomID)
	if !ok {
		writeErrorResponse(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"roomId": roomID})
}

// DeleteRoom tears a room down, matching game_handler.go's delete route.
func (h *GameHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	h.registry.CloseRoom(roomID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleWebSocketConnection upgrades the HTTP request to a WebSocket,
// then waits for a client-sent auth frame before joining the room,
// exactly as game_handler.go's HandleWebSocketConnection does
// (SPEC_FULL.md §1, §3).
func (h *GameHandler) HandleWebSocketConnection(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	conn, err := transport.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[GameHandler] upgrade failed: %v", err)
		return
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return
	}
	var authFrame models.Frame
	if err := json.Unmarshal(raw, &authFrame); err != nil || authFrame.Event != "auth" {
		conn.Close()
		return
	}
	var authData models.AuthData
	if err := json.Unmarshal(authFrame.Data, &authData); err != nil {
		conn.Close()
		return
	}
	userID, err := apimw.AuthenticateWSHandshake(authData.Token)
	if err != nil {
		conn.Close()
		return
	}

	var joinFrame models.Frame
	var joinData models.JoinData
	_, raw, err = conn.ReadMessage()
	if err == nil {
		if json.Unmarshal(raw, &joinFrame) == nil {
			json.Unmarshal(joinFrame.Data, &joinData)
		}
	}
	name := joinData.Name
	if name == "" {
		name = userID
	}

	connID := uuid.New().String()
	ps, gerr := h.registry.Join(roomID, userID, name, connID)
	if gerr != nil {
		conn.WriteJSON(models.Frame{Event: "error"})
		conn.Close()
		return
	}

	wsConn := transport.NewWSConnection(connID, conn,
		func(id string, raw []byte) { h.dispatcher.HandleMessage(id, raw) },
		func() {
			h.hub.Unregister(roomID, connID)
			h.registry.Leave(connID)
		},
	)
	h.hub.Register(roomID, connID, wsConn)

	log.Printf("[GameHandler] %s joined room %s as %s", ps.ID, roomID, connID)
}

func statusFor(code tetris.ErrorKind) int {
	switch code {
	case tetris.ErrRoomNotFound, tetris.ErrNotInRoom:
		return http.StatusNotFound
	case tetris.ErrRoomFull, tetris.ErrAlreadyJoined, tetris.ErrNotWaiting, tetris.ErrNotPlaying,
		tetris.ErrNameTaken, tetris.ErrGameInProgress:
		return http.StatusConflict
	case tetris.ErrNotHost:
		return http.StatusForbidden
	case tetris.ErrIllegalMove, tetris.ErrUnknownCommand:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
