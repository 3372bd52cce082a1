// Package transport bridges the authoritative game core in
// internal/tetris to network connections. internal/tetris never
// imports this package; all wiring flows one way (spec.md §4.6, §9).
package transport

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/tetris-arena/backend/internal/tetris"
)

// Connection is a single client's full-duplex channel. The concrete
// WebSocket adapter in websocket.go implements this; tests can supply a
// fake to exercise Hub in isolation.
type Connection interface {
	ID() string
	Send(event string, payload any) error
	Close() error
}

// Hub fans internal/tetris events out to the Connections registered
// for each room, and is itself the tetris.EventSink every Room emits
// into. It is the direct generalization of session_manager.go's
// broadcast/BroadcastToSpecificClient pair from a single hardcoded
// 2-player session map to an arbitrary set of rooms.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Connection // roomID -> connID -> Connection
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]Connection)}
}

// Register associates conn with roomID under connID, so future events
// for that room can reach it.
func (h *Hub) Register(roomID, connID string, conn Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.rooms[roomID]
	if !ok {
		conns = make(map[string]Connection)
		h.rooms[roomID] = conns
	}
	conns[connID] = conn
}

// Unregister removes connID from roomID, pruning the room entry once
// it is empty.
func (h *Hub) Unregister(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(h.rooms, roomID)
	}
}

// Emit implements tetris.EventSink. An event with a non-empty Conn
// targets exactly that connection; otherwise it is broadcast to every
// connection currently registered for the event's room.
func (h *Hub) Emit(e tetris.Event) {
	h.mu.RLock()
	conns, ok := h.rooms[e.RoomID]
	if !ok {
		h.mu.RUnlock()
		return
	}
	targets := make([]Connection, 0, len(conns))
	if e.Conn != "" {
		if c, ok := conns[e.Conn]; ok {
			targets = append(targets, c)
		}
	} else {
		for _, c := range conns {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Send(string(e.Type), e.Payload); err != nil {
			log.Printf("[Hub] send %s to %s failed: %v", e.Type, c.ID(), err)
		}
	}
}

// RoomOf reports which connIDs are currently registered for roomID,
// mainly useful to tests and diagnostics.
func (h *Hub) RoomOf(roomID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(conns))
	for id := range conns {
		ids = append(ids, id)
	}
	return ids
}

// encodePayload marshals an event payload for logging/debugging use;
// the WebSocket adapter does its own marshaling inline in Send.
func encodePayload(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "<unencodable>"
	}
	return string(b)
}
