// Package models holds the wire-level JSON envelope shared between the
// transport and API layers.
package models

import "encoding/json"

// Frame is the envelope every WebSocket message travels in, both
// inbound commands and outbound events (spec.md §6).
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// GameActionData is the payload of the generic gameAction envelope
// (event: "gameAction", data: {type: "move", direction: "left"|"right"|"down"},
// or data: {type: "moveLeft"|"moveRight"|"moveDown"|"left"|"right"|"down"|"rotate"|"hardDrop"}),
// one of the two accepted wire vocabularies (SPEC_FULL.md §1, spec.md §9(c)).
// The direction of a "move" action is decoded by the transport's
// movePiece handler, not by this type.
type GameActionData struct {
	Type string `json:"type"`
}

// JoinData is the payload of a join request frame.
type JoinData struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

// AuthData is the payload of the pre-registration auth handshake frame
// a client sends immediately after the WebSocket upgrade, mirroring
// GITRIS-backend's HandleWebSocketConnection handshake.
type AuthData struct {
	Token string `json:"token"`
}
