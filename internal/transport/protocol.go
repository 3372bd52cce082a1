package transport

import (
	"encoding/json"
	"log"

	"github.com/tetris-arena/backend/internal/models"
	"github.com/tetris-arena/backend/internal/tetris"
)

// Dispatcher turns inbound wire frames into Registry calls and routes
// a Room's outbound events back onto the wire via Hub. It is the
// generalization of game_handler.go's per-connection message loop,
// which inlined auth + room lookup + a type switch on the decoded
// frame; here that is split into a reusable, transport-testable unit.
type Dispatcher struct {
	registry *tetris.Registry
	hub      *Hub
}

// NewDispatcher binds a Dispatcher to registry and hub.
func NewDispatcher(registry *tetris.Registry, hub *Hub) *Dispatcher {
	return &Dispatcher{registry: registry, hub: hub}
}

// HandleMessage decodes one inbound frame from connID and applies it to
// the registry, accepting both the named-event wire vocabulary
// (movePiece/rotatePiece/hardDrop) and the generic gameAction{type: ...}
// envelope (SPEC_FULL.md §1, spec.md §9(c)). The registry resolves
// connID's room via its own connection index, so no roomID is needed
// here (spec.md §3). Any unrecognized event name produces an
// UnknownCommand error frame sent back to the originating connection
// only.
func (d *Dispatcher) HandleMessage(connID string, raw []byte) {
	var frame models.Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		d.sendError(connID, tetris.UnknownCommand("<malformed frame>"))
		return
	}

	switch frame.Event {
	case "start":
		d.respondErr(connID, d.registry.Start(connID))
	case "restart":
		d.respondErr(connID, d.registry.Restart(connID))
	case "movePiece":
		d.dispatchDirectional(connID, frame.Data)
	case "rotatePiece":
		d.respondErr(connID, d.registry.Submit(connID, tetris.CmdRotate))
	case "hardDrop":
		d.respondErr(connID, d.registry.Submit(connID, tetris.CmdHardDrop))
	case "gameAction":
		d.dispatchGameAction(connID, frame.Data)
	default:
		d.sendError(connID, tetris.UnknownCommand(frame.Event))
	}
}

// movePieceData is the payload of a movePiece frame, carrying which way
// to move.
type movePieceData struct {
	Direction string `json:"direction"`
}

func (d *Dispatcher) dispatchDirectional(connID string, data json.RawMessage) {
	var mv movePieceData
	if err := json.Unmarshal(data, &mv); err != nil {
		d.sendError(connID, tetris.UnknownCommand("movePiece"))
		return
	}
	var cmd tetris.CommandKind
	switch mv.Direction {
	case "left":
		cmd = tetris.CmdMoveLeft
	case "right":
		cmd = tetris.CmdMoveRight
	case "down":
		cmd = tetris.CmdMoveDown
	default:
		d.sendError(connID, tetris.UnknownCommand("movePiece:"+mv.Direction))
		return
	}
	d.respondErr(connID, d.registry.Submit(connID, cmd))
}

func (d *Dispatcher) dispatchGameAction(connID string, data json.RawMessage) {
	var action models.GameActionData
	if err := json.Unmarshal(data, &action); err != nil {
		d.sendError(connID, tetris.UnknownCommand("gameAction"))
		return
	}
	var cmd tetris.CommandKind
	switch action.Type {
	case "move":
		d.dispatchDirectional(connID, data)
		return
	case "moveLeft", "left":
		cmd = tetris.CmdMoveLeft
	case "moveRight", "right":
		cmd = tetris.CmdMoveRight
	case "moveDown", "down":
		cmd = tetris.CmdMoveDown
	case "rotate":
		cmd = tetris.CmdRotate
	case "hardDrop":
		cmd = tetris.CmdHardDrop
	default:
		d.sendError(connID, tetris.UnknownCommand("gameAction:"+action.Type))
		return
	}
	d.respondErr(connID, d.registry.Submit(connID, cmd))
}

func (d *Dispatcher) respondErr(connID string, err *tetris.GameError) {
	if err != nil {
		d.sendError(connID, err)
	}
}

func (d *Dispatcher) sendError(connID string, err *tetris.GameError) {
	log.Printf("[Dispatcher] %s -> %s", connID, err.Error())

	d.hub.mu.RLock()
	var target Connection
	for _, conns := range d.hub.rooms {
		if c, ok := conns[connID]; ok {
			target = c
			break
		}
	}
	d.hub.mu.RUnlock()

	if target != nil {
		target.Send("error", map[string]any{"code": err.Code(), "message": err.Error()})
	}
}
