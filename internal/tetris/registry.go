package tetris

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks every live Room by id, handing out short-lived
// lookups so that actual game-state mutation always happens inside a
// Room's own actor goroutine rather than under the registry's lock
// (spec.md §5: "Registry work must be short... game state mutation
// never happens under the registry lock").
type Registry struct {
	mu         sync.Mutex
	rooms      map[string]*Room
	connToRoom map[string]string
	sink       EventSink
}

// NewRegistry creates an empty room registry whose rooms all emit
// events to sink.
func NewRegistry(sink EventSink) *Registry {
	return &Registry{
		rooms:      make(map[string]*Room),
		connToRoom: make(map[string]string),
		sink:       sink,
	}
}

// GetOrCreate returns the room for id, creating it with a fresh random
// seed if it doesn't yet exist. The seed, once chosen, is fixed for the
// room's lifetime (spec.md §4.3: one seed per room).
func (reg *Registry) GetOrCreate(id string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if room, ok := reg.rooms[id]; ok {
		return room
	}
	seed := int64(uuid.New().ID())
	room := NewRoom(id, seed, reg.sink)
	reg.rooms[id] = room
	return room
}

// Get returns the room for id without creating it.
func (reg *Registry) Get(id string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[id]
	return room, ok
}

// Join looks up or creates room id and joins a player to it. This is
// the main entry point used by the transport layer on a new
// connection. On success conn is indexed against roomID so later
// conn-only calls (Leave/Start/Restart/Submit) can resolve their room
// without the caller tracking roomID separately (spec.md §3).
func (reg *Registry) Join(roomID, playerID, name, conn string) (*PlayerState, *GameError) {
	room := reg.GetOrCreate(roomID)
	ps, gerr := room.Join(playerID, name, conn)
	if gerr != nil {
		return ps, gerr
	}
	reg.mu.Lock()
	reg.connToRoom[conn] = roomID
	reg.mu.Unlock()
	return ps, gerr
}

// roomForConn resolves conn's current room via the connToRoom index.
func (reg *Registry) roomForConn(conn string) (*Room, string, bool) {
	reg.mu.Lock()
	roomID, ok := reg.connToRoom[conn]
	reg.mu.Unlock()
	if !ok {
		return nil, "", false
	}
	room, ok := reg.Get(roomID)
	return room, roomID, ok
}

// RoomIDFor returns the room id conn last joined, if any. Used by the
// transport layer to unregister a socket from its Hub room on
// disconnect without separately tracking roomID.
func (reg *Registry) RoomIDFor(conn string) (string, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	roomID, ok := reg.connToRoom[conn]
	return roomID, ok
}

// Leave removes conn's player from whichever room it joined, tears the
// room down if the departure leaves it empty, and forgets conn's
// mapping (spec.md §4.5: "If the room becomes empty, destroy it").
func (reg *Registry) Leave(conn string) *GameError {
	room, roomID, ok := reg.roomForConn(conn)
	if !ok {
		return ErrNotInRoomErr
	}
	gerr := room.Leave(conn)
	reg.mu.Lock()
	delete(reg.connToRoom, conn)
	reg.mu.Unlock()
	if gerr == nil && room.IsEmpty() {
		reg.CloseRoom(roomID)
	}
	return gerr
}

// Start transitions conn's room from waiting to playing, subject to
// Room.Start's host check.
func (reg *Registry) Start(conn string) *GameError {
	room, _, ok := reg.roomForConn(conn)
	if !ok {
		return ErrNotInRoomErr
	}
	return room.Start(conn)
}

// Restart resets conn's room back to waiting, subject to Room.Restart's
// host check.
func (reg *Registry) Restart(conn string) *GameError {
	room, _, ok := reg.roomForConn(conn)
	if !ok {
		return ErrNotInRoomErr
	}
	return room.Restart(conn)
}

// Submit routes a player command to conn's room.
func (reg *Registry) Submit(conn string, cmd CommandKind) *GameError {
	room, _, ok := reg.roomForConn(conn)
	if !ok {
		return ErrNotInRoomErr
	}
	return room.Submit(conn, cmd)
}

// CloseRoom tears down and forgets room id, releasing its actor
// goroutine. Used on graceful server shutdown and when a room becomes
// permanently empty.
func (reg *Registry) CloseRoom(roomID string) {
	reg.mu.Lock()
	room, ok := reg.rooms[roomID]
	if ok {
		delete(reg.rooms, roomID)
	}
	for conn, id := range reg.connToRoom {
		if id == roomID {
			delete(reg.connToRoom, conn)
		}
	}
	reg.mu.Unlock()
	if ok {
		room.Close()
	}
}

// Shutdown closes every room, used during graceful server shutdown
// (mirrors session_manager.go's SessionManager.Shutdown).
func (reg *Registry) Shutdown() {
	reg.mu.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for id, room := range reg.rooms {
		rooms = append(rooms, room)
		delete(reg.rooms, id)
	}
	reg.mu.Unlock()
	for _, room := range rooms {
		room.Close()
	}
}
