package tetris

// PlayerState is one participant's authoritative game state within a
// Room: their board, their position in the shared piece stream, and
// their score bookkeeping (spec.md §3, §4.4).
type PlayerState struct {
	ID       string
	Name     string
	Conn     string // transport-assigned connection id, used as the room-scoped routing key

	Board   Board
	Current *Piece
	Next    *Piece

	// Cursor counts pieces consumed (locked) by this player. At spawn
	// time Cursor is 0 and Current is bag.At(0), Next is bag.At(1); each
	// lock increments Cursor before drawing the new Next.
	Cursor int

	Score        int
	LinesCleared int
	Alive        bool

	// IsHost marks the player allowed to Start/Restart the room. The
	// first player to join a room is host; if the host leaves, the
	// next-longest-joined remaining player is promoted (spec.md §4.5).
	IsHost bool

	// PendingPenalty accumulates penalty rows earned by other players'
	// multi-line clears, applied at the start of this player's next
	// gravity tick (spec.md §4.4 step 1 / §9 design notes).
	PendingPenalty int
}

// NewPlayerState creates a fresh player bound to conn, drawing its first
// two pieces from bag starting at index 0.
func NewPlayerState(id, name, conn string, bag *PieceBag) *PlayerState {
	ps := &PlayerState{
		ID:    id,
		Name:  name,
		Conn:  conn,
		Board: NewBoard(),
		Alive: true,
	}
	ps.Current = NewPiece(bag.At(0))
	ps.Next = NewPiece(bag.At(1))
	return ps
}

// Advance increments Cursor, promotes Next to Current, and draws a
// fresh Next from bag. It does not touch the board: the caller locks
// Current into the board before calling it.
func (ps *PlayerState) Advance(bag *PieceBag) {
	ps.Cursor++
	ps.Current = ps.Next
	ps.Next = NewPiece(bag.At(ps.Cursor + 1))
}

// Spectrum returns this player's column-height profile, broadcast to
// opponents as their view of this player's board (spec.md §4.2, §6).
func (ps *PlayerState) Spectrum() [BoardWidth]int {
	return ps.Board.Spectrum()
}

// Info is the wire-facing snapshot of a player's identity and standing,
// the shape spec.md §6 specifies for roster entries in playerJoined/
// gameStarted/gameEnded.
type Info struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	RoomName     string          `json:"roomName"`
	IsHost       bool            `json:"isHost"`
	IsAlive      bool            `json:"isAlive"`
	Score        int             `json:"score"`
	LinesCleared int             `json:"linesCleared"`
	Spectrum     [BoardWidth]int `json:"spectrum"`
}

// ToInfo returns the wire snapshot for this player, tagged with the
// room it belongs to.
func (ps *PlayerState) ToInfo(roomName string) Info {
	return Info{
		ID:           ps.ID,
		Name:         ps.Name,
		RoomName:     roomName,
		IsHost:       ps.IsHost,
		IsAlive:      ps.Alive,
		Score:        ps.Score,
		LinesCleared: ps.LinesCleared,
		Spectrum:     ps.Spectrum(),
	}
}
