package tetris

import (
	"sync/atomic"
	"time"
)

// Phase is a Room's coarse lifecycle state (spec.md §4.4).
type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhasePlaying Phase = "playing"
	PhaseOver    Phase = "over"
)

// Direction is a horizontal move direction.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
)

// MaxRoomPlayers caps a room's roster (spec.md optional RoomFull kind,
// generalized from the teacher's hardcoded 2-player session to an
// N-player free-for-all; see SPEC_FULL.md §1).
const MaxRoomPlayers = 4

// FallInterval is the fixed gravity tick period. The teacher scales this
// per level (GameLoopSettings.InitialFallInterval); this server keeps a
// single constant rate, since per-level speedup is outside spec.md's
// scope.
const FallInterval = 1000 * time.Millisecond

// linesToPenalty converts a clear count into penalty rows sent to every
// opponent, matching classic multiplayer Tetris scoring: singles send
// nothing, doubles send 1, triples 2, tetrises 4 (spec.md §4.4 step 3).
func linesToPenalty(n int) int {
	switch n {
	case 2:
		return 1
	case 3:
		return 2
	case 4:
		return 4
	default:
		return 0
	}
}

// scoreForClear mirrors the teacher's CalculateScore shape (game_logic.go)
// without its level/back-to-back bookkeeping, since per-level speedup and
// back-to-back bonuses are outside spec.md's scope.
func scoreForClear(n int) int {
	switch n {
	case 1:
		return 100
	case 2:
		return 300
	case 3:
		return 500
	case 4:
		return 800
	default:
		return 0
	}
}

// Room is one authoritative game instance: a roster of players sharing
// a single deterministic piece stream, serialized through a single
// actor goroutine so that inbound commands, the gravity tick, and
// membership changes never race each other (spec.md §5).
//
// All mutation of Room state happens on the actor goroutine, reached by
// posting a closure to mailbox and waiting on the closure's own done
// signal. Public methods below are the only allowed entry points.
type Room struct {
	ID   string
	seed int64
	bag  *PieceBag

	players []*PlayerState
	byConn  map[string]*PlayerState

	phase Phase
	sink  EventSink

	mailbox  chan func()
	stopChan chan struct{}
	running  atomic.Bool
}

// NewRoom constructs a room bound to id and seed, emitting events to
// sink. The actor goroutine is started immediately and runs until
// Close.
func NewRoom(id string, seed int64, sink EventSink) *Room {
	r := &Room{
		ID:       id,
		seed:     seed,
		bag:      NewPieceBag(seed),
		byConn:   make(map[string]*PlayerState),
		phase:    PhaseWaiting,
		sink:     sink,
		mailbox:  make(chan func(), 32),
		stopChan: make(chan struct{}),
	}
	r.running.Store(true)
	go r.loop()
	return r
}

// loop is the Room's single actor goroutine: it serializes mailbox
// closures against the gravity ticker, matching the shape of
// `_examples/other_examples/...vector-racer-v2...room.go`'s gameLoop,
// generalized from a fixed 60Hz physics tick to a single FallInterval
// gravity tick plus a command mailbox (SPEC_FULL.md §4).
func (r *Room) loop() {
	ticker := time.NewTicker(FallInterval)
	defer ticker.Stop()

	for {
		select {
		case fn := <-r.mailbox:
			fn()
		case <-ticker.C:
			r.tick()
		case <-r.stopChan:
			return
		}
	}
}

// enqueue posts fn to the actor goroutine and blocks until it has run.
// Every exported Room method is implemented by enqueueing a closure so
// that no caller ever touches Room state off the actor goroutine.
func (r *Room) enqueue(fn func()) {
	if !r.running.Load() {
		return
	}
	done := make(chan struct{})
	select {
	case r.mailbox <- func() {
		fn()
		close(done)
	}:
		<-done
	case <-r.stopChan:
	}
}

// emit stamps e with this room's id and forwards it to the sink. Every
// internal emission point goes through this so sinks shared across
// multiple rooms (the Registry's EventSink) can route by RoomID.
func (r *Room) emit(e Event) {
	e.RoomID = r.ID
	r.sink.Emit(e)
}

// Close stops the actor goroutine. Idempotent.
func (r *Room) Close() {
	if r.running.Swap(false) {
		close(r.stopChan)
	}
}

// Join adds a new player bound to conn to the room's roster. Joining is
// only permitted while the room is waiting; spec.md leaves mid-match
// joins unspecified, and this repository treats that as disallowed via
// GameInProgress (SPEC_FULL.md keeps this conservative rather than
// invent a rejoin feature the spec never names). Names must be unique
// within the room (NameTaken), and the first successful joiner becomes
// host (spec.md §4.5).
func (r *Room) Join(id, name, conn string) (*PlayerState, *GameError) {
	var ps *PlayerState
	var gerr *GameError
	r.enqueue(func() {
		if r.phase != PhaseWaiting {
			gerr = ErrGameInProgressErr
			return
		}
		if _, exists := r.byConn[conn]; exists {
			gerr = ErrAlreadyJoinedErr
			return
		}
		if len(r.players) >= MaxRoomPlayers {
			gerr = ErrRoomFullErr
			return
		}
		for _, other := range r.players {
			if other.Name == name {
				gerr = ErrNameTakenErr
				return
			}
		}
		ps = NewPlayerState(id, name, conn, r.bag)
		ps.IsHost = len(r.players) == 0
		r.players = append(r.players, ps)
		r.byConn[conn] = ps

		r.emit(Event{
			Type: EventPlayerJoined,
			Payload: PlayerJoinedPayload{
				Player:  ps.ToInfo(r.ID),
				Players: r.rosterInfo(),
			},
		})
	})
	return ps, gerr
}

// Leave removes conn's player from the roster, wherever the room
// currently stands in its lifecycle.
func (r *Room) Leave(conn string) *GameError {
	var gerr *GameError
	r.enqueue(func() {
		ps, ok := r.byConn[conn]
		if !ok {
			gerr = ErrNotInRoomErr
			return
		}
		delete(r.byConn, conn)
		for i, p := range r.players {
			if p == ps {
				r.players = append(r.players[:i], r.players[i+1:]...)
				break
			}
		}
		r.emit(Event{
			Type: EventPlayerLeft,
			Payload: PlayerLeftPayload{
				PlayerID: ps.ID,
				Players:  r.rosterInfo(),
			},
		})
		if ps.IsHost && len(r.players) > 0 {
			r.players[0].IsHost = true
			r.emit(Event{
				Type:    EventNewHost,
				Payload: NewHostPayload{PlayerID: r.players[0].ID},
			})
		}
		if r.phase == PhasePlaying {
			r.checkGameEnd()
		}
	})
	return gerr
}

// IsEmpty reports whether the room currently has no joined players,
// used by the Registry to destroy a room once its roster empties
// (spec.md §4.5).
func (r *Room) IsEmpty() bool {
	var empty bool
	r.enqueue(func() {
		empty = len(r.players) == 0
	})
	return empty
}

// Start transitions the room from waiting to playing, snapshotting the
// initial board state for every player (spec.md §9(b): any roster of
// size >= 1 may start).
func (r *Room) Start(conn string) *GameError {
	var gerr *GameError
	r.enqueue(func() {
		ps, ok := r.byConn[conn]
		if !ok {
			gerr = ErrNotInRoomErr
			return
		}
		if !ps.IsHost {
			gerr = ErrNotHostErr
			return
		}
		if r.phase != PhaseWaiting {
			gerr = ErrNotWaitingErr
			return
		}
		if len(r.players) < 1 {
			gerr = ErrNotWaitingErr
			return
		}
		r.phase = PhasePlaying
		r.emit(Event{
			Type: EventGameStarted,
			Payload: GameStartedPayload{
				Players: r.rosterInfo(),
				Seed:    r.seed,
			},
		})
		for _, ps := range r.players {
			r.emitBoardUpdate(ps)
		}
	})
	return gerr
}

// Restart resets the room to waiting with the same roster, clearing
// boards and score but keeping players joined (SPEC_FULL.md's
// resolution of spec.md's RestartGame alternative).
func (r *Room) Restart(conn string) *GameError {
	var gerr *GameError
	r.enqueue(func() {
		ps, ok := r.byConn[conn]
		if !ok {
			gerr = ErrNotInRoomErr
			return
		}
		if !ps.IsHost {
			gerr = ErrNotHostErr
			return
		}
		r.phase = PhaseWaiting
		for _, ps := range r.players {
			ps.Board = NewBoard()
			ps.Cursor = 0
			ps.Score = 0
			ps.LinesCleared = 0
			ps.Alive = true
			ps.PendingPenalty = 0
			ps.Current = NewPiece(r.bag.At(0))
			ps.Next = NewPiece(r.bag.At(1))
		}
		r.emit(Event{
			Type:    EventRoomReset,
			Payload: RoomResetPayload{Players: r.rosterInfo()},
		})
	})
	return gerr
}

// CommandKind names the player-driven action vocabulary accepted during
// play (spec.md §4.4, §9(c)).
type CommandKind string

const (
	CmdMoveLeft  CommandKind = "moveLeft"
	CmdMoveRight CommandKind = "moveRight"
	CmdMoveDown  CommandKind = "moveDown"
	CmdRotate    CommandKind = "rotate"
	CmdHardDrop  CommandKind = "hardDrop"
)

// Submit applies a single player command, serialized through the actor
// goroutine alongside the gravity tick.
func (r *Room) Submit(conn string, cmd CommandKind) *GameError {
	var gerr *GameError
	r.enqueue(func() {
		ps, ok := r.byConn[conn]
		if !ok {
			gerr = ErrNotInRoomErr
			return
		}
		if r.phase != PhasePlaying {
			gerr = ErrNotPlayingErr
			return
		}
		if !ps.Alive {
			gerr = ErrPlayerEliminatedErr
			return
		}
		switch cmd {
		case CmdMoveLeft:
			gerr = r.handleMove(ps, DirLeft)
		case CmdMoveRight:
			gerr = r.handleMove(ps, DirRight)
		case CmdMoveDown:
			gerr = r.handleSoftDrop(ps)
		case CmdRotate:
			gerr = r.handleRotate(ps)
		case CmdHardDrop:
			gerr = r.handleHardDrop(ps)
		default:
			gerr = UnknownCommand(string(cmd))
		}
	})
	return gerr
}

func (r *Room) handleMove(ps *PlayerState, dir Direction) *GameError {
	dx := -1
	if dir == DirRight {
		dx = 1
	}
	if !ps.Board.IsValid(ps.Current, ps.Current.X+dx, ps.Current.Y) {
		return ErrIllegalMoveErr
	}
	ps.Current.X += dx
	r.emitPieceMoved(ps)
	return nil
}

// handleSoftDrop moves the current piece down one row without locking,
// distinct from gravity's and hard drop's auto-lock behavior: an
// illegal soft drop simply reports IllegalMove and leaves the piece in
// place for the next gravity tick or hard drop to resolve (spec.md §4.4,
// §6 Move(direction: "down")).
func (r *Room) handleSoftDrop(ps *PlayerState) *GameError {
	if !ps.Board.IsValid(ps.Current, ps.Current.X, ps.Current.Y+1) {
		return ErrIllegalMoveErr
	}
	ps.Current.Y++
	r.emitPieceMoved(ps)
	return nil
}

func (r *Room) handleRotate(ps *PlayerState) *GameError {
	trial := ps.Current.Clone()
	trial.Rotate()
	if !ps.Board.IsValid(trial, trial.X, trial.Y) {
		return ErrIllegalMoveErr
	}
	ps.Current.Shape = trial.Shape
	r.emitPieceMoved(ps)
	return nil
}

func (r *Room) handleHardDrop(ps *PlayerState) *GameError {
	y := ps.Current.Y
	for ps.Board.IsValid(ps.Current, ps.Current.X, y+1) {
		y++
	}
	ps.Current.Y = y
	r.lockAndAdvance(ps)
	return nil
}

// tick runs one gravity step for every live player in a playing room,
// matching the teacher's AutoFall/handlePieceLock pair in game_logic.go,
// generalized from single-player to per-player-in-room (SPEC_FULL.md §1).
func (r *Room) tick() {
	if r.phase != PhasePlaying {
		return
	}
	for _, ps := range r.players {
		if !ps.Alive {
			continue
		}
		r.applyPendingPenalty(ps)
		r.gravityStep(ps)
	}
	r.checkGameEnd()
}

// applyPendingPenalty injects any queued penalty rows at the start of a
// player's tick, per spec.md §4.4 step 1 / §9 design notes.
func (r *Room) applyPendingPenalty(ps *PlayerState) {
	if ps.PendingPenalty <= 0 {
		return
	}
	ps.Board.AddPenaltyLines(ps.PendingPenalty)
	ps.PendingPenalty = 0
	if !ps.Board.IsValid(ps.Current, ps.Current.X, ps.Current.Y) {
		r.eliminate(ps)
	}
}

func (r *Room) gravityStep(ps *PlayerState) {
	if !ps.Alive {
		return
	}
	if ps.Board.IsValid(ps.Current, ps.Current.X, ps.Current.Y+1) {
		ps.Current.Y++
		r.emitBoardUpdate(ps)
		return
	}
	r.lockAndAdvance(ps)
}

// lockAndAdvance locks the current piece, clears completed lines,
// distributes any resulting penalty to opponents, and spawns the next
// piece. If the freshly spawned piece immediately collides, the player
// is eliminated (spec.md §4.4 steps 2-4, §9 design notes).
func (r *Room) lockAndAdvance(ps *PlayerState) {
	ps.Board.Lock(ps.Current)
	cleared := ps.Board.ClearLines()
	if cleared > 0 {
		ps.LinesCleared += cleared
		gained := scoreForClear(cleared)
		ps.Score += gained
		penalty := linesToPenalty(cleared)
		if penalty > 0 {
			r.distributePenalty(ps, penalty)
		}
		r.emit(Event{
			Type: EventLinesCleared,
			Payload: LinesClearedPayload{
				PlayerID:    ps.ID,
				Count:       cleared,
				Score:       ps.Score,
				PenaltySent: penalty,
			},
		})
	}

	ps.Advance(r.bag)

	if !ps.Board.IsValid(ps.Current, ps.Current.X, ps.Current.Y) {
		r.eliminate(ps)
		return
	}
	r.emitBoardUpdate(ps)
}

// distributePenalty queues `lines` penalty rows against every other
// living player in the room (spec.md §4.4 step 3).
func (r *Room) distributePenalty(from *PlayerState, lines int) {
	for _, ps := range r.players {
		if ps == from || !ps.Alive {
			continue
		}
		ps.PendingPenalty += lines
		r.emit(Event{
			Type: EventPenaltySent,
			Conn: ps.Conn,
			Payload: PenaltySentPayload{
				FromPlayerID: from.ID,
				Lines:        lines,
			},
		})
	}
}

func (r *Room) eliminate(ps *PlayerState) {
	if !ps.Alive {
		return
	}
	ps.Alive = false
	r.emit(Event{
		Type:    EventPlayerDied,
		Payload: PlayerEliminatedPayload{PlayerID: ps.ID},
	})
}

// checkGameEnd ends the match once at most one player remains alive
// (spec.md §4.4 end condition). A single-player room ends when that
// player is eliminated, matching spec.md §9(b)'s >=1-player start rule.
func (r *Room) checkGameEnd() {
	if r.phase != PhasePlaying {
		return
	}
	alive := make([]*PlayerState, 0, len(r.players))
	for _, ps := range r.players {
		if ps.Alive {
			alive = append(alive, ps)
		}
	}
	if len(r.players) == 0 {
		return
	}
	if len(r.players) > 1 && len(alive) > 1 {
		return
	}
	if len(r.players) == 1 && len(alive) == 1 {
		return
	}

	r.phase = PhaseOver
	scores := make(map[string]int, len(r.players))
	for _, ps := range r.players {
		scores[ps.ID] = ps.Score
	}
	var winner string
	if len(alive) == 1 {
		winner = alive[0].ID
	}
	r.emit(Event{
		Type: EventGameOver,
		Payload: GameOverPayload{
			WinnerID: winner,
			Scores:   scores,
		},
	})
}

func (r *Room) rosterInfo() []Info {
	infos := make([]Info, len(r.players))
	for i, ps := range r.players {
		infos[i] = ps.ToInfo(r.ID)
	}
	return infos
}

// emitBoardUpdate sends ps's full board to ps alone, and a
// column-height-only summary of ps's board to every other player in
// the room (spec.md §4.2, §6: a player sees their own board in full
// but opponents only as a spectrum).
func (r *Room) emitBoardUpdate(ps *PlayerState) {
	r.emit(Event{
		Type: EventBoardUpdate,
		Conn: ps.Conn,
		Payload: BoardUpdatePayload{
			PlayerID: ps.ID,
			Cells:    ps.Board.Tags(),
			Spectrum: ps.Spectrum(),
			Current:  toPieceDTO(ps.Current),
			Next:     toPieceDTO(ps.Next),
			Score:    ps.Score,
		},
	})
	for _, other := range r.players {
		if other == ps {
			continue
		}
		r.emit(Event{
			Type: EventOpponentView,
			Conn: other.Conn,
			Payload: OpponentSpectrumPayload{
				PlayerID: ps.ID,
				Spectrum: ps.Spectrum(),
			},
		})
	}
}

func (r *Room) emitPieceMoved(ps *PlayerState) {
	r.emit(Event{
		Type: EventPieceMoved,
		Payload: PieceMovedPayload{
			PlayerID: ps.ID,
			Current:  toPieceDTO(ps.Current),
		},
	})
}
