package tetris

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink collects every emitted event for assertions, guarded by
// a mutex since Emit is called from the room's actor goroutine.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) ofType(t EventType) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newTestRoom() (*Room, *recordingSink) {
	sink := &recordingSink{}
	room := NewRoom("room-1", 123, sink)
	return room, sink
}

func TestJoinAddsPlayerAndEmitsEvent(t *testing.T) {
	room, sink := newTestRoom()
	defer room.Close()

	ps, gerr := room.Join("p1", "Alice", "conn-1")
	require.Nil(t, gerr)
	require.NotNil(t, ps)
	assert.Equal(t, "p1", ps.ID)
	assert.Len(t, sink.ofType(EventPlayerJoined), 1)
}

func TestJoinRejectsDuplicateConn(t *testing.T) {
	room, _ := newTestRoom()
	defer room.Close()

	_, gerr := room.Join("p1", "Alice", "conn-1")
	require.Nil(t, gerr)
	_, gerr = room.Join("p1", "Alice", "conn-1")
	require.NotNil(t, gerr)
	assert.Equal(t, ErrAlreadyJoined, gerr.Code())
}

func TestJoinRejectsPastCapacity(t *testing.T) {
	room, _ := newTestRoom()
	defer room.Close()

	for i := 0; i < MaxRoomPlayers; i++ {
		conn := string(rune('a' + i))
		_, gerr := room.Join(conn, conn, conn)
		require.Nil(t, gerr)
	}
	_, gerr := room.Join("overflow", "overflow", "overflow")
	require.NotNil(t, gerr)
	assert.Equal(t, ErrRoomFull, gerr.Code())
}

func TestJoinRejectedAfterStart(t *testing.T) {
	room, _ := newTestRoom()
	defer room.Close()

	_, gerr := room.Join("p1", "Alice", "conn-1")
	require.Nil(t, gerr)
	require.Nil(t, room.Start("conn-1"))

	_, gerr = room.Join("p2", "Bob", "conn-2")
	require.NotNil(t, gerr)
	assert.Equal(t, ErrGameInProgress, gerr.Code())
}

func TestStartRequiresAtLeastOnePlayer(t *testing.T) {
	room, _ := newTestRoom()
	defer room.Close()

	room.Join("p1", "Alice", "conn-1")
	room.Leave("conn-1")
	gerr := room.Start("conn-1")
	require.NotNil(t, gerr)
}

func TestJoinRejectsDuplicateName(t *testing.T) {
	room, _ := newTestRoom()
	defer room.Close()

	_, gerr := room.Join("p1", "Alice", "conn-1")
	require.Nil(t, gerr)
	_, gerr = room.Join("p2", "Alice", "conn-2")
	require.NotNil(t, gerr)
	assert.Equal(t, ErrNameTaken, gerr.Code())
}

func TestFirstJoinerIsHostAndGatesStart(t *testing.T) {
	room, sink := newTestRoom()
	defer room.Close()

	p1, _ := room.Join("p1", "Alice", "conn-1")
	p2, _ := room.Join("p2", "Bob", "conn-2")
	assert.True(t, p1.IsHost)
	assert.False(t, p2.IsHost)

	gerr := room.Start("conn-2")
	require.NotNil(t, gerr)
	assert.Equal(t, ErrNotHost, gerr.Code())

	require.Nil(t, room.Start("conn-1"))
	assert.Len(t, sink.ofType(EventGameStarted), 1)
}

func TestHostReElectedOnDeparture(t *testing.T) {
	room, sink := newTestRoom()
	defer room.Close()

	_, _ = room.Join("p1", "Alice", "conn-1")
	p2, _ := room.Join("p2", "Bob", "conn-2")

	require.Nil(t, room.Leave("conn-1"))
	assert.True(t, p2.IsHost)
	assert.Len(t, sink.ofType(EventNewHost), 1)

	require.Nil(t, room.Start("conn-2"))
}

func TestSingleSeedSharedAcrossPlayers(t *testing.T) {
	room, _ := newTestRoom()
	defer room.Close()

	p1, _ := room.Join("p1", "Alice", "conn-1")
	p2, _ := room.Join("p2", "Bob", "conn-2")
	require.Nil(t, room.Start("conn-1"))

	assert.Equal(t, p1.Current.Kind, p2.Current.Kind, "both players should see the same piece stream")
	assert.Equal(t, p1.Next.Kind, p2.Next.Kind)
}

func TestHardDropLocksAndAdvancesCursor(t *testing.T) {
	room, _ := newTestRoom()
	defer room.Close()

	ps, _ := room.Join("p1", "Alice", "conn-1")
	require.Nil(t, room.Start("conn-1"))

	gerr := room.Submit("conn-1", CmdHardDrop)
	require.Nil(t, gerr)
	assert.Equal(t, 1, ps.Cursor)
}

func TestSoftDropMovesPieceDownWithoutLocking(t *testing.T) {
	room, _ := newTestRoom()
	defer room.Close()

	ps, _ := room.Join("p1", "Alice", "conn-1")
	require.Nil(t, room.Start("conn-1"))
	startY := ps.Current.Y
	startCursor := ps.Cursor

	gerr := room.Submit("conn-1", CmdMoveDown)
	require.Nil(t, gerr)
	assert.Equal(t, startY+1, ps.Current.Y)
	assert.Equal(t, startCursor, ps.Cursor)
}

func TestSubmitRejectsUnknownCommand(t *testing.T) {
	room, _ := newTestRoom()
	defer room.Close()

	room.Join("p1", "Alice", "conn-1")
	require.Nil(t, room.Start("conn-1"))

	gerr := room.Submit("conn-1", CommandKind("teleport"))
	require.NotNil(t, gerr)
	assert.Equal(t, ErrUnknownCommand, gerr.Code())
}

func TestSubmitRejectsWhileWaiting(t *testing.T) {
	room, _ := newTestRoom()
	defer room.Close()

	room.Join("p1", "Alice", "conn-1")
	gerr := room.Submit("conn-1", CmdMoveLeft)
	require.NotNil(t, gerr)
	assert.Equal(t, ErrNotPlaying, gerr.Code())
}

func TestMultiLineClearQueuesPenaltyForOpponents(t *testing.T) {
	room, sink := newTestRoom()
	defer room.Close()

	p1, _ := room.Join("p1", "Alice", "conn-1")
	p2, _ := room.Join("p2", "Bob", "conn-2")
	require.Nil(t, room.Start("conn-1"))

	for x := 0; x < BoardWidth; x++ {
		if x == 4 || x == 5 {
			continue
		}
		p1.Board[BoardHeight-1][x] = CellI
		p1.Board[BoardHeight-2][x] = CellI
	}
	p1.Current.X, p1.Current.Y = 4, BoardHeight-4
	p1.Current.Shape = [][]int{{1, 1}, {1, 1}}

	require.Nil(t, room.Submit("conn-1", CmdHardDrop))

	assert.Equal(t, 1, p2.PendingPenalty)
	assert.Len(t, sink.ofType(EventPenaltySent), 1)
}

func TestRestartResetsRoomToWaiting(t *testing.T) {
	room, sink := newTestRoom()
	defer room.Close()

	ps, _ := room.Join("p1", "Alice", "conn-1")
	require.Nil(t, room.Start("conn-1"))
	ps.Score = 500

	require.Nil(t, room.Restart("conn-1"))
	assert.Equal(t, 0, ps.Score)
	assert.Len(t, sink.ofType(EventRoomReset), 1)

	gerr := room.Start("conn-1")
	assert.Nil(t, gerr)
}

func TestGravityTickAdvancesPieceDownward(t *testing.T) {
	room, _ := newTestRoom()
	defer room.Close()

	ps, _ := room.Join("p1", "Alice", "conn-1")
	require.Nil(t, room.Start("conn-1"))
	startY := ps.Current.Y

	time.Sleep(FallInterval + 100*time.Millisecond)

	room.enqueue(func() {
		assert.Greater(t, ps.Current.Y, startY)
	})
}

func TestLeaveRemovesPlayerFromRoster(t *testing.T) {
	room, sink := newTestRoom()
	defer room.Close()

	room.Join("p1", "Alice", "conn-1")
	gerr := room.Leave("conn-1")
	require.Nil(t, gerr)
	assert.Len(t, sink.ofType(EventPlayerLeft), 1)

	gerr = room.Leave("conn-1")
	require.NotNil(t, gerr)
	assert.Equal(t, ErrNotInRoom, gerr.Code())
}
