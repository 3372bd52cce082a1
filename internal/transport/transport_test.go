package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetris-arena/backend/internal/tetris"
)

type fakeConn struct {
	id       string
	sent     []sentMessage
	closeErr error
}

type sentMessage struct {
	event   string
	payload any
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(event string, payload any) error {
	f.sent = append(f.sent, sentMessage{event: event, payload: payload})
	return nil
}

func (f *fakeConn) Close() error { return f.closeErr }

func TestHubEmitBroadcastsToAllConnsInRoom(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{id: "a"}
	b := &fakeConn{id: "b"}
	hub.Register("room-1", "a", a)
	hub.Register("room-1", "b", b)

	hub.Emit(tetris.Event{Type: tetris.EventGameStarted, RoomID: "room-1", Payload: "hi"})

	assert.Len(t, a.sent, 1)
	assert.Len(t, b.sent, 1)
}

func TestHubEmitTargetsSingleConn(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{id: "a"}
	b := &fakeConn{id: "b"}
	hub.Register("room-1", "a", a)
	hub.Register("room-1", "b", b)

	hub.Emit(tetris.Event{Type: tetris.EventBoardUpdate, RoomID: "room-1", Conn: "a", Payload: "only-a"})

	assert.Len(t, a.sent, 1)
	assert.Len(t, b.sent, 0)
}

func TestHubEmitIgnoresUnknownRoom(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.Emit(tetris.Event{Type: tetris.EventGameStarted, RoomID: "missing"})
	})
}

func TestHubUnregisterPrunesEmptyRoom(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{id: "a"}
	hub.Register("room-1", "a", a)
	hub.Unregister("room-1", "a")

	assert.Empty(t, hub.RoomOf("room-1"))
}

func TestDispatcherUnknownEventSendsError(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{id: "a"}
	hub.Register("room-1", "a", conn)

	reg := tetris.NewRegistry(hub)
	defer reg.Shutdown()
	d := NewDispatcher(reg, hub)

	d.HandleMessage("a", []byte(`{"event":"teleport"}`))

	require.Len(t, conn.sent, 1)
	assert.Equal(t, "error", conn.sent[0].event)
}

func TestDispatcherRoutesHardDrop(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{id: "a"}
	hub.Register("room-1", "a", conn)

	reg := tetris.NewRegistry(hub)
	defer reg.Shutdown()
	_, gerr := reg.Join("room-1", "p1", "Alice", "a")
	require.Nil(t, gerr)
	require.Nil(t, reg.Start("a"))

	d := NewDispatcher(reg, hub)
	d.HandleMessage("a", []byte(`{"event":"hardDrop"}`))

	for _, m := range conn.sent {
		assert.NotEqual(t, "error", m.event)
	}
}

func TestDispatcherGameActionEnvelope(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{id: "a"}
	hub.Register("room-1", "a", conn)

	reg := tetris.NewRegistry(hub)
	defer reg.Shutdown()
	_, gerr := reg.Join("room-1", "p1", "Alice", "a")
	require.Nil(t, gerr)
	require.Nil(t, reg.Start("a"))

	d := NewDispatcher(reg, hub)
	d.HandleMessage("a", []byte(`{"event":"gameAction","data":{"type":"rotate"}}`))

	for _, m := range conn.sent {
		assert.NotEqual(t, "error", m.event)
	}
}
