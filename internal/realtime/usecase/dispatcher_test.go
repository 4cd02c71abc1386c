package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
)

func TestDispatch_RoomScenario(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t, Options{})

	a, trA := connect(t, uc, "alice", realtime.Bidirectional)
	_, trB := connect(t, uc, "bob", realtime.Bidirectional)
	require.NoError(t, uc.Join(ctx, a.ID(), "proj-1"))

	n := uc.Dispatch(ctx, realtime.BroadcastRoom("proj-1", "task_updated", map[string]string{"id": "t1"}))
	assert.Equal(t, 1, n)

	got := trA.named("task_updated")
	require.Len(t, got, 1)
	assert.JSONEq(t, `{"id":"t1"}`, string(got[0].Data))
	assert.JSONEq(t, `{"type":"task_updated","payload":{"id":"t1"}}`, string(got[0].Frame))
	assert.Empty(t, trB.named("task_updated"))
}

func TestDispatch_EmptyRoomIsNoop(t *testing.T) {
	uc := newTestUseCase(t, Options{})
	_, tr := connect(t, uc, "alice", realtime.Bidirectional)

	assert.Equal(t, 0, uc.Dispatch(context.Background(), realtime.BroadcastRoom("nobody-here", "x", nil)))
	assert.Equal(t, []string{realtime.EventConnected}, tr.names())
	assert.Equal(t, uint64(0), uc.seq.Current())
}

func TestDispatch_LeaveAndRemoveExclude(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t, Options{})

	a, trA := connect(t, uc, "alice", realtime.Bidirectional)
	b, trB := connect(t, uc, "bob", realtime.Bidirectional)
	c, trC := connect(t, uc, "carol", realtime.PushOnly)
	for _, conn := range []*realtime.Connection{a, b, c} {
		require.NoError(t, uc.Join(ctx, conn.ID(), "r"))
	}

	require.NoError(t, uc.Leave(ctx, a.ID(), "r"))
	uc.Disconnect(ctx, c.ID(), nil)

	assert.Equal(t, []string{b.ID()}, uc.MembersOf("r"))
	assert.Empty(t, uc.RoomsOf(c.ID()))

	uc.Dispatch(ctx, realtime.BroadcastRoom("r", "update", 1))
	assert.Empty(t, trA.named("update"))
	assert.Len(t, trB.named("update"), 1)
	assert.Empty(t, trC.named("update"))

	closed, reason := trC.isClosed()
	assert.True(t, closed)
	assert.Equal(t, realtime.CloseNormal, reason)
}

func TestDispatch_PushOnlyOrderingAndSharedSequence(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t, Options{})

	var transports []*fakeTransport
	for i := 0; i < 3; i++ {
		conn, tr := connect(t, uc, fmt.Sprintf("user-%d", i), realtime.PushOnly)
		require.NoError(t, uc.Join(ctx, conn.ID(), "r"))
		transports = append(transports, tr)
	}

	for i := 0; i < 5; i++ {
		uc.Dispatch(ctx, realtime.BroadcastRoom("r", "tick", i))
	}

	first := transports[0].named("tick")
	require.Len(t, first, 5)
	for i, out := range first {
		assert.Equal(t, fmt.Sprint(i), string(out.Data))
		if i > 0 {
			assert.Greater(t, out.Sequence, first[i-1].Sequence)
		}
	}
	for _, tr := range transports[1:] {
		got := tr.named("tick")
		require.Len(t, got, 5)
		for i := range got {
			assert.Same(t, first[i], got[i], "one serialized event is shared by every copy")
		}
	}
	assert.EqualValues(t, first[4].Sequence, decodeEnvelope(t, first[4])["seq"])
}

func TestDispatch_NoSequenceForBidirectionalOnly(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t, Options{})
	_, tr := connect(t, uc, "alice", realtime.Bidirectional)

	uc.Dispatch(ctx, realtime.BroadcastAll("notice", "hi"))
	got := tr.named("notice")
	require.Len(t, got, 1)
	assert.Zero(t, got[0].Sequence)
	assert.NotContains(t, decodeEnvelope(t, got[0]), "seq")
}

func TestDispatch_FailingWriterIsIsolated(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t, Options{})

	var (
		conns      []*realtime.Connection
		transports []*fakeTransport
	)
	for i := 0; i < 50; i++ {
		conn, tr := connect(t, uc, fmt.Sprintf("user-%d", i), realtime.Bidirectional)
		require.NoError(t, uc.Join(ctx, conn.ID(), "r"))
		conns = append(conns, conn)
		transports = append(transports, tr)
	}
	bad := 17
	transports[bad].setFailEnqueue(true)

	n := uc.Dispatch(ctx, realtime.BroadcastRoom("r", "update", "payload"))
	assert.Equal(t, 49, n)

	for i, tr := range transports {
		if i == bad {
			continue
		}
		assert.Len(t, tr.named("update"), 1)
	}

	_, ok := uc.reg.Get(conns[bad].ID())
	assert.False(t, ok)
	assert.NotContains(t, uc.MembersOf("r"), conns[bad].ID())
	closed, reason := transports[bad].isClosed()
	assert.True(t, closed)
	assert.Equal(t, realtime.CloseEvicted, reason)
	assert.Equal(t, realtime.Evicted, conns[bad].State())

	st := uc.Stats()
	assert.Equal(t, 49, st.ActiveConnections)
	assert.EqualValues(t, 1, st.Evictions)
	assert.EqualValues(t, 1, st.FramesFailed)
}

func TestDispatch_RelayToUnknownTargetIsNoop(t *testing.T) {
	uc := newTestUseCase(t, Options{})
	a, trA := connect(t, uc, "alice", realtime.Bidirectional)

	n := uc.Dispatch(context.Background(), realtime.Relay(a.ID(), "does-not-exist", "offer", map[string]string{"sdp": "x"}))
	assert.Equal(t, 0, n)
	assert.Equal(t, []string{realtime.EventConnected}, trA.names())
}

func TestDispatch_RelayCarriesOriginOnBothTransports(t *testing.T) {
	uc := newTestUseCase(t, Options{})
	a, _ := connect(t, uc, "alice", realtime.Bidirectional)
	ws, trWS := connect(t, uc, "bob", realtime.Bidirectional)
	push, trPush := connect(t, uc, "carol", realtime.PushOnly)

	ctx := context.Background()
	require.Equal(t, 1, uc.Dispatch(ctx, realtime.Relay(a.ID(), ws.ID(), "offer", map[string]string{"sdp": "x"})))
	require.Equal(t, 1, uc.Dispatch(ctx, realtime.Relay(a.ID(), push.ID(), "offer", map[string]string{"sdp": "x"})))

	got := trWS.named("offer")
	require.Len(t, got, 1)
	assert.Equal(t, a.ID(), decodeEnvelope(t, got[0])["from"])

	got = trPush.named("offer")
	require.Len(t, got, 1)
	assert.NotZero(t, got[0].Sequence)
	assert.JSONEq(t, fmt.Sprintf(`{"from":%q,"payload":{"sdp":"x"}}`, a.ID()), string(got[0].Data))
}

func TestDispatch_UnicastOwnerAndExclude(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t, Options{})

	a1, trA1 := connect(t, uc, "alice", realtime.Bidirectional)
	_, trA2 := connect(t, uc, "alice", realtime.PushOnly)
	_, trB := connect(t, uc, "bob", realtime.Bidirectional)

	assert.Equal(t, 1, uc.Dispatch(ctx, realtime.Unicast(a1.ID(), "direct", nil)))
	assert.Len(t, trA1.named("direct"), 1)
	assert.Empty(t, trA2.named("direct"))

	assert.Equal(t, 2, uc.Dispatch(ctx, realtime.ToOwner("alice", "mine", nil)))
	assert.Len(t, trA1.named("mine"), 1)
	assert.Len(t, trA2.named("mine"), 1)
	assert.Empty(t, trB.named("mine"))

	assert.Equal(t, 2, uc.Dispatch(ctx, realtime.BroadcastAll("everyone", nil).Excluding(a1.ID())))
	assert.Empty(t, trA1.named("everyone"))
	assert.Len(t, trB.named("everyone"), 1)

	assert.Equal(t, 0, uc.Dispatch(ctx, realtime.Unicast("gone", "direct", nil)))
}

func TestDispatch_UnserializablePayload(t *testing.T) {
	uc := newTestUseCase(t, Options{})
	_, tr := connect(t, uc, "alice", realtime.Bidirectional)

	assert.Equal(t, 0, uc.Dispatch(context.Background(), realtime.BroadcastAll("bad", make(chan int))))
	assert.Empty(t, tr.named("bad"))
	assert.Equal(t, 1, uc.Stats().ActiveConnections)
}
