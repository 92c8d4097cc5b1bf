package netplay_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/arena/internal/netplay"
	"github.com/cory-johannsen/arena/internal/testutil"
)

func isState(env netplay.Envelope) bool { return env.T == netplay.MsgState }

func waitState(t *testing.T, p *netplay.Peer, want netplay.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.Poll()
		if p.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("peer state %s, want %s", p.State(), want)
}

// TestPeers_ExchangeOneRound verifies that after one state message each way,
// each side's view of the remote position equals what was sent.
func TestPeers_ExchangeOneRound(t *testing.T) {
	_, hostSide, joinSide := testutil.LinkedPeers(t)
	assert.Equal(t, netplay.StateConnected, hostSide.State())
	assert.Equal(t, netplay.StateConnected, joinSide.State())

	require.True(t, hostSide.SendState(netplay.StatePayload{X: 200, Y: 400, FacingRight: true, Health: 100, Alive: true}))
	require.True(t, joinSide.SendState(netplay.StatePayload{X: 1150, Y: 400, Health: 100, Alive: true}))

	atJoin, err := netplay.DecodePayload[netplay.StatePayload](testutil.PollUntil(t, joinSide, 2*time.Second, isState))
	require.NoError(t, err)
	atHost, err := netplay.DecodePayload[netplay.StatePayload](testutil.PollUntil(t, hostSide, 2*time.Second, isState))
	require.NoError(t, err)

	assert.Equal(t, 200.0, atJoin.X)
	assert.Equal(t, 400.0, atJoin.Y)
	assert.True(t, atJoin.FacingRight)
	assert.Equal(t, 1150.0, atHost.X)
	assert.Equal(t, 400.0, atHost.Y)
	assert.Equal(t, uint64(1), atHost.Seq)
}

func TestPeer_PollDrainsAllQueued(t *testing.T) {
	_, hostSide, joinSide := testutil.LinkedPeers(t)
	for i := 1; i <= 3; i++ {
		require.True(t, hostSide.SendState(netplay.StatePayload{X: float64(i), Alive: true}))
	}
	time.Sleep(100 * time.Millisecond)

	envs := joinSide.Poll()
	require.Len(t, envs, 3, "every queued record is returned by one poll")
	for i, env := range envs {
		st, err := netplay.DecodePayload[netplay.StatePayload](env)
		require.NoError(t, err)
		assert.Equal(t, float64(i+1), st.X)
		assert.Equal(t, uint64(i+1), st.Seq)
	}
}

func TestPeer_PollWithNothingQueued(t *testing.T) {
	_, _, joinSide := testutil.LinkedPeers(t)
	start := time.Now()
	assert.Empty(t, joinSide.Poll())
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, netplay.StateConnected, joinSide.State(), "a timeout is not a fault")
}

func TestPeer_PartialRecordAcrossPolls(t *testing.T) {
	host := netplay.NewHost(testutil.Options(t))
	require.NoError(t, host.Listen("127.0.0.1:0"))
	t.Cleanup(func() { _ = host.Close() })

	raw := testutil.DialRaw(t, host.Addr())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	p, err := host.WaitPeer(ctx)
	require.NoError(t, err)

	raw.Write(`{"t":"state","p":{"x":12`)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, p.Poll())
	assert.True(t, p.Connected())

	raw.Write(`,"y":34,"alive":true}}` + "\n")
	st, err := netplay.DecodePayload[netplay.StatePayload](testutil.PollUntil(t, p, 2*time.Second, isState))
	require.NoError(t, err)
	assert.Equal(t, 12.0, st.X)
	assert.Equal(t, 34.0, st.Y)
}

func TestPeer_MalformedRecordSkipped(t *testing.T) {
	host := netplay.NewHost(testutil.Options(t))
	require.NoError(t, host.Listen("127.0.0.1:0"))
	t.Cleanup(func() { _ = host.Close() })

	raw := testutil.DialRaw(t, host.Addr())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	p, err := host.WaitPeer(ctx)
	require.NoError(t, err)

	raw.Write("garbage\n{\"t\":\"bye\"}\n")
	env := testutil.PollUntil(t, p, 2*time.Second, func(netplay.Envelope) bool { return true })
	assert.Equal(t, netplay.MsgBye, env.T)
	assert.True(t, p.Connected())
}

func TestPeer_OversizedRecordDisconnects(t *testing.T) {
	host := netplay.NewHost(testutil.Options(t))
	require.NoError(t, host.Listen("127.0.0.1:0"))
	t.Cleanup(func() { _ = host.Close() })

	raw := testutil.DialRaw(t, host.Addr())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	p, err := host.WaitPeer(ctx)
	require.NoError(t, err)

	raw.Write(strings.Repeat("x", 5000))
	waitState(t, p, netplay.StateDisconnected)
	assert.False(t, p.SendState(netplay.StatePayload{}))
}

func TestPeer_RemoteCloseDisconnects(t *testing.T) {
	_, hostSide, joinSide := testutil.LinkedPeers(t)
	require.NoError(t, joinSide.Close())
	assert.Equal(t, netplay.StateDisconnected, joinSide.State())
	assert.False(t, joinSide.SendState(netplay.StatePayload{}), "send after close fails")

	env := testutil.PollUntil(t, hostSide, 2*time.Second, func(e netplay.Envelope) bool { return e.T == netplay.MsgBye })
	assert.Equal(t, netplay.MsgBye, env.T)
	waitState(t, hostSide, netplay.StateDisconnected)
}

func TestHost_BindConflict(t *testing.T) {
	first := netplay.NewHost(testutil.Options(t))
	require.NoError(t, first.Listen("127.0.0.1:0"))
	t.Cleanup(func() { _ = first.Close() })

	second := netplay.NewHost(testutil.Options(t))
	err := second.Listen(first.Addr())
	require.Error(t, err)
	assert.Equal(t, netplay.StateDisconnected, second.State())
	assert.Empty(t, second.Addr())
}

func TestHost_ListenReleasesPrevious(t *testing.T) {
	h := netplay.NewHost(testutil.Options(t))
	require.NoError(t, h.Listen("127.0.0.1:0"))
	old := h.Addr()
	assert.Equal(t, netplay.StateWaiting, h.State())

	require.NoError(t, h.Listen("127.0.0.1:0"))
	t.Cleanup(func() { _ = h.Close() })

	l, err := net.Listen("tcp", old)
	require.NoError(t, err, "previous listener was released")
	_ = l.Close()
}

func TestHost_AcceptsOnlyOne(t *testing.T) {
	host, _, _ := testutil.LinkedPeers(t)
	assert.True(t, host.Connected())
	assert.Empty(t, host.Addr(), "listener closed after the first peer")
	assert.Equal(t, netplay.StateConnected, host.State())
}

func TestHost_CloseStopsAccept(t *testing.T) {
	h := netplay.NewHost(testutil.Options(t))
	require.NoError(t, h.Listen("127.0.0.1:0"))
	addr := h.Addr()
	require.NoError(t, h.Close())
	assert.False(t, h.Connected())
	assert.Equal(t, netplay.StateDisconnected, h.State())

	_, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestHost_WaitPeerHonorsContext(t *testing.T) {
	h := netplay.NewHost(testutil.Options(t))
	require.NoError(t, h.Listen("127.0.0.1:0"))
	t.Cleanup(func() { _ = h.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := h.WaitPeer(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDial_Refused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = netplay.Dial(ctx, addr, netplay.Options{Logger: zaptest.NewLogger(t)})
	assert.Error(t, err)
}

func TestHandshake_ExchangesHello(t *testing.T) {
	_, hostSide, joinSide := testutil.LinkedPeers(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	type result struct {
		hello netplay.HelloPayload
		err   error
	}
	done := make(chan result, 1)
	go func() {
		h, err := netplay.Handshake(ctx, joinSide, netplay.HelloPayload{Name: "Guest", Weapon: "bow", Armor: "heavy"})
		done <- result{h, err}
	}()

	gotAtHost, err := netplay.Handshake(ctx, hostSide, netplay.HelloPayload{Name: "Host", Weapon: "sword", Armor: "light"})
	require.NoError(t, err)
	assert.Equal(t, netplay.HelloPayload{Name: "Guest", Weapon: "bow", Armor: "heavy"}, gotAtHost)

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, "Host", r.hello.Name)
	assert.Equal(t, "sword", r.hello.Weapon)
}

func TestHandshake_KeepsRecordsAfterHello(t *testing.T) {
	_, hostSide, joinSide := testutil.LinkedPeers(t)
	require.True(t, joinSide.Send(netplay.MsgHello, netplay.HelloPayload{Name: "Guest", Weapon: "axe", Armor: "light"}))
	require.True(t, joinSide.SendState(netplay.StatePayload{X: 640, Y: 300, Attack: true, Alive: true}))
	require.True(t, joinSide.SendState(netplay.StatePayload{X: 650, Y: 300, Alive: false}))
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	hello, err := netplay.Handshake(ctx, hostSide, netplay.HelloPayload{Name: "Host"})
	require.NoError(t, err)
	assert.Equal(t, "Guest", hello.Name)

	var states []netplay.StatePayload
	deadline := time.Now().Add(2 * time.Second)
	for len(states) < 2 && time.Now().Before(deadline) {
		for _, env := range hostSide.Poll() {
			if env.T != netplay.MsgState {
				continue
			}
			st, err := netplay.DecodePayload[netplay.StatePayload](env)
			require.NoError(t, err)
			states = append(states, st)
		}
		time.Sleep(time.Millisecond)
	}
	require.Len(t, states, 2)
	assert.True(t, states[0].Attack)
	assert.Equal(t, uint64(1), states[0].Seq)
	assert.False(t, states[1].Alive)
	assert.Equal(t, uint64(2), states[1].Seq)
}

func TestHandshake_LinkClosed(t *testing.T) {
	_, hostSide, joinSide := testutil.LinkedPeers(t)
	require.NoError(t, joinSide.Close())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := netplay.Handshake(ctx, hostSide, netplay.HelloPayload{Name: "Host"})
	assert.ErrorIs(t, err, netplay.ErrLinkClosed)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "connecting", netplay.StateConnecting.String())
	assert.Equal(t, "waiting", netplay.StateWaiting.String())
	assert.Equal(t, "connected", netplay.StateConnected.String())
	assert.Equal(t, "disconnected", netplay.StateDisconnected.String())
}
