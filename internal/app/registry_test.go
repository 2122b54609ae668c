package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSignal struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
}

func (s *fakeSignal) TrySend(f core.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return errors.New("full")
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *fakeSignal) Close() {}

func (s *fakeSignal) events(t *testing.T) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.frames))
	for _, f := range s.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func TestRegistryBindReplacesTransport(t *testing.T) {
	reg := NewRegistry(nil)
	first, second := &fakeSignal{}, &fakeSignal{}

	ctx1, cancel1 := context.WithCancel(context.Background())
	reg.BindSignal("a", first, cancel1)
	reg.SetRoom("a", "r")

	_, cancel2 := context.WithCancel(context.Background())
	reg.BindSignal("a", second, cancel2)

	select {
	case <-ctx1.Done():
	case <-time.After(time.Second):
		t.Fatal("previous transport not canceled")
	}

	// The stale transport cannot unbind the new one.
	assert.False(t, reg.Unbind("a", first))
	room, ok := reg.RoomOf("a")
	require.True(t, ok)
	assert.Equal(t, domain.RoomID("r"), room)

	reg.Send("a", core.Event{Type: "x"})
	assert.Empty(t, first.frames)
	assert.Len(t, second.frames, 1)

	assert.True(t, reg.Unbind("a", second))
	assert.False(t, reg.IsConnected("a"))
	_, ok = reg.RoomOf("a")
	assert.True(t, ok, "room survives until Forget")
	reg.Forget("a")
	_, ok = reg.RoomOf("a")
	assert.False(t, ok)
}

func TestRegistryRoomAndWaitingBookkeeping(t *testing.T) {
	reg := NewRegistry(nil)

	reg.SetWaiting("a", "r1")
	w, ok := reg.WaitingOf("a")
	require.True(t, ok)
	assert.Equal(t, domain.RoomID("r1"), w)

	reg.SetRoom("a", "r1")
	_, ok = reg.WaitingOf("a")
	assert.False(t, ok)

	reg.ClearRoom("a", "other")
	_, ok = reg.RoomOf("a")
	assert.True(t, ok)
	reg.ClearRoom("a", "r1")
	_, ok = reg.RoomOf("a")
	assert.False(t, ok)

	assert.Equal(t, domain.DefaultDisplayName, reg.DisplayName("a"))
	reg.SetDisplayName("a", "Ada")
	assert.Equal(t, "Ada", reg.DisplayName("a"))
}

func TestRegistryKicksSlowConsumer(t *testing.T) {
	reg := NewRegistry(SimplePolicy{Action: KickMember})
	slow := &fakeSignal{full: true}
	ctx, cancel := context.WithCancel(context.Background())
	reg.BindSignal("slow", slow, cancel)

	reg.Send("slow", core.Event{Type: "x"})
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("slow consumer not kicked")
	}
}

func TestRegistryDropPolicyKeepsConnection(t *testing.T) {
	reg := NewRegistry(SimplePolicy{Action: DropFrame})
	slow := &fakeSignal{full: true}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reg.BindSignal("slow", slow, cancel)

	reg.Send("slow", core.Event{Type: "x"})
	assert.NoError(t, ctx.Err())
}

func TestRelayForwardsAndDropsSilently(t *testing.T) {
	reg := NewRegistry(nil)
	a, b := &fakeSignal{}, &fakeSignal{}
	reg.BindSignal("a", a, func() {})
	reg.BindSignal("b", b, func() {})
	relay := NewRelay(reg)

	assert.True(t, relay.Forward(core.EvOffer, "a", "b", map[string]string{"sdp": "v=0"}))
	got := b.events(t)
	require.Len(t, got, 1)
	assert.Equal(t, "offer", got[0]["type"])
	data := got[0]["data"].(map[string]any)
	assert.Equal(t, "a", data["from"])

	assert.False(t, relay.Forward(core.EvICECandidate, "a", "gone", nil))
	assert.False(t, relay.Forward(core.EvICECandidate, "a", "a", nil))
	assert.False(t, relay.Forward(core.EvICECandidate, "a", "", nil))
	assert.Empty(t, a.events(t))
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("a"))

	rl.Forget("a")
	assert.True(t, rl.Allow("a"))

	var disabled *RateLimiter
	assert.True(t, disabled.Allow("x"))
}
