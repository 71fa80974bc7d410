package watchdog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cordellbonnieux/Draw-And-Conquer/internal/game"
)

func TestSessionWatchdog_RemovesInactivePlayer(t *testing.T) {
	registry := game.NewRegistry()
	conn1, peer1 := newTestConnPair(t)
	conn2, peer2 := newTestConnPair(t)

	session := registry.Create("session-1", []string{"p1", "p2"}, map[string]string{"p1": "Alice", "p2": "Bob"}, 10, 30*time.Second)
	session.BindConnection("p1", conn1)
	session.BindConnection("p2", conn2)
	// p2 requests a colour so only p1 is inactive.
	_, _, _, err := session.RequestColour("p2")
	require.NoError(t, err)

	msgs1 := drain(peer1)
	// Removing p1 leaves one player, so p2 is sent not_enough_players;
	// reading peer2 keeps that unbuffered pipe write from blocking Sweep.
	drain(peer2)

	w := &SessionWatchdog{Registry: registry, Log: testLog}
	w.Sweep(time.Now().Add(31 * time.Second))

	select {
	case msg := <-msgs1:
		assert.Contains(t, msg, "inactive_player")
	case <-time.After(time.Second):
		t.Fatal("expected inactive_player notice")
	}

	assert.False(t, session.HasPlayer("p1"))
}

func TestSessionWatchdog_TeardownBelowMinPlayers(t *testing.T) {
	registry := game.NewRegistry()
	conn1, peer1 := newTestConnPair(t)
	conn2, peer2 := newTestConnPair(t)

	session := registry.Create("session-1", []string{"p1", "p2"}, map[string]string{"p1": "Alice", "p2": "Bob"}, 10, 30*time.Second)
	session.BindConnection("p1", conn1)
	session.BindConnection("p2", conn2)
	// Only p1 requests a colour.
	_, _, _, err := session.RequestColour("p1")
	require.NoError(t, err)

	msgs1 := drain(peer1)
	drain(peer2)

	w := &SessionWatchdog{Registry: registry, Log: testLog}
	// p2 is inactive past the timeout: removing it drops the session below
	// the minimum, so the remaining player p1 is sent not_enough_players.
	w.Sweep(time.Now().Add(31 * time.Second))

	found := false
	timeout := time.After(time.Second)
	for !found {
		select {
		case msg, ok := <-msgs1:
			if !ok {
				t.Fatal("channel closed before finding not_enough_players")
			}
			if strings.Contains(msg, "not_enough_players") {
				found = true
			}
		case <-timeout:
			t.Fatal("expected not_enough_players notice")
		}
	}

	assert.Nil(t, registry.Get("session-1"))
}

func TestSessionWatchdog_SkipsStartedSessions(t *testing.T) {
	registry := game.NewRegistry()
	session := registry.Create("session-1", []string{"p1", "p2"}, map[string]string{"p1": "Alice", "p2": "Bob"}, 10, time.Second)
	session.GameStarted = true

	w := &SessionWatchdog{Registry: registry, Log: testLog}
	w.Sweep(time.Now().Add(time.Hour))

	assert.NotNil(t, registry.Get("session-1"))
	assert.True(t, session.HasPlayer("p1"))
}
