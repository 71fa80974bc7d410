// Package matchmaker implements the matchmaking queue: enrollment,
// heartbeats, explicit removal, and the atomic dequeue used by the
// queue watchdog to form lobbies.
package matchmaker

import (
	"container/list"
	"sync"
	"time"

	"github.com/cordellbonnieux/Draw-And-Conquer/internal/wsproto"
)

// entry is one queued player. It lives in both the FIFO list (for
// ordering) and the id index (for O(1) lookup/removal).
type entry struct {
	playerID      string
	name          string
	conn          *wsproto.Conn
	lastHeartbeat time.Time
}

// State is the matchmaker's process-wide queue. A single mutex guards
// every field; spec §4.3 requires all mutation and all read queries to
// take it, and forbids holding it across a network send.
type State struct {
	mu sync.Mutex

	order *list.List               // FIFO of *entry, oldest at Front
	index map[string]*list.Element // playerID -> its element in order

	LobbySize        int
	HeartbeatTimeout time.Duration
}

// NewState creates an empty queue configured with the given lobby size
// and heartbeat timeout.
func NewState(lobbySize int, heartbeatTimeout time.Duration) *State {
	return &State{
		order:            list.New(),
		index:            make(map[string]*list.Element),
		LobbySize:        lobbySize,
		HeartbeatTimeout: heartbeatTimeout,
	}
}

// Enqueue appends a player to the back of the queue. The caller must
// have already verified the player isn't queued (spec: "enqueue"
// precondition).
func (s *State) Enqueue(playerID, name string, conn *wsproto.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el := s.order.PushBack(&entry{
		playerID:      playerID,
		name:          name,
		conn:          conn,
		lastHeartbeat: time.Now(),
	})
	s.index[playerID] = el
}

// Heartbeat refreshes last-seen time for a queued player. No-op if the
// player is not queued.
func (s *State) Heartbeat(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.index[playerID]; ok {
		el.Value.(*entry).lastHeartbeat = time.Now()
	}
}

// Remove drops a player from the queue and all side maps atomically.
// No-op if the player is not queued.
func (s *State) Remove(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(playerID)
}

func (s *State) removeLocked(playerID string) {
	if el, ok := s.index[playerID]; ok {
		s.order.Remove(el)
		delete(s.index, playerID)
	}
}

// InQueue reports whether playerID currently has a queue entry.
func (s *State) InQueue(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.index[playerID]
	return ok
}

// Length returns the current queue length.
func (s *State) Length() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.order.Len()
}

// StalePlayers returns (playerID, conn) pairs whose last heartbeat is
// older than now-HeartbeatTimeout, strictly (spec §8: exactly at the
// boundary is not yet a timeout).
func (s *State) StalePlayers(now time.Time) []struct {
	PlayerID string
	Conn     *wsproto.Conn
} {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []struct {
		PlayerID string
		Conn     *wsproto.Conn
	}
	for el := s.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		if now.Sub(e.lastHeartbeat) > s.HeartbeatTimeout {
			stale = append(stale, struct {
				PlayerID string
				Conn     *wsproto.Conn
			}{e.playerID, e.conn})
		}
	}
	return stale
}

// DequeuedPlayer is one player pulled out by DequeueN.
type DequeuedPlayer struct {
	PlayerID string
	Name     string
	Conn     *wsproto.Conn
}

// DequeueN atomically removes and returns the n oldest players. If
// fewer than n players are queued, it removes none and returns nil —
// callers are expected to have already checked Length() >= n under the
// same lock-free guard the watchdog uses, but this method re-verifies
// under its own lock so the check-then-act is atomic (spec §4.5 step 2).
func (s *State) DequeueN(n int) []DequeuedPlayer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.order.Len() < n {
		return nil
	}

	out := make([]DequeuedPlayer, 0, n)
	for i := 0; i < n; i++ {
		front := s.order.Front()
		e := front.Value.(*entry)
		out = append(out, DequeuedPlayer{PlayerID: e.playerID, Name: e.name, Conn: e.conn})
		s.order.Remove(front)
		delete(s.index, e.playerID)
	}
	return out
}
