// Package watchdog implements the two background sweeps that drive the
// system's timeouts and lifecycle transitions: the queue watchdog
// (heartbeat eviction + lobby promotion) and the session watchdog
// (colour-selection timeout + insufficient-player teardown).
package watchdog

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cordellbonnieux/Draw-And-Conquer/internal/game"
	"github.com/cordellbonnieux/Draw-And-Conquer/internal/matchmaker"
	"github.com/cordellbonnieux/Draw-And-Conquer/internal/protocol"
)

// sweepInterval is the 1-second sleep between sweeps specified in
// spec §4.5 / §4.6.
const sweepInterval = 1 * time.Second

// QueueWatchdog scans the matchmaker queue once per tick: it evicts
// stale heartbeats, then promotes players into freshly created game
// sessions while enough are queued.
type QueueWatchdog struct {
	Matchmaker             *matchmaker.State
	Registry               *game.Registry
	NumTiles               int
	ColourSelectionTimeout time.Duration
	Log                    *zap.SugaredLogger
}

type heartbeatTimeoutNotice struct {
	Command string `json:"command"`
}

type gameStartNotice struct {
	Command                string `json:"command"`
	GameSessionUUID        string `json:"game_session_uuid"`
	LobbySize              int    `json:"lobby_size"`
	BoardSize              int    `json:"board_size"`
	ColourSelectionTimeout int    `json:"colour_selection_timeout"`
}

// Run loops forever, sweeping once per sweepInterval. It returns only
// if stop is closed.
func (w *QueueWatchdog) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.Sweep(time.Now())
		}
	}
}

// Sweep performs one eviction-then-promotion pass. Exported so tests
// can drive it without waiting on the ticker.
func (w *QueueWatchdog) Sweep(now time.Time) {
	w.evictStale(now)
	w.promote()
}

// evictStale is spec §4.5's "Eviction phase": collect stale players
// under the matchmaker lock, then notify/close/remove each outside it.
func (w *QueueWatchdog) evictStale(now time.Time) {
	stale := w.Matchmaker.StalePlayers(now)

	for _, s := range stale {
		_ = s.Conn.WriteText(protocol.Marshal(heartbeatTimeoutNotice{Command: "heartbeat_timeout"}))
		s.Conn.Close()
		w.Matchmaker.Remove(s.PlayerID)
		w.Log.Infow("player evicted for heartbeat timeout", "player_id", s.PlayerID)
	}
}

// promote is spec §4.5's "Promotion phase": repeat while the queue is
// at least LobbySize long, dequeueing exactly that many atomically,
// registering a session, and notifying the promoted players.
func (w *QueueWatchdog) promote() {
	for w.Matchmaker.Length() >= w.Matchmaker.LobbySize {
		dequeued := w.Matchmaker.DequeueN(w.Matchmaker.LobbySize)
		if len(dequeued) < w.Matchmaker.LobbySize {
			// Defensive per spec §4.5 step 2: shouldn't happen given the guard above.
			return
		}

		sessionUUID := uuid.NewString()

		playerIDs := make([]string, len(dequeued))
		playerNames := make(map[string]string, len(dequeued))
		for i, p := range dequeued {
			playerIDs[i] = p.PlayerID
			playerNames[p.PlayerID] = p.Name
		}

		w.Registry.Create(sessionUUID, playerIDs, playerNames, w.NumTiles, w.ColourSelectionTimeout)
		w.Log.Infow("session created", "session_uuid", sessionUUID, "players", playerIDs)

		notice := protocol.Marshal(gameStartNotice{
			Command:                "game_start",
			GameSessionUUID:        sessionUUID,
			LobbySize:              w.Matchmaker.LobbySize,
			BoardSize:              w.NumTiles,
			ColourSelectionTimeout: int(w.ColourSelectionTimeout.Seconds()),
		})

		for _, p := range dequeued {
			_ = p.Conn.WriteText(notice)
			p.Conn.Close()
		}
	}
}
