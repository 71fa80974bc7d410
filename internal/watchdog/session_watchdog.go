package watchdog

import (
	"time"

	"go.uber.org/zap"

	"github.com/cordellbonnieux/Draw-And-Conquer/internal/game"
	"github.com/cordellbonnieux/Draw-And-Conquer/internal/protocol"
)

// SessionWatchdog scans unstarted game sessions once per tick: it
// evicts players who missed the colour-selection window, then tears
// down sessions that fall below the minimum player count.
type SessionWatchdog struct {
	Registry *game.Registry
	Log      *zap.SugaredLogger
}

type inactivePlayerNotice struct {
	Command string `json:"command"`
}

type notEnoughPlayersNotice struct {
	Command string `json:"command"`
}

// Run loops forever, sweeping once per sweepInterval, until stop is
// closed.
func (w *SessionWatchdog) Run(stop <-chan struct{}) {
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

// Sweep performs one pass over every registered session. Exported so
// tests can drive it without waiting on the ticker.
func (w *SessionWatchdog) Sweep(now time.Time) {
	for uuid, session := range w.Registry.Snapshot() {
		if session.GameStarted {
			// Terminal activity from here is client-driven (spec §4.6).
			continue
		}

		w.removeInactive(session, now)

		if session.BelowMinPlayers() {
			w.teardown(uuid, session)
		}
	}
}

// removeInactive is spec §4.6 step 1-2.
func (w *SessionWatchdog) removeInactive(session *game.Session, now time.Time) {
	for _, playerID := range session.InactivePlayers(now) {
		conns := session.ConnectionsSnapshot()
		if conn, ok := conns[playerID]; ok {
			_ = conn.WriteText(protocol.Marshal(inactivePlayerNotice{Command: "inactive_player"}))
			conn.Close()
		}
		session.RemovePlayer(playerID)
		w.Log.Infow("player removed for colour-selection timeout", "session_uuid", session.UUID, "player_id", playerID)
	}
}

// teardown is spec §4.6 step 3: broadcast not_enough_players, close
// remaining connections, and delete the session from the registry.
func (w *SessionWatchdog) teardown(uuid string, session *game.Session) {
	notice := protocol.Marshal(notEnoughPlayersNotice{Command: "not_enough_players"})

	for _, conn := range session.ConnectionsSnapshot() {
		_ = conn.WriteText(notice)
		conn.Close()
	}

	w.Registry.Remove(uuid)
	w.Log.Infow("session torn down for insufficient players", "session_uuid", uuid)
}
