// Package game implements the game-session state machine: colour
// assignment, tile locking/claiming, win detection, and the broadcast
// primitives the watchdog and handler use.
package game

import (
	"sync"
	"time"

	"github.com/cordellbonnieux/Draw-And-Conquer/internal/protocol"
	"github.com/cordellbonnieux/Draw-And-Conquer/internal/wsproto"
)

// initialPalette is the fixed colour set sessions draw from, in FIFO
// assignment order (spec §3).
var initialPalette = []string{
	"red", "blue", "green", "yellow", "purple", "orange", "pink", "cyan",
}

// minPlayers is the floor below which the session watchdog tears a
// session down (spec §4.6 step 3).
const minPlayers = 2

// Session is one game session's state machine. A single mutex protects
// every field for the lifetime of the session: connection re-binding,
// colour assignment, tile lock/unlock, win check, broadcast iteration,
// and player removal are all short critical sections that never hold
// the lock across a network send (spec §5).
type Session struct {
	mu sync.Mutex

	UUID        string
	PlayerIDs   []string
	PlayerNames map[string]string

	NumTiles    int
	TilesToWin  int

	availableColours []string
	playerColours    map[string]string
	coloursRequested map[string]bool
	lastColourReq    map[string]time.Time

	connections map[string]*wsproto.Conn

	tileOwners map[int]string
	tileLocks  map[int]string

	ColourSelectionTimeout time.Duration

	GameStarted bool
	GameEnded   bool
	Winner      string
}

// NewSession creates a session for the given participants, fixing
// TilesToWin at creation per spec §3 ("never recomputed").
func NewSession(uuid string, playerIDs []string, playerNames map[string]string, numTiles int, colourSelectionTimeout time.Duration) *Session {
	now := time.Now()
	lastReq := make(map[string]time.Time, len(playerIDs))
	for _, id := range playerIDs {
		lastReq[id] = now
	}

	palette := make([]string, len(initialPalette))
	copy(palette, initialPalette)

	return &Session{
		UUID:                   uuid,
		PlayerIDs:              append([]string(nil), playerIDs...),
		PlayerNames:            playerNames,
		NumTiles:               numTiles,
		TilesToWin:             numTiles/len(playerIDs) + 1,
		availableColours:       palette,
		playerColours:          make(map[string]string),
		coloursRequested:       make(map[string]bool),
		lastColourReq:          lastReq,
		connections:            make(map[string]*wsproto.Conn),
		tileOwners:             make(map[int]string),
		tileLocks:              make(map[int]string),
		ColourSelectionTimeout: colourSelectionTimeout,
	}
}

// BindConnection re-binds a participant's live connection, allowing
// reconnection within a session (spec §4.4 preamble).
func (s *Session) BindConnection(playerID string, conn *wsproto.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[playerID] = conn
}

// HasPlayer reports whether playerID is still a participant.
func (s *Session) HasPlayer(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPlayerLocked(playerID)
}

func (s *Session) hasPlayerLocked(playerID string) bool {
	for _, id := range s.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// Ended reports whether the session has already concluded.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.GameEnded
}

// broadcastTarget is a (playerID, conn) snapshot entry used so sends
// happen outside the lock.
type broadcastTarget struct {
	playerID string
	conn     *wsproto.Conn
}

// snapshotConnections copies the current connection map. Caller must
// hold s.mu.
func (s *Session) snapshotConnections(exclude string) []broadcastTarget {
	targets := make([]broadcastTarget, 0, len(s.connections))
	for id, conn := range s.connections {
		if id == exclude {
			continue
		}
		targets = append(targets, broadcastTarget{id, conn})
	}
	return targets
}

// broadcast sends payload to every target, swallowing individual send
// failures (spec §4.4 "Broadcast semantics").
func broadcast(targets []broadcastTarget, payload string) {
	for _, t := range targets {
		_ = t.conn.WriteText(payload)
	}
}

// playerInfo and currentPlayersReply form the current_players broadcast,
// built once all participants have colours.
type playerInfo struct {
	Colour string `json:"colour"`
	Name   string `json:"name"`
}

type currentPlayersReply struct {
	Command string                `json:"command"`
	Players map[string]playerInfo `json:"players"`
}

// RequestColour implements "pen_colour_request" (spec §4.4 table).
// Idempotent: a player who already has a colour gets it back without
// consuming another palette entry. Returns the reply to send to the
// requester. If this assignment completed the roster, it also sends the
// current_players broadcast to every bound connection (the requester
// included) before returning, and returns that message plus
// justStarted=true.
func (s *Session) RequestColour(playerID string) (reply string, broadcastMsg string, justStarted bool, err error) {
	s.mu.Lock()

	if colour, ok := s.playerColours[playerID]; ok {
		s.mu.Unlock()
		return protocol.Marshal(colourResponse{Command: "pen_colour_response", Status: "success", Colour: colour}), "", false, nil
	}

	if len(s.availableColours) == 0 {
		s.mu.Unlock()
		return "", "", false, protocol.ErrNoColoursLeft
	}

	colour := s.availableColours[0]
	s.availableColours = s.availableColours[1:]
	s.playerColours[playerID] = colour
	s.coloursRequested[playerID] = true
	s.lastColourReq[playerID] = time.Now()

	reply = protocol.Marshal(colourResponse{Command: "pen_colour_response", Status: "success", Colour: colour})

	if len(s.coloursRequested) == len(s.PlayerIDs) {
		players := make(map[string]playerInfo, len(s.PlayerIDs))
		for _, id := range s.PlayerIDs {
			players[id] = playerInfo{Colour: s.playerColours[id], Name: s.PlayerNames[id]}
		}
		s.GameStarted = true
		targets := s.snapshotConnections("")
		s.mu.Unlock()

		broadcastMsg = protocol.Marshal(currentPlayersReply{Command: "current_players", Players: players})
		broadcast(targets, broadcastMsg)
		return reply, broadcastMsg, true, nil
	}

	s.mu.Unlock()
	return reply, "", false, nil
}

type colourResponse struct {
	Command string `json:"command"`
	Status  string `json:"status"`
	Colour  string `json:"colour"`
}

// PenDown implements "pen_down": lock a tile for playerID if it isn't
// already locked, then broadcast to everyone else (spec §4.4 table).
func (s *Session) PenDown(playerID string, index int) error {
	s.mu.Lock()

	if _, locked := s.tileLocks[index]; locked {
		s.mu.Unlock()
		return protocol.ErrTileLocked
	}
	s.tileLocks[index] = playerID
	colour := s.playerColours[playerID]
	targets := s.snapshotConnections(playerID)
	s.mu.Unlock()

	broadcast(targets, protocol.Marshal(penDownBroadcast{
		Command: "pen_down_broadcast",
		Index:   index,
		Colour:  colour,
	}))
	return nil
}

type penDownBroadcast struct {
	Command string `json:"command"`
	Index   int    `json:"index"`
	Colour  string `json:"colour"`
}

// penUpResult reports whether the claim won the game and who won. PenUp
// has already sent the game_win broadcast by the time it returns this.
type penUpResult struct {
	Won          bool
	WinnerUUID   string
	WinnerName   string
	WinnerColour string
}

// PenUp implements both "pen_up_tile_claimed" and
// "pen_up_tile_not_claimed" (spec §4.4 table). claim selects which.
func (s *Session) PenUp(playerID string, index int, claim bool) (penUpResult, error) {
	s.mu.Lock()

	owner, locked := s.tileLocks[index]
	if !locked || owner != playerID {
		s.mu.Unlock()
		return penUpResult{}, protocol.ErrTileNotLockedHere
	}
	delete(s.tileLocks, index)

	colour := s.playerColours[playerID]
	status := "pen_up_tile_not_claimed"
	var result penUpResult

	if claim {
		status = "pen_up_tile_claimed"
		s.tileOwners[index] = playerID

		owned := 0
		for _, owner := range s.tileOwners {
			if owner == playerID {
				owned++
			}
		}
		if owned >= s.TilesToWin {
			s.GameEnded = true
			s.Winner = playerID
			result = penUpResult{
				Won:          true,
				WinnerUUID:   playerID,
				WinnerName:   s.PlayerNames[playerID],
				WinnerColour: colour,
			}
		}
	}

	targets := s.snapshotConnections(playerID)
	var winTargets []broadcastTarget
	if result.Won {
		winTargets = s.snapshotConnections("")
	}
	s.mu.Unlock()

	broadcast(targets, protocol.Marshal(penUpBroadcast{
		Command: "pen_up_broadcast",
		Index:   index,
		Colour:  colour,
		Status:  status,
	}))

	if result.Won {
		broadcast(winTargets, protocol.Marshal(gameWinBroadcast{
			Command:      "game_win",
			WinnerUUID:   result.WinnerUUID,
			WinnerName:   result.WinnerName,
			WinnerColour: result.WinnerColour,
		}))
	}

	return result, nil
}

type penUpBroadcast struct {
	Command string `json:"command"`
	Index   int    `json:"index"`
	Colour  string `json:"colour"`
	Status  string `json:"status"`
}

type gameWinBroadcast struct {
	Command      string `json:"command"`
	WinnerUUID   string `json:"winner_uuid"`
	WinnerName   string `json:"winner_name"`
	WinnerColour string `json:"winner_colour"`
}

// InactivePlayers returns participants who have not yet requested a
// colour and whose last request timestamp is older than
// ColourSelectionTimeout. Returns nil once the session has started
// (spec §4.6: "Started sessions are skipped entirely").
func (s *Session) InactivePlayers(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GameStarted {
		return nil
	}

	var inactive []string
	for _, id := range s.PlayerIDs {
		if s.coloursRequested[id] {
			continue
		}
		if now.Sub(s.lastColourReq[id]) > s.ColourSelectionTimeout {
			inactive = append(inactive, id)
		}
	}
	return inactive
}

// RemovePlayer drops a participant and unlocks any tiles they held
// locked (never claimed); owned tiles and TilesToWin are untouched
// (spec §4.4 "Player removal").
func (s *Session) RemovePlayer(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range s.PlayerIDs {
		if id == playerID {
			s.PlayerIDs = append(s.PlayerIDs[:i], s.PlayerIDs[i+1:]...)
			break
		}
	}
	delete(s.connections, playerID)
	delete(s.playerColours, playerID)
	delete(s.coloursRequested, playerID)
	delete(s.lastColourReq, playerID)

	for tile, owner := range s.tileLocks {
		if owner == playerID {
			delete(s.tileLocks, tile)
		}
	}
}

// ConnectionsSnapshot returns every currently registered connection,
// used by the session watchdog to notify and close sockets outside the
// session lock.
func (s *Session) ConnectionsSnapshot() map[string]*wsproto.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*wsproto.Conn, len(s.connections))
	for id, conn := range s.connections {
		out[id] = conn
	}
	return out
}

// PlayerCount returns the current participant count.
func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.PlayerIDs)
}

// BelowMinPlayers reports whether the session has fallen below the
// minimum player threshold (spec §4.6 step 3).
func (s *Session) BelowMinPlayers() bool {
	return s.PlayerCount() < minPlayers
}
