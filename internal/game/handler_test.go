package game

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cordellbonnieux/Draw-And-Conquer/internal/protocol"
	"github.com/cordellbonnieux/Draw-And-Conquer/internal/wsproto"
)

var testLog = zap.NewNop().Sugar()

func newTestConnPair(t *testing.T) (*wsproto.Conn, net.Conn) {
	t.Helper()
	serverRaw, clientRaw := net.Pipe()
	t.Cleanup(func() {
		serverRaw.Close()
		clientRaw.Close()
	})
	return wsproto.NewConn(serverRaw), clientRaw
}

func readReply(t *testing.T, peer net.Conn) string {
	t.Helper()
	msg, err := wsproto.NewConn(peer).ReadMessage()
	require.NoError(t, err)
	return msg
}

func newRegistryWithSession() (*Registry, *Session) {
	r := NewRegistry()
	s := r.Create("session-1", []string{"p1", "p2"}, map[string]string{"p1": "Alice", "p2": "Bob"}, 10, time.Minute)
	return r, s
}

func TestHandle_SessionNotFound(t *testing.T) {
	r := NewRegistry()
	conn, peer := newTestConnPair(t)

	go Handle(conn, "addr", protocol.Marshal(map[string]interface{}{
		"uuid": "p1", "game_session_uuid": "nope", "command": "pen_colour_request",
	}), r, testLog)

	reply := readReply(t, peer)
	assert.Contains(t, reply, protocol.ErrSessionNotFound.Error())
}

func TestHandle_PlayerNotInSession(t *testing.T) {
	r, _ := newRegistryWithSession()
	conn, peer := newTestConnPair(t)

	go Handle(conn, "addr", protocol.Marshal(map[string]interface{}{
		"uuid": "ghost", "game_session_uuid": "session-1", "command": "pen_colour_request",
	}), r, testLog)

	reply := readReply(t, peer)
	assert.Contains(t, reply, protocol.ErrPlayerNotInSession.Error())
}

func TestHandle_ColourRequest_Success(t *testing.T) {
	r, _ := newRegistryWithSession()
	conn, peer := newTestConnPair(t)

	go Handle(conn, "addr", protocol.Marshal(map[string]interface{}{
		"uuid": "p1", "game_session_uuid": "session-1", "command": "pen_colour_request",
	}), r, testLog)

	reply := readReply(t, peer)
	assert.Contains(t, reply, "pen_colour_response")
	assert.Contains(t, reply, `"colour":"red"`)
}

func TestHandle_PenDown_MissingIndex(t *testing.T) {
	r, _ := newRegistryWithSession()
	conn, peer := newTestConnPair(t)

	go Handle(conn, "addr", protocol.Marshal(map[string]interface{}{
		"uuid": "p1", "game_session_uuid": "session-1", "command": "pen_down",
	}), r, testLog)

	reply := readReply(t, peer)
	assert.Contains(t, reply, protocol.ErrMissingTileIndex.Error())
}

func TestHandle_PenDown_Success(t *testing.T) {
	r, _ := newRegistryWithSession()
	conn, peer := newTestConnPair(t)

	go Handle(conn, "addr", protocol.Marshal(map[string]interface{}{
		"uuid": "p1", "game_session_uuid": "session-1", "command": "pen_down", "index": 3,
	}), r, testLog)

	reply := readReply(t, peer)
	assert.Contains(t, reply, `"status":"success"`)
}

func TestHandle_GameEnded_RejectsFurtherCommands(t *testing.T) {
	r, s := newRegistryWithSession()
	s.GameEnded = true

	conn, peer := newTestConnPair(t)
	go Handle(conn, "addr", protocol.Marshal(map[string]interface{}{
		"uuid": "p1", "game_session_uuid": "session-1", "command": "pen_colour_request",
	}), r, testLog)

	reply := readReply(t, peer)
	assert.Contains(t, reply, protocol.ErrGameEnded.Error())
}

func TestHandle_UnknownCommand(t *testing.T) {
	r, _ := newRegistryWithSession()
	conn, peer := newTestConnPair(t)

	go Handle(conn, "addr", protocol.Marshal(map[string]interface{}{
		"uuid": "p1", "game_session_uuid": "session-1", "command": "not_a_command",
	}), r, testLog)

	reply := readReply(t, peer)
	assert.Contains(t, reply, protocol.ErrUnknownCommand.Error())
}
