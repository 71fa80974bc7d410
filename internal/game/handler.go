package game

import (
	"go.uber.org/zap"

	"github.com/cordellbonnieux/Draw-And-Conquer/internal/protocol"
	"github.com/cordellbonnieux/Draw-And-Conquer/internal/wsproto"
)

type ackReply struct {
	Status string `json:"status"`
}

// Handle dispatches one decoded game-server request. Every command
// requires the session to exist, the player to belong to it, and the
// session to not have ended (spec §4.4 preamble); the handler re-binds
// the player's connection before running any command logic, so a
// reconnecting client's new socket becomes the target of future
// broadcasts immediately.
func Handle(conn *wsproto.Conn, addr string, message string, registry *Registry, log *zap.SugaredLogger) {
	req, err := protocol.ParseRequest(message)
	if err != nil {
		conn.WriteText(protocol.NewErrorReply(err))
		return
	}

	if req.GameSessionUUID == "" {
		conn.WriteText(protocol.NewErrorReply(protocol.ErrMissingSessionUUID))
		return
	}
	if req.UUID == "" {
		conn.WriteText(protocol.NewErrorReply(protocol.ErrMissingPlayerUUID))
		return
	}
	if req.Command == "" {
		conn.WriteText(protocol.NewErrorReply(protocol.ErrMissingCommand))
		return
	}

	session := registry.Get(req.GameSessionUUID)
	if session == nil {
		conn.WriteText(protocol.NewErrorReply(protocol.ErrSessionNotFound))
		return
	}
	if !session.HasPlayer(req.UUID) {
		conn.WriteText(protocol.NewErrorReply(protocol.ErrPlayerNotInSession))
		return
	}

	session.BindConnection(req.UUID, conn)

	if session.Ended() {
		conn.WriteText(protocol.NewErrorReply(protocol.ErrGameEnded))
		return
	}

	switch req.Command {
	case "pen_colour_request":
		handleColourRequest(conn, req, session, log)
	case "pen_down":
		handlePenDown(conn, req, session)
	case "pen_up_tile_claimed":
		handlePenUp(conn, req, session, true, log)
	case "pen_up_tile_not_claimed":
		handlePenUp(conn, req, session, false, log)
	default:
		conn.WriteText(protocol.NewErrorReply(protocol.ErrUnknownCommand))
	}
}

func handleColourRequest(conn *wsproto.Conn, req protocol.Request, session *Session, log *zap.SugaredLogger) {
	reply, _, justStarted, err := session.RequestColour(req.UUID)
	if err != nil {
		conn.WriteText(protocol.NewErrorReply(err))
		return
	}

	conn.WriteText(reply)
	if justStarted {
		log.Infow("session started", "session_uuid", session.UUID)
	}
}

func handlePenDown(conn *wsproto.Conn, req protocol.Request, session *Session) {
	if req.Index == nil {
		conn.WriteText(protocol.NewErrorReply(protocol.ErrMissingTileIndex))
		return
	}

	if err := session.PenDown(req.UUID, *req.Index); err != nil {
		conn.WriteText(protocol.NewErrorReply(err))
		return
	}

	conn.WriteText(protocol.Marshal(ackReply{Status: "success"}))
}

func handlePenUp(conn *wsproto.Conn, req protocol.Request, session *Session, claim bool, log *zap.SugaredLogger) {
	if req.Index == nil {
		conn.WriteText(protocol.NewErrorReply(protocol.ErrMissingTileIndex))
		return
	}

	result, err := session.PenUp(req.UUID, *req.Index, claim)
	if err != nil {
		conn.WriteText(protocol.NewErrorReply(err))
		return
	}

	conn.WriteText(protocol.Marshal(ackReply{Status: "success"}))

	if result.Won {
		log.Infow("session won", "session_uuid", session.UUID, "winner", result.WinnerUUID)
	}
}
