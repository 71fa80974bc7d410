package matchmaker

import (
	"go.uber.org/zap"

	"github.com/cordellbonnieux/Draw-And-Conquer/internal/protocol"
	"github.com/cordellbonnieux/Draw-And-Conquer/internal/wsproto"
)

// queueReply is the success envelope shared by "enqueue" and
// "queue_heartbeat": spec §4.3.
type queueReply struct {
	Status      string `json:"status"`
	QueueLength int    `json:"queue_length"`
}

// simpleSuccess is the bare success envelope used by "remove_from_queue".
type simpleSuccess struct {
	Status string `json:"status"`
}

// Handle dispatches one decoded matchmaker request. It mutates state
// under State's internal lock, then sends its reply after releasing the
// lock — spec §4.3's "mutate under lock, then send outside lock".
func Handle(conn *wsproto.Conn, addr string, message string, state *State, log *zap.SugaredLogger) {
	req, err := protocol.ParseRequest(message)
	if err != nil {
		conn.WriteText(protocol.NewErrorReply(err))
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

	switch req.Command {
	case "enqueue":
		handleEnqueue(conn, req, state, log)
	case "queue_heartbeat":
		handleHeartbeat(conn, req, state)
	case "remove_from_queue":
		handleRemove(conn, req, state, log)
	default:
		conn.WriteText(protocol.NewErrorReply(protocol.ErrUnknownCommand))
	}
}

func handleEnqueue(conn *wsproto.Conn, req protocol.Request, state *State, log *zap.SugaredLogger) {
	if state.InQueue(req.UUID) {
		conn.WriteText(protocol.NewErrorReply(protocol.ErrPlayerAlreadyQueued))
		return
	}
	if req.Name == "" {
		conn.WriteText(protocol.NewErrorReply(protocol.ErrMissingName))
		return
	}

	state.Enqueue(req.UUID, req.Name, conn)
	log.Infow("player enqueued", "player_id", req.UUID, "name", req.Name)

	conn.WriteText(protocol.Marshal(queueReply{Status: "success", QueueLength: state.Length()}))
}

func handleHeartbeat(conn *wsproto.Conn, req protocol.Request, state *State) {
	if !state.InQueue(req.UUID) {
		conn.WriteText(protocol.NewErrorReply(protocol.ErrPlayerNotInQueue))
		return
	}

	state.Heartbeat(req.UUID)
	conn.WriteText(protocol.Marshal(queueReply{Status: "success", QueueLength: state.Length()}))
}

func handleRemove(conn *wsproto.Conn, req protocol.Request, state *State, log *zap.SugaredLogger) {
	if !state.InQueue(req.UUID) {
		conn.WriteText(protocol.NewErrorReply(protocol.ErrPlayerNotInQueue))
		return
	}

	// Reply before removing, per spec §4.3 table.
	conn.WriteText(protocol.Marshal(simpleSuccess{Status: "success"}))
	state.Remove(req.UUID)
	log.Infow("player left queue", "player_id", req.UUID)
}
