package wsproto

import (
	"bufio"
	"context"
	"net"

	"go.uber.org/zap"
)

// backlog documents the original implementation's socket.listen(128);
// the net package does not expose a per-listener backlog knob, so the
// OS-level default (net.core.somaxconn on Linux) governs in practice.
const backlog = 128

// Handler is a stateless transformer over shared state: given a
// connection, its peer address, one decoded text message, and the
// shared state, it mutates state and/or replies on conn. Handlers never
// signal the dispatcher to close the connection; that is exclusively a
// watchdog's or the client's prerogative (spec §4.2).
type Handler[S any] func(conn *Conn, addr string, message string, state S)

// Listener accepts WebSocket connections on a single TCP port and
// dispatches decoded text messages to Handler.
type Listener[S any] struct {
	addr    string
	state   S
	handler Handler[S]
	logger  *zap.SugaredLogger
}

// NewListener builds a Listener bound to addr ("host:port") that will
// invoke handler for every decoded text message, passing state through
// unchanged.
func NewListener[S any](addr string, state S, handler Handler[S], logger *zap.SugaredLogger) *Listener[S] {
	return &Listener[S]{addr: addr, state: state, handler: handler, logger: logger}
}

// Serve opens the listening socket and blocks, accepting connections
// until the socket errors (e.g. the process is interrupted and the
// listener closed from another goroutine).
func (l *Listener[S]) Serve() error {
	lc := net.ListenConfig{
		Control: setReuseAddr,
	}
	ln, err := lc.Listen(context.Background(), "tcp", l.addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	l.logger.Infow("listening", "addr", l.addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go l.handle(conn)
	}
}

// handle performs the handshake then loops reading text messages until a
// read fails (close frame, disconnect, or any socket error). Send errors
// inside the handler do not end the loop. The connection is closed
// unconditionally on loop exit (spec §4.2).
func (l *Listener[S]) handle(raw net.Conn) {
	defer raw.Close()

	addr := raw.RemoteAddr().String()

	// A panic in the handler (malformed input hitting an edge case, a
	// future bug, a third-party-lib panic) must only end this one
	// connection, not the process — spec §7 "no global fatal path".
	defer func() {
		if r := recover(); r != nil {
			l.logger.Errorw("worker panic, connection closed", "addr", addr, "panic", r)
		}
	}()

	reader := bufio.NewReader(raw)

	req, err := readHandshake(reader)
	if err != nil {
		return
	}
	if !req.valid() {
		writeBadRequest(bufio.NewWriter(raw))
		return
	}
	if err := writeSwitchingProtocols(bufio.NewWriter(raw), req.key); err != nil {
		return
	}

	conn := &Conn{raw: raw, reader: reader}

	for {
		message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		l.handler(conn, addr, message, l.state)
	}
}
