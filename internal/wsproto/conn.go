package wsproto

import (
	"bufio"
	"net"
	"sync"
)

// Conn is a handshake-completed WebSocket connection over a raw TCP
// socket. It exposes exactly the surface the matchmaker and game
// handlers need: read one text message at a time, write one text
// message at a time, and close. Receive errors collapse to ErrClosed and
// close errors are swallowed, per spec §4.1 "Failure semantics"; send
// errors are returned by WriteText.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader

	writeMu sync.Mutex // serializes frame writes; a handler's send and a broadcast's send can race
}

// NewConn wraps an already handshake-completed raw connection. Exported
// so tests in other packages can drive handlers over a net.Pipe without
// reimplementing the handshake.
func NewConn(raw net.Conn) *Conn {
	return &Conn{raw: raw, reader: bufio.NewReader(raw)}
}

// RemoteAddr returns the underlying socket's remote address, used only
// for logging.
func (c *Conn) RemoteAddr() string {
	if c.raw == nil {
		return ""
	}
	return c.raw.RemoteAddr().String()
}

// ReadMessage blocks for the next complete text message. It returns
// ErrClosed when the peer sends a close frame or the socket is
// otherwise gone; binary/ping/pong/continuation frames are consumed and
// skipped since the protocol never uses them.
func (c *Conn) ReadMessage() (string, error) {
	for {
		opcode, payload, err := readFrame(c.reader)
		if err != nil {
			return "", ErrClosed
		}

		switch opcode {
		case opText:
			return string(payload), nil
		case opClose:
			return "", ErrClosed
		default:
			// Binary, ping, pong, continuation: not part of this protocol.
			// Dropped rather than delivered upward; keeps the reader in sync.
			continue
		}
	}
}

// WriteText sends a single unfragmented text frame and returns any I/O
// error. The accept loop never sees these errors, so a failed send does
// not end it; broadcast call sites swallow them per spec §4.4.
func (c *Conn) WriteText(payload string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_, err := c.raw.Write(buildTextFrame([]byte(payload)))
	return err
}

// Close sends the close frame and closes the socket. Idempotent and
// infallible from the caller's perspective: any error is swallowed.
func (c *Conn) Close() {
	c.writeMu.Lock()
	_, _ = c.raw.Write(buildCloseFrame())
	c.writeMu.Unlock()

	_ = c.raw.Close()
}
