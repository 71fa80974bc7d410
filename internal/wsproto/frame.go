// Package wsproto implements the server-side subset of RFC 6455 used by
// the matchmaker and game servers: handshake, text-frame framing, and a
// TCP accept/dispatch loop. Only unfragmented text frames are produced;
// only opcodes 0x1 (text) and 0x8 (close) are meaningful on receive.
package wsproto

import (
	"encoding/binary"
	"errors"
	"io"
)

// Opcodes we care about. Binary, ping, pong and continuation frames are
// read off the wire (to keep the reader in sync) but are not delivered
// upward; only text and close matter to callers.
const (
	opContinuation byte = 0x0
	opText         byte = 0x1
	opBinary       byte = 0x2
	opClose        byte = 0x8
	opPing         byte = 0x9
	opPong         byte = 0xA
)

var (
	// ErrClosed signals the peer sent a close frame or the connection
	// otherwise ended. Callers must treat it as end-of-stream, not an error.
	ErrClosed = errors.New("wsproto: connection closed")

	errFrameTooLarge = errors.New("wsproto: frame larger than 4GiB not supported")
)

// readFrame reads exactly one frame from r and returns its opcode and
// unmasked payload. Client frames are always masked per RFC 6455 §5.3;
// an unmasked frame is accepted anyway since this server never talks to
// anything but the one client type it was written for.
func readFrame(r io.Reader) (opcode byte, payload []byte, err error) {
	var header [2]byte
	if _, err = io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}

	opcode = header[0] & 0x0F
	masked := header[1]&0x80 != 0
	length := uint64(header[1] & 0x7F)

	switch length {
	case 126:
		var ext [2]byte
		if _, err = io.ReadFull(r, ext[:]); err != nil {
			return 0, nil, err
		}
		length = uint64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if _, err = io.ReadFull(r, ext[:]); err != nil {
			return 0, nil, err
		}
		length = binary.BigEndian.Uint64(ext[:])
		if length > 1<<32 {
			return 0, nil, errFrameTooLarge
		}
	}

	var maskKey [4]byte
	if masked {
		if _, err = io.ReadFull(r, maskKey[:]); err != nil {
			return 0, nil, err
		}
	}

	payload = make([]byte, length)
	if _, err = io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}

	if masked {
		for i := range payload {
			payload[i] ^= maskKey[i%4]
		}
	}

	return opcode, payload, nil
}

// buildTextFrame assembles a single unfragmented, unmasked server->client
// text frame (FIN=1, opcode=0x1) with the 7/16/64-bit length encoding.
func buildTextFrame(payload []byte) []byte {
	return buildFrame(opText, payload)
}

func buildFrame(opcode byte, payload []byte) []byte {
	length := len(payload)
	first := byte(0x80) | (opcode & 0x0F) // FIN always set, no fragmentation

	var header []byte
	switch {
	case length < 126:
		header = []byte{first, byte(length)}
	case length <= 0xFFFF:
		header = make([]byte, 4)
		header[0] = first
		header[1] = 126
		binary.BigEndian.PutUint16(header[2:], uint16(length))
	default:
		header = make([]byte, 10)
		header[0] = first
		header[1] = 127
		binary.BigEndian.PutUint64(header[2:], uint64(length))
	}

	frame := make([]byte, 0, len(header)+length)
	frame = append(frame, header...)
	frame = append(frame, payload...)
	return frame
}

// buildCloseFrame is the two-byte close frame with no status payload.
func buildCloseFrame() []byte {
	return []byte{0x80 | opClose, 0x00}
}
