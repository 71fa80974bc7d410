package wsproto

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadHandshake_Valid(t *testing.T) {
	raw := "GET /game HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"\r\n"

	req, err := readHandshake(bufio.NewReader(strings.NewReader(raw)))
	require.NoError(t, err)
	assert.True(t, req.valid())
	assert.Equal(t, "dGhlIHNhbXBsZSBub25jZQ==", req.key)
}

func TestHandshakeRequest_Invalid(t *testing.T) {
	cases := []handshakeRequest{
		{upgrade: "", key: "abc"},
		{upgrade: "websocket", key: ""},
		{upgrade: "not-websocket", key: "abc"},
	}
	for _, c := range cases {
		assert.False(t, c.valid())
	}
}

func TestAcceptKey_RFC6455Example(t *testing.T) {
	// The exact example from RFC 6455 §1.3.
	got := acceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", got)
}

func TestWriteSwitchingProtocols(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeSwitchingProtocols(w, "dGhlIHNhbXBsZSBub25jZQ=="))

	out := buf.String()
	assert.Contains(t, out, "101 Switching Protocols")
	assert.Contains(t, out, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=")
}

func TestWriteBadRequest(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeBadRequest(w))
	assert.Contains(t, buf.String(), "400 Bad Request")
}
