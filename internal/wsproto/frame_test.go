package wsproto

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndReadFrame_RoundTrip(t *testing.T) {
	payload := []byte(`{"command":"enqueue"}`)
	frame := buildTextFrame(payload)

	opcode, got, err := readFrame(bufio.NewReader(bytes.NewReader(frame)))
	require.NoError(t, err)
	assert.Equal(t, opText, opcode)
	assert.Equal(t, payload, got)
}

func TestBuildFrame_ExtendedLength16(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 200)
	frame := buildFrame(opText, payload)

	assert.Equal(t, byte(126), frame[1]&0x7f)

	opcode, got, err := readFrame(bufio.NewReader(bytes.NewReader(frame)))
	require.NoError(t, err)
	assert.Equal(t, opText, opcode)
	assert.Equal(t, payload, got)
}

func TestBuildFrame_ExtendedLength64(t *testing.T) {
	payload := bytes.Repeat([]byte("b"), 70000)
	frame := buildFrame(opText, payload)

	assert.Equal(t, byte(127), frame[1]&0x7f)

	opcode, got, err := readFrame(bufio.NewReader(bytes.NewReader(frame)))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrame_UnmasksClientPayload(t *testing.T) {
	payload := []byte("hello")
	mask := []byte{0x12, 0x34, 0x56, 0x78}
	masked := make([]byte, len(payload))
	for i, b := range payload {
		masked[i] = b ^ mask[i%4]
	}

	var buf bytes.Buffer
	buf.WriteByte(0x80 | opText)
	buf.WriteByte(0x80 | byte(len(payload)))
	buf.Write(mask)
	buf.Write(masked)

	opcode, got, err := readFrame(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, opText, opcode)
	assert.Equal(t, payload, got)
}

func TestBuildCloseFrame(t *testing.T) {
	frame := buildCloseFrame()
	opcode, _, err := readFrame(bufio.NewReader(bytes.NewReader(frame)))
	require.NoError(t, err)
	assert.Equal(t, opClose, opcode)
}

func TestReadFrame_EOF(t *testing.T) {
	_, _, err := readFrame(bufio.NewReader(strings.NewReader("")))
	assert.Error(t, err)
}
