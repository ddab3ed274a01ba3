package realtime

import (
	"errors"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWire struct {
	messages [][]byte
	pings    int
	closes   int
	writeErr error
}

func (w *recordingWire) WriteMessage(messageType int, data []byte) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	if messageType == websocket.TextMessage {
		w.messages = append(w.messages, data)
	}
	return nil
}

func (w *recordingWire) WriteControl(messageType int, _ []byte, _ time.Time) error {
	if messageType == websocket.PingMessage {
		w.pings++
	}
	return nil
}

func (w *recordingWire) SetWriteDeadline(time.Time) error { return nil }

func (w *recordingWire) Close() error {
	w.closes++
	return nil
}

func TestConn_SendPingClose(t *testing.T) {
	wire := &recordingWire{}
	c := NewConn(wire)
	require.NotEmpty(t, c.ID())

	require.NoError(t, c.Send([]byte("hola")))
	require.NoError(t, c.Ping())
	assert.Equal(t, [][]byte{[]byte("hola")}, wire.messages)
	assert.Equal(t, 1, wire.pings)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, wire.closes)

	assert.ErrorIs(t, c.Send([]byte("tarde")), ErrChannelClosed)
	assert.ErrorIs(t, c.Ping(), ErrChannelClosed)
}

func TestConn_ErrorDeEscritura(t *testing.T) {
	wire := &recordingWire{writeErr: errors.New("broken pipe")}
	c := NewConn(wire)
	assert.Error(t, c.Send([]byte("x")))
}
