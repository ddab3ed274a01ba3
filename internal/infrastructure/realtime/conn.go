package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const writeWait = 10 * time.Second

// ErrChannelClosed envío sobre un canal ya cerrado.
var ErrChannelClosed = errors.New("canal cerrado")

// wireConn lo que se usa de la conexión websocket subyacente.
type wireConn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Conn canal websocket registrable. Serializa las escrituras: la conexión admite un solo escritor.
type Conn struct {
	id     string
	ws     wireConn
	mu     sync.Mutex
	closed bool
}

var _ Channel = (*Conn)(nil)

// NewConn envuelve una conexión ya aceptada.
func NewConn(ws wireConn) *Conn {
	return &Conn{id: uuid.New().String(), ws: ws}
}

func (c *Conn) ID() string { return c.id }

// Send escribe un frame de texto con deadline.
func (c *Conn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

// Ping envía un control frame ping.
func (c *Conn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Close cierra la conexión una sola vez.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.ws.Close()
}
