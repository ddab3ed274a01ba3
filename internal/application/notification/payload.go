package notification

import (
	"encoding/json"
	"time"

	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
)

// Tipos de trama enviadas por el canal en tiempo real.
const (
	FrameNotification = "notification"
	FrameConnection   = "connection"
	FramePong         = "pong"
)

// Frame sobre {type, data} que reciben los clientes websocket.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Payload datos de una notificación empujada en tiempo real. Los nombres de campo son contrato con el cliente.
type Payload struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Message          string  `json:"message"`
	NotificationType string  `json:"notification_type"`
	ReferenceID      *string `json:"reference_id"`
	ReferenceType    *string `json:"reference_type"`
}

// EncodeNotification serializa la trama "notification" de n.
func EncodeNotification(n *entity.Notification) ([]byte, error) {
	return json.Marshal(Frame{
		Type: FrameNotification,
		Data: Payload{
			ID:               n.ID,
			Title:            n.Title,
			Message:          n.Message,
			NotificationType: n.NotificationType,
			ReferenceID:      n.ReferenceID,
			ReferenceType:    n.ReferenceType,
		},
	})
}

// ConnectionData saludo enviado al registrar el canal.
type ConnectionData struct {
	Status  string `json:"status"`
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// PongData respuesta al "ping" de texto del cliente.
type PongData struct {
	Timestamp time.Time `json:"timestamp"`
}

// EncodeConnection serializa la trama "connection" para userID.
func EncodeConnection(userID string) ([]byte, error) {
	return json.Marshal(Frame{
		Type: FrameConnection,
		Data: ConnectionData{Status: "connected", UserID: userID, Message: "conexión de notificaciones establecida"},
	})
}

// EncodePong serializa la trama "pong".
func EncodePong(now time.Time) ([]byte, error) {
	return json.Marshal(Frame{Type: FramePong, Data: PongData{Timestamp: now.UTC()}})
}
