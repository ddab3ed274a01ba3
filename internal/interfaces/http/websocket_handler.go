package http

import (
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-alerts/internal/application/dto"
	"github.com/jhoicas/inventory-alerts/internal/application/notification"
	"github.com/jhoicas/inventory-alerts/internal/infrastructure/realtime"
	"github.com/jhoicas/inventory-alerts/pkg/logger"
)

const (
	wsPongWait       = 60 * time.Second
	wsMaxMessageSize = 4 * 1024
)

// WebSocketHandler canal de notificaciones en tiempo real.
type WebSocketHandler struct {
	registry   *realtime.Registry
	log        *logger.Logger
	pingPeriod time.Duration
	now        func() time.Time
}

// NewWebSocketHandler construye el handler. pingPeriod <= 0 usa 54s.
func NewWebSocketHandler(registry *realtime.Registry, pingPeriod time.Duration, log *logger.Logger) *WebSocketHandler {
	if pingPeriod <= 0 {
		pingPeriod = (wsPongWait * 9) / 10
	}
	return &WebSocketHandler{registry: registry, log: log, pingPeriod: pingPeriod, now: time.Now}
}

// Upgrade rechaza peticiones que no piden el protocolo websocket.
func (h *WebSocketHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.Status(fiber.StatusUpgradeRequired).JSON(dto.ErrorResponse{Code: "UPGRADE_REQUIRED", Message: "se requiere websocket"})
}

// Notifications godoc
// @Summary      Canal websocket de notificaciones
// @Description  Autenticación con ?token=<jwt>. Tramas: connection, notification, pong.
// @Tags         notifications
// @Param        token  query  string  true  "JWT"
// @Router       /api/ws/notifications [get]
func (h *WebSocketHandler) Notifications() fiber.Handler {
	return websocket.New(h.serve)
}

func (h *WebSocketHandler) serve(ws *websocket.Conn) {
	userID, _ := ws.Locals(LocalUserID).(string)
	if userID == "" {
		_ = ws.Close()
		return
	}
	conn := realtime.NewConn(ws)
	h.registry.Register(conn, userID)
	log := h.log.Component("ws")
	log.Info().Str("user_id", userID).Str("channel_id", conn.ID()).Msg("canal de notificaciones abierto")

	done := make(chan struct{})
	defer func() {
		close(done)
		h.registry.Unregister(conn, userID)
		_ = conn.Close()
		log.Info().Str("user_id", userID).Str("channel_id", conn.ID()).Msg("canal de notificaciones cerrado")
	}()

	if hello, err := notification.EncodeConnection(userID); err == nil {
		if err := conn.Send(hello); err != nil {
			return
		}
	}

	go h.keepAlive(conn, done)

	ws.SetReadLimit(wsMaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(wsPongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		messageType, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("user_id", userID).Msg("lectura websocket")
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(wsPongWait))
		if messageType == websocket.TextMessage && strings.TrimSpace(string(msg)) == "ping" {
			pong, err := notification.EncodePong(h.now())
			if err != nil {
				continue
			}
			if err := conn.Send(pong); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHandler) keepAlive(conn *realtime.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				return
			}
		}
	}
}

// Stats godoc
// @Summary      Conexiones websocket activas
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ConnectionStatsResponse
// @Router       /api/ws/stats [get]
func (h *WebSocketHandler) Stats(c *fiber.Ctx) error {
	users := h.registry.ConnectedUsers()
	perUser := make(map[string]int, len(users))
	total := 0
	for _, u := range users {
		n := h.registry.ConnectionCount(u)
		perUser[u] = n
		total += n
	}
	return c.JSON(dto.ConnectionStatsResponse{
		ConnectedUsers:   users,
		TotalUsers:       len(users),
		TotalConnections: total,
		PerUser:          perUser,
	})
}
