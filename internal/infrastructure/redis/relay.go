// Package redis reparte los push en tiempo real entre instancias vía pub/sub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jhoicas/inventory-alerts/internal/application/notification"
	"github.com/jhoicas/inventory-alerts/pkg/config"
	"github.com/jhoicas/inventory-alerts/pkg/logger"
)

// NewClient crea el cliente Redis desde la configuración.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping verifica la conexión.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// LocalSink registro de canales de esta instancia.
type LocalSink interface {
	Push(userID string, payload []byte) int
}

type envelope struct {
	UserID  string          `json:"user_id"`
	Payload json.RawMessage `json:"payload"`
}

// Relay publica cada entrega en un canal Redis; todas las instancias (incluida esta) la reciben
// y la empujan a sus canales locales. Si Redis no responde se entrega solo localmente.
type Relay struct {
	client  *redis.Client
	channel string
	local   LocalSink
	log     *logger.Logger
	timeout time.Duration
}

var _ notification.Sink = (*Relay)(nil)

// NewRelay construye el relay sobre channel.
func NewRelay(client *redis.Client, channel string, local LocalSink, log *logger.Logger) *Relay {
	return &Relay{
		client:  client,
		channel: channel,
		local:   local,
		log:     log,
		timeout: 2 * time.Second,
	}
}

// Deliver publica la entrega para todas las instancias.
func (r *Relay) Deliver(userID string, payload []byte) {
	msg, err := json.Marshal(envelope{UserID: userID, Payload: payload})
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("serializar entrega para relay")
		r.local.Push(userID, payload)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, msg).Err(); err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("relay no disponible, entrega local")
		r.local.Push(userID, payload)
	}
}

// Run se suscribe al canal y entrega localmente cada mensaje hasta que ctx termine.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("suscribir %s: %w", r.channel, err)
	}
	r.log.Info().Str("channel", r.channel).Msg("relay de notificaciones suscrito")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *Relay) handle(raw string) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.UserID == "" {
		r.log.Warn().Err(err).Msg("mensaje de relay inválido")
		return
	}
	r.local.Push(env.UserID, env.Payload)
}
