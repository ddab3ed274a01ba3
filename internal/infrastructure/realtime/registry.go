// Package realtime mantiene los canales de entrega en tiempo real abiertos por usuario.
package realtime

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/jhoicas/inventory-alerts/internal/application/notification"
	"github.com/jhoicas/inventory-alerts/pkg/logger"
)

const shardCount = 32

// Channel canal dúplex abierto por un cliente. Send debe ser seguro para llamadas concurrentes.
type Channel interface {
	ID() string
	Send(payload []byte) error
}

// MetricsRecorder métricas de conexiones y envíos fallidos.
type MetricsRecorder interface {
	ConnectionOpened()
	ConnectionClosed()
	PushFailed()
}

type shard struct {
	mu    sync.RWMutex
	users map[string]map[string]Channel // userID -> channelID -> canal
}

// Registry userID -> conjunto de canales abiertos, particionado por hash de userID.
// Un canal pertenece a un solo usuario; el último canal que se retira elimina la entrada del usuario.
type Registry struct {
	shards  [shardCount]*shard
	owners  sync.Map // channelID -> userID
	metrics MetricsRecorder
	log     *logger.Logger
}

var _ notification.Sink = (*Registry)(nil)

// NewRegistry construye un registro vacío. metrics puede ser nil.
func NewRegistry(metrics MetricsRecorder, log *logger.Logger) *Registry {
	r := &Registry{metrics: metrics, log: log}
	for i := range r.shards {
		r.shards[i] = &shard{users: make(map[string]map[string]Channel)}
	}
	return r
}

func (r *Registry) shardFor(userID string) *shard {
	return r.shards[xxhash.Sum64String(userID)%shardCount]
}

// Register agrega ch al conjunto de userID. Si ch estaba registrado bajo otro usuario, se mueve.
func (r *Registry) Register(ch Channel, userID string) {
	if prev, loaded := r.owners.Swap(ch.ID(), userID); loaded && prev.(string) != userID {
		r.remove(ch.ID(), prev.(string))
	}

	s := r.shardFor(userID)
	s.mu.Lock()
	set, ok := s.users[userID]
	if !ok {
		set = make(map[string]Channel)
		s.users[userID] = set
	}
	_, existed := set[ch.ID()]
	set[ch.ID()] = ch
	s.mu.Unlock()

	if !existed && r.metrics != nil {
		r.metrics.ConnectionOpened()
	}
	r.log.Debug().Str("user_id", userID).Str("channel_id", ch.ID()).Msg("canal registrado")
}

// Unregister retira ch del conjunto de userID. No hace nada si no estaba registrado.
func (r *Registry) Unregister(ch Channel, userID string) {
	r.owners.CompareAndDelete(ch.ID(), userID)
	if r.remove(ch.ID(), userID) {
		r.log.Debug().Str("user_id", userID).Str("channel_id", ch.ID()).Msg("canal retirado")
	}
}

func (r *Registry) remove(channelID, userID string) bool {
	s := r.shardFor(userID)
	s.mu.Lock()
	set, ok := s.users[userID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	_, found := set[channelID]
	delete(set, channelID)
	if len(set) == 0 {
		delete(s.users, userID)
	}
	s.mu.Unlock()

	if found && r.metrics != nil {
		r.metrics.ConnectionClosed()
	}
	return found
}

// snapshot copia los canales del usuario para enviar fuera del lock.
func (r *Registry) snapshot(userID string) []Channel {
	s := r.shardFor(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.users[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]Channel, 0, len(set))
	for _, ch := range set {
		out = append(out, ch)
	}
	return out
}

// Push envía payload a todos los canales de userID. Usuario sin canales: no-op.
// Los canales que fallan se retiran al terminar el envío; el resto recibe el payload igual.
// Devuelve cuántos canales lo recibieron.
func (r *Registry) Push(userID string, payload []byte) int {
	channels := r.snapshot(userID)
	if len(channels) == 0 {
		return 0
	}
	delivered := 0
	var failed []Channel
	for _, ch := range channels {
		if err := ch.Send(payload); err != nil {
			r.log.Warn().Err(err).Str("user_id", userID).Str("channel_id", ch.ID()).Msg("envío fallido, se retira el canal")
			failed = append(failed, ch)
			continue
		}
		delivered++
	}
	for _, ch := range failed {
		if r.metrics != nil {
			r.metrics.PushFailed()
		}
		r.Unregister(ch, userID)
	}
	return delivered
}

// Deliver adapta Push a notification.Sink.
func (r *Registry) Deliver(userID string, payload []byte) {
	r.Push(userID, payload)
}

// Broadcast envía payload a todos los canales de todos los usuarios. Devuelve cuántos lo recibieron.
func (r *Registry) Broadcast(payload []byte) int {
	delivered := 0
	for _, userID := range r.ConnectedUsers() {
		delivered += r.Push(userID, payload)
	}
	return delivered
}

// ConnectedUsers usuarios con al menos un canal abierto, ordenados.
func (r *Registry) ConnectedUsers() []string {
	users := make([]string, 0)
	for _, s := range r.shards {
		s.mu.RLock()
		for userID := range s.users {
			users = append(users, userID)
		}
		s.mu.RUnlock()
	}
	sort.Strings(users)
	return users
}

// ConnectionCount número de canales abiertos de userID.
func (r *Registry) ConnectionCount(userID string) int {
	s := r.shardFor(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users[userID])
}

// TotalConnections canales abiertos en todo el registro.
func (r *Registry) TotalConnections() int {
	total := 0
	for _, s := range r.shards {
		s.mu.RLock()
		for _, set := range s.users {
			total += len(set)
		}
		s.mu.RUnlock()
	}
	return total
}
