package notification

import (
	"context"
	"sync"

	"github.com/jhoicas/inventory-alerts/pkg/logger"
)

// Sink destino final del push (registro local de canales o relay entre instancias).
type Sink interface {
	Deliver(userID string, payload []byte)
}

// DropRecorder métrica de entregas descartadas.
type DropRecorder interface {
	DeliveryDropped()
}

type delivery struct {
	userID  string
	payload []byte
}

// Dispatcher desacopla la persistencia de la entrega: Create encola y un worker dedicado empuja al Sink.
// La cola es acotada; con la cola llena el push se descarta.
type Dispatcher struct {
	queue   chan delivery
	sink    Sink
	drops   DropRecorder
	log     *logger.Logger
	done    chan struct{}
	stop    sync.Once
	wg      sync.WaitGroup
	started sync.Once
}

var _ Publisher = (*Dispatcher)(nil)

// NewDispatcher construye el dispatcher con una cola de size entregas.
func NewDispatcher(sink Sink, size int, drops DropRecorder, log *logger.Logger) *Dispatcher {
	if size <= 0 {
		size = 256
	}
	return &Dispatcher{
		queue: make(chan delivery, size),
		sink:  sink,
		drops: drops,
		log:   log,
		done:  make(chan struct{}),
	}
}

// Start lanza el worker de entrega. Termina con ctx o con Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.started.Do(func() {
		d.wg.Add(1)
		go d.run(ctx)
	})
}

// Publish encola sin bloquear. Devuelve false si se descartó.
func (d *Dispatcher) Publish(userID string, payload []byte) bool {
	select {
	case <-d.done:
		d.dropped(userID, "detenido")
		return false
	default:
	}
	select {
	case d.queue <- delivery{userID: userID, payload: payload}:
		return true
	default:
		d.dropped(userID, "cola llena")
		return false
	}
}

// Stop detiene el worker y espera a que termine. Las entregas pendientes se descartan.
func (d *Dispatcher) Stop() {
	d.stop.Do(func() { close(d.done) })
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.done:
			return
		case item := <-d.queue:
			d.deliver(item)
		}
	}
}

func (d *Dispatcher) deliver(item delivery) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("user_id", item.userID).Msg("entrega en tiempo real")
		}
	}()
	d.sink.Deliver(item.userID, item.payload)
}

func (d *Dispatcher) dropped(userID, reason string) {
	if d.drops != nil {
		d.drops.DeliveryDropped()
	}
	d.log.Warn().Str("user_id", userID).Str("reason", reason).Msg("push descartado")
}
