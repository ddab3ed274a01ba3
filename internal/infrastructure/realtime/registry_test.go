package realtime_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jhoicas/inventory-alerts/internal/infrastructure/realtime"
	"github.com/jhoicas/inventory-alerts/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Canal de prueba
// ──────────────────────────────────────────────────────────────────────────────

type fakeChannel struct {
	id   string
	fail bool

	mu       sync.Mutex
	received [][]byte
}

func newChannel(id string) *fakeChannel { return &fakeChannel{id: id} }

func (c *fakeChannel) ID() string { return c.id }

func (c *fakeChannel) Send(payload []byte) error {
	if c.fail {
		return errors.New("conexión rota")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received = append(c.received, payload)
	return nil
}

func (c *fakeChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.received)
}

type countingMetrics struct {
	mu                     sync.Mutex
	opened, closed, failed int
}

func (m *countingMetrics) ConnectionOpened() { m.mu.Lock(); m.opened++; m.mu.Unlock() }
func (m *countingMetrics) ConnectionClosed() { m.mu.Lock(); m.closed++; m.mu.Unlock() }
func (m *countingMetrics) PushFailed()       { m.mu.Lock(); m.failed++; m.mu.Unlock() }

func newRegistry() *realtime.Registry {
	return realtime.NewRegistry(nil, logger.Nop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_VariosCanalesPorUsuario(t *testing.T) {
	r := newRegistry()
	r.Register(newChannel("a"), "7")
	r.Register(newChannel("b"), "7")
	r.Register(newChannel("c"), "8")

	assert.Equal(t, 2, r.ConnectionCount("7"))
	assert.Equal(t, 1, r.ConnectionCount("8"))
	assert.Equal(t, []string{"7", "8"}, r.ConnectedUsers())
	assert.Equal(t, 3, r.TotalConnections())
}

func TestRegister_MismoCanalNoDuplica(t *testing.T) {
	r := newRegistry()
	ch := newChannel("a")
	r.Register(ch, "7")
	r.Register(ch, "7")

	assert.Equal(t, 1, r.ConnectionCount("7"))
}

func TestRegister_CanalPerteneceAUnSoloUsuario(t *testing.T) {
	r := newRegistry()
	ch := newChannel("a")
	r.Register(ch, "7")
	r.Register(ch, "8")

	assert.Equal(t, 0, r.ConnectionCount("7"))
	assert.Equal(t, 1, r.ConnectionCount("8"))
	assert.Equal(t, []string{"8"}, r.ConnectedUsers())
}

func TestUnregister_UltimoCanalEliminaUsuario(t *testing.T) {
	r := newRegistry()
	a, b := newChannel("a"), newChannel("b")
	r.Register(a, "7")
	r.Register(b, "7")

	r.Unregister(a, "7")
	assert.Equal(t, []string{"7"}, r.ConnectedUsers())

	r.Unregister(b, "7")
	assert.Empty(t, r.ConnectedUsers(), "no deben quedar conjuntos vacíos")
	assert.Equal(t, 0, r.ConnectionCount("7"))

	r.Unregister(b, "7") // repetido: no-op
}

// ──────────────────────────────────────────────────────────────────────────────
// Push
// ──────────────────────────────────────────────────────────────────────────────

func TestPush_UsuarioSinCanalesEsNoOp(t *testing.T) {
	r := newRegistry()
	assert.NotPanics(t, func() {
		assert.Equal(t, 0, r.Push("42", []byte(`{"type":"notification"}`)))
	})
}

func TestPush_MultiDispositivoConCanalFallido(t *testing.T) {
	m := &countingMetrics{}
	r := realtime.NewRegistry(m, logger.Nop())
	ok := newChannel("ok")
	broken := newChannel("roto")
	broken.fail = true
	r.Register(ok, "7")
	r.Register(broken, "7")

	delivered := r.Push("7", []byte("hola"))

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, ok.count(), "el canal sano recibe el payload")
	assert.Equal(t, 1, r.ConnectionCount("7"), "solo se retira el canal fallido")
	assert.Equal(t, 1, m.failed)
	assert.Equal(t, 2, m.opened)
	assert.Equal(t, 1, m.closed)

	r.Push("7", []byte("otra"))
	assert.Equal(t, 2, ok.count())
}

func TestPush_TodosFallanEliminaUsuario(t *testing.T) {
	r := newRegistry()
	ch := newChannel("roto")
	ch.fail = true
	r.Register(ch, "7")

	assert.Equal(t, 0, r.Push("7", []byte("x")))
	assert.Empty(t, r.ConnectedUsers())
}

func TestBroadcast_TodosLosUsuarios(t *testing.T) {
	r := newRegistry()
	a, b, c := newChannel("a"), newChannel("b"), newChannel("c")
	c.fail = true
	r.Register(a, "1")
	r.Register(b, "2")
	r.Register(c, "2")

	assert.Equal(t, 2, r.Broadcast([]byte("aviso")))
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
	assert.Equal(t, 1, r.ConnectionCount("2"))
}

func TestRegistry_AccesoConcurrente(t *testing.T) {
	r := newRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", i%5)
			ch := newChannel(fmt.Sprintf("c%d", i))
			r.Register(ch, user)
			r.Push(user, []byte("x"))
			if i%2 == 0 {
				r.Unregister(ch, user)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 25, r.TotalConnections())
}
