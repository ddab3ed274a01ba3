// Package scheduler ejecuta las tareas periódicas del servicio fuera del ciclo de vida de las peticiones HTTP.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/inventory-alerts/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Job tarea programada. El error se registra y se descarta; el siguiente tick se ejecuta igual.
type Job func(ctx context.Context) error

// MetricsRecorder métrica por ejecución de tarea.
type MetricsRecorder interface {
	JobRun(job, status string, elapsed time.Duration)
}

const (
	statusOK    = "ok"
	statusError = "error"
)

// Scheduler temporizador de proceso con tareas identificadas por nombre.
// Los ticks de una misma tarea no se solapan: si la anterior sigue corriendo, el tick se omite.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	metrics MetricsRecorder
	log     *logger.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
	started bool
	stopped bool
}

// New construye el scheduler. loc es la zona horaria de referencia de las expresiones cron.
func New(loc *time.Location, metrics MetricsRecorder, log *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx:     ctx,
		cancel:  cancel,
		metrics: metrics,
		log:     log,
		entries: make(map[string]cron.EntryID),
	}
}

// Register agrega o reemplaza la tarea name. spec acepta cron de 5 campos o descriptores (@every 1h, @daily).
func (s *Scheduler) Register(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return fmt.Errorf("scheduler detenido")
	}

	id, err := s.cron.AddJob(spec, cron.FuncJob(func() { s.run(name, job) }))
	if err != nil {
		return fmt.Errorf("registrar tarea %s (%q): %w", name, spec, err)
	}
	if prev, ok := s.entries[name]; ok {
		s.cron.Remove(prev)
	}
	s.entries[name] = id
	s.log.Info().Str("job", name).Str("spec", spec).Msg("tarea programada")
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	start := time.Now()
	err := job(s.ctx)
	elapsed := time.Since(start)

	status := statusOK
	if err != nil {
		status = statusError
		s.log.Error().Err(err).Str("job", name).Dur("elapsed", elapsed).Msg("tarea programada fallida")
	} else {
		s.log.Debug().Str("job", name).Dur("elapsed", elapsed).Msg("tarea programada completada")
	}
	if s.metrics != nil {
		s.metrics.JobRun(name, status, elapsed)
	}
}

// Start arranca el temporizador. Llamadas repetidas no tienen efecto.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.entries)).Msg("scheduler iniciado")
}

// Shutdown cancela los ticks futuros y espera las tareas en curso hasta que ctx venza.
// Las tareas en curso reciben la cancelación por su contexto.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info().Msg("scheduler detenido")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("detener scheduler: %w", ctx.Err())
	}
}

// Next próxima ejecución de la tarea name (cero si no existe o el scheduler no arrancó).
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Jobs nombres de las tareas registradas.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// cronLogger adapta el logger de la app a cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
