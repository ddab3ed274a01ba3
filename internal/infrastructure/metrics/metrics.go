package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Estados de una ejecución de tarea programada.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics colectores Prometheus del pipeline de alertas y notificaciones.
// Un *Metrics nil es válido: todos los métodos son no-op.
type Metrics struct {
	alertsEmitted      *prometheus.CounterVec
	notificationsSent  prometheus.Counter
	notificationsSwept prometheus.Counter
	alertsSuppressed   prometheus.Counter
	jobRuns            *prometheus.CounterVec
	jobDuration        *prometheus.HistogramVec
	pushFailures       prometheus.Counter
	deliveriesDropped  prometheus.Counter
	connections        prometheus.Gauge
}

// New crea y registra los colectores en reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		alertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "stock_alerts_total",
			Help:      "Alertas de stock emitidas por severidad.",
		}, []string{"severity"}),
		notificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "notifications_created_total",
			Help:      "Notificaciones persistidas.",
		}),
		notificationsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "notifications_expired_deleted_total",
			Help:      "Notificaciones vencidas eliminadas por la limpieza.",
		}),
		alertsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "stock_alert_notifications_suppressed_total",
			Help:      "Notificaciones de alerta omitidas por la ventana de supresión.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "scheduler_job_runs_total",
			Help:      "Ejecuciones de tareas programadas por resultado.",
		}, []string{"job", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "inventory",
			Name:      "scheduler_job_duration_seconds",
			Help:      "Duración de las tareas programadas.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		pushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "ws_push_failures_total",
			Help:      "Envíos websocket fallidos (conexión descartada).",
		}),
		deliveriesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "delivery_dropped_total",
			Help:      "Entregas en tiempo real descartadas por cola llena o cerrada.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "inventory",
			Name:      "ws_connections",
			Help:      "Conexiones websocket abiertas.",
		}),
	}
	reg.MustRegister(
		m.alertsEmitted, m.notificationsSent, m.notificationsSwept, m.alertsSuppressed,
		m.jobRuns, m.jobDuration, m.pushFailures, m.deliveriesDropped, m.connections,
	)
	return m
}

func (m *Metrics) AlertEmitted(severity string) {
	if m == nil {
		return
	}
	m.alertsEmitted.WithLabelValues(severity).Inc()
}

func (m *Metrics) NotificationCreated() {
	if m == nil {
		return
	}
	m.notificationsSent.Inc()
}

func (m *Metrics) NotificationsSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.notificationsSwept.Add(float64(n))
}

func (m *Metrics) AlertSuppressed() {
	if m == nil {
		return
	}
	m.alertsSuppressed.Inc()
}

// JobRun registra el resultado y la duración de una ejecución.
func (m *Metrics) JobRun(job, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, status).Inc()
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

func (m *Metrics) PushFailed() {
	if m == nil {
		return
	}
	m.pushFailures.Inc()
}

func (m *Metrics) DeliveryDropped() {
	if m == nil {
		return
	}
	m.deliveriesDropped.Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}
