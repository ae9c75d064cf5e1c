package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores Prometheus de la aplicación.
// Se construye una vez en main y se inyecta; no hay registro global.
type Metrics struct {
	registry *prometheus.Registry

	// Alertas de stock
	AlertsCreated    *prometheus.CounterVec // label: kind
	AlertsSuppressed *prometheus.CounterVec // label: kind (duplicado ya vivo en el gateway)
	AlertsRetired    prometheus.Counter
	GatewayErrors    prometheus.Counter

	// Locks de edición
	LocksAcquired prometheus.Counter
	LockConflicts prometheus.Counter

	// Solicitudes de suministro
	RequestsDecided *prometheus.CounterVec // label: outcome (approved|rejected)
}

// New crea y registra los contadores en un registry propio.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		AlertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_alerts_created_total",
			Help:      "Alertas de stock creadas en el gateway de notificaciones, por tipo.",
		}, []string{"kind"}),
		AlertsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_alerts_suppressed_total",
			Help:      "Alertas omitidas porque ya existía una viva del mismo tipo.",
		}, []string{"kind"}),
		AlertsRetired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_alerts_retired_total",
			Help:      "Alertas de otros tipos eliminadas al crear una nueva.",
		}),
		GatewayErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_gateway_errors_total",
			Help:      "Errores del gateway de notificaciones (degradados, nunca bloquean la mutación).",
		}),
		LocksAcquired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edit_locks_acquired_total",
			Help:      "Locks de edición adquiridos o refrescados.",
		}),
		LockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edit_lock_conflicts_total",
			Help:      "Intentos de lock rechazados por otro titular activo.",
		}),
		RequestsDecided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supply_requests_decided_total",
			Help:      "Solicitudes de suministro decididas, por resultado.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.AlertsCreated, m.AlertsSuppressed, m.AlertsRetired, m.GatewayErrors,
		m.LocksAcquired, m.LockConflicts, m.RequestsDecided,
	)
	return m
}

// Handler devuelve el handler HTTP para exponer /metrics en un listener aparte.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
