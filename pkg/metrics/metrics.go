// Package metrics - счетчики движка жизненного цикла для Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	transitions         *prometheus.CounterVec
	rejectedTransitions *prometheus.CounterVec
	licenseOperations   *prometheus.CounterVec
	replacementRuns     prometheus.Counter
	replacementPicked   prometheus.Gauge
}

// New регистрирует счетчики в собственном реестре, чтобы тесты не делили глобальный.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "equipment_transitions_total",
			Help:      "Успешные переходы жизненного цикла оборудования.",
		}, []string{"action", "to_state"}),
		rejectedTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "equipment_transitions_rejected_total",
			Help:      "Отклоненные переходы (недопустимое состояние, валидация, не найдено).",
		}, []string{"action", "reason"}),
		licenseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "license_operations_total",
			Help:      "Операции с пулом лицензий.",
		}, []string{"operation", "result"}),
		replacementRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "replacement_selector_runs_total",
			Help:      "Запуски подбора кандидатов на замену.",
		}),
		replacementPicked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "inventory",
			Name:      "replacement_candidates_last",
			Help:      "Число кандидатов в последнем подборе.",
		}),
	}

	registry.MustRegister(m.transitions, m.rejectedTransitions, m.licenseOperations, m.replacementRuns, m.replacementPicked)
	return m
}

func (m *Metrics) TransitionCommitted(action, toState string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action, toState).Inc()
}

func (m *Metrics) TransitionRejected(action, reason string) {
	if m == nil {
		return
	}
	m.rejectedTransitions.WithLabelValues(action, reason).Inc()
}

func (m *Metrics) LicenseOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.licenseOperations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ReplacementSelected(count int) {
	if m == nil {
		return
	}
	m.replacementRuns.Inc()
	m.replacementPicked.Set(float64(count))
}

// Handler отдает метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry нужен тестам для чтения значений.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
