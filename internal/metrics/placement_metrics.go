package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PlacementMetrics содержит метрики транзакции размещения заказа.
type PlacementMetrics struct {
	// Счётчики исходов
	placementStarted   prometheus.Counter
	placementCompleted prometheus.Counter
	placementRejected  *prometheus.CounterVec

	// Компенсации списания остатков
	compensations *prometheus.CounterVec

	// Гистограмма времени выполнения
	placementDuration prometheus.Histogram

	// Счётчик событий outbox
	outboxEvents prometheus.Counter

	// Gauge для размещений в полёте
	inflightPlacements prometheus.Gauge
}

// NewPlacementMetrics создаёт новый экземпляр метрик размещения.
func NewPlacementMetrics() *PlacementMetrics {
	return newPlacementMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newPlacementMetricsWithRegisterer(registerer prometheus.Registerer) *PlacementMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PlacementMetrics{
		placementStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_placement_started_total",
			Help: "Total number of order placement transactions started",
		}),
		placementCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_placement_completed_total",
			Help: "Total number of order placement transactions completed successfully",
		}),
		placementRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_placement_rejected_total",
			Help: "Total number of rejected placements grouped by reason",
		}, []string{"reason"}),
		compensations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_placement_compensations_total",
			Help: "Total number of stock compensations grouped by result",
		}, []string{"result"}),
		placementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "orders_placement_duration_seconds",
			Help:    "Duration of order placement transactions in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_outbox_events_total",
			Help: "Total number of outbox events enqueued by the placement service",
		}),
		inflightPlacements: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "orders_placement_inflight",
			Help: "Number of currently running placement transactions",
		}),
	}
}

// RecordPlacementStarted увеличивает счётчик запущенных размещений.
func (m *PlacementMetrics) RecordPlacementStarted() {
	m.placementStarted.Inc()
	m.inflightPlacements.Inc()
}

// RecordPlacementCompleted фиксирует успешное завершение размещения.
func (m *PlacementMetrics) RecordPlacementCompleted() {
	m.placementCompleted.Inc()
	m.inflightPlacements.Dec()
}

// RecordPlacementRejected фиксирует отказ с причиной из таксономии ошибок.
func (m *PlacementMetrics) RecordPlacementRejected(reason string) {
	m.placementRejected.WithLabelValues(reason).Inc()
	m.inflightPlacements.Dec()
}

// RecordCompensation фиксирует исход компенсирующего восстановления остатка.
func (m *PlacementMetrics) RecordCompensation(result string) {
	m.compensations.WithLabelValues(result).Inc()
}

// RecordPlacementDuration записывает длительность транзакции.
func (m *PlacementMetrics) RecordPlacementDuration(d time.Duration) {
	m.placementDuration.Observe(d.Seconds())
}

// RecordOutboxEvent фиксирует постановку события в outbox.
func (m *PlacementMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}
