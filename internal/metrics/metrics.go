package metrics

import (
	"net/http"

	"github.com/iwtcode/robotDataAgent/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "robot_agent"

// Metrics holds the agent's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Ticks            *prometheus.CounterVec
	SkippedTicks     prometheus.Counter
	TickDuration     prometheus.Histogram
	RecordsReceived  prometheus.Counter
	RowsInserted     prometheus.Counter
	RowsFailed       prometheus.Counter
	RecordsPublished prometheus.Counter
	SchemaReady      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ticks_total",
				Help:      "Total number of completed poll ticks by result",
			},
			[]string{"result"},
		),
		SkippedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_skipped_total",
			Help:      "Ticks skipped because the previous tick was still running",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Duration of poll ticks in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		RecordsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_received_total",
			Help:      "Records returned by the robot data API",
		}),
		RowsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_inserted_total",
			Help:      "Rows inserted into robot_data",
		}),
		RowsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_failed_total",
			Help:      "Records whose insert failed",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Stored rows published to Kafka",
		}),
		SchemaReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schema_ready",
			Help:      "Whether robot_data was ensured at startup (1 = ready, 0 = not ready)",
		}),
	}

	m.registry.MustRegister(
		m.Ticks,
		m.SkippedTicks,
		m.TickDuration,
		m.RecordsReceived,
		m.RowsInserted,
		m.RowsFailed,
		m.RecordsPublished,
		m.SchemaReady,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) OnTick(report models.TickReport) {
	m.Ticks.WithLabelValues(report.Result()).Inc()
	m.TickDuration.Observe(report.Duration.Seconds())
	m.RecordsReceived.Add(float64(report.Received))
	m.RowsInserted.Add(float64(report.Inserted))
	m.RowsFailed.Add(float64(report.Failed))
	m.RecordsPublished.Add(float64(report.Published))
}

func (m *Metrics) OnSkip(string) {
	m.SkippedTicks.Inc()
}

func (m *Metrics) SetSchemaReady(ready bool) {
	if ready {
		m.SchemaReady.Set(1)
	} else {
		m.SchemaReady.Set(0)
	}
}

// Handler returns the Prometheus metrics handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
