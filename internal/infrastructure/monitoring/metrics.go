package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "customer_registry"

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type RecordMetrics struct {
	CreatedTotal   *prometheus.CounterVec
	UpdatedTotal   *prometheus.CounterVec
	DeletedTotal   *prometheus.CounterVec
	ConflictsTotal *prometheus.CounterVec
	Count          *prometheus.GaugeVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Histogram of database query latencies.",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Records = RecordMetrics{
		CreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_created_total",
				Help:      "Total number of records created, by kind.",
			},
			[]string{"kind"},
		),
		UpdatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_updated_total",
				Help:      "Total number of records updated, by kind.",
			},
			[]string{"kind"},
		),
		DeletedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_deleted_total",
				Help:      "Total number of records deleted, by kind.",
			},
			[]string{"kind"},
		),
		ConflictsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uniqueness_conflicts_total",
				Help:      "Total number of writes rejected because a unique field was already taken.",
			},
			[]string{"kind", "field"},
		),
		Count: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "records",
				Help:      "Number of stored records, by kind. Refreshed by the stats job.",
			},
			[]string{"kind"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordCreated(kind string) {
	Records.CreatedTotal.WithLabelValues(kind).Inc()
}

func RecordUpdated(kind string) {
	Records.UpdatedTotal.WithLabelValues(kind).Inc()
}

func RecordDeleted(kind string) {
	Records.DeletedTotal.WithLabelValues(kind).Inc()
}

func RecordConflict(kind, field string) {
	Records.ConflictsTotal.WithLabelValues(kind, field).Inc()
}

func SetRecordCount(kind string, count int64) {
	Records.Count.WithLabelValues(kind).Set(float64(count))
}
