package etl

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-region ETL outcomes
type Metrics struct {
	regionRuns      *prometheus.CounterVec
	regionDuration  *prometheus.HistogramVec
	instances       *prometheus.GaugeVec
	snapshotBytes   *prometheus.GaugeVec
	lastSuccessTime *prometheus.GaugeVec
}

// NewMetrics creates the ETL metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		regionRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ec2etl_region_runs_total",
				Help: "Regional ETL cycles by outcome",
			},
			[]string{"region", "status", "kind"}, // status: done, skipped, failed
		),
		regionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ec2etl_region_duration_seconds",
				Help:    "Time taken by one regional ETL cycle",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"region"},
		),
		instances: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ec2etl_snapshot_instances",
				Help: "Number of instances in the last written snapshot",
			},
			[]string{"region"},
		),
		snapshotBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ec2etl_snapshot_bytes",
				Help: "Size of the last written snapshot",
			},
			[]string{"region"},
		),
		lastSuccessTime: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ec2etl_region_last_success_timestamp_seconds",
				Help: "Unix time of the last successful regional ETL cycle",
			},
			[]string{"region"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.regionRuns, m.regionDuration, m.instances, m.snapshotBytes, m.lastSuccessTime)
	}
	return m
}
