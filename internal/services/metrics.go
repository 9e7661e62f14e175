package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Channel identifies how a report entered the system.
type Channel string

const (
	ChannelSingle   Channel = "single"
	ChannelBatch    Channel = "batch"
	ChannelExternal Channel = "external"
)

// Metrics holds the ingestion counters. A nil *Metrics records nothing.
type Metrics struct {
	records  *prometheus.CounterVec
	runs     *prometheus.CounterVec
	updates  *prometheus.CounterVec
	highRisk prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		records: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "abuse",
			Name:      "reports_ingested_total",
			Help:      "Reports processed by ingestion channel and outcome.",
		}, []string{"channel", "outcome"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "abuse",
			Name:      "ingestion_runs_total",
			Help:      "Batch and external ingestion runs by result.",
		}, []string{"channel", "result"}),
		updates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "abuse",
			Name:      "report_status_updates_total",
			Help:      "Status updates applied, by resulting status.",
		}, []string{"status"}),
		highRisk: f.NewCounter(prometheus.CounterOpts{
			Namespace: "abuse",
			Name:      "high_risk_reports_total",
			Help:      "Reports stamped with the high risk score.",
		}),
	}
}

func (m *Metrics) recordCreated(ch Channel, highRisk bool) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(string(ch), "created").Inc()
	if highRisk {
		m.highRisk.Inc()
	}
}

func (m *Metrics) recordRejected(ch Channel) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(string(ch), "rejected").Inc()
}

func (m *Metrics) recordRun(ch Channel, result string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(ch), result).Inc()
}

func (m *Metrics) recordUpdate(status string) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(status).Inc()
}
