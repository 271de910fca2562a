package metrics

import (
	"errors"
	"kvk-dashboard/internal/domain"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	UploadKindPhase      = "phase"
	UploadKindTotalDeads = "total_deads"
)

const (
	OutcomeOK            = "ok"
	OutcomeInvalidFormat = "invalid_format"
	OutcomeValidation    = "validation"
	OutcomeNotFound      = "not_found"
	OutcomeStorage       = "storage"
	OutcomeUnknown       = "unknown"
)

// Metrics holds the dashboard's prometheus instruments. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	uploads         *prometheus.CounterVec
	uploadRows      *prometheus.CounterVec
	kpiDuration     *prometheus.HistogramVec
	kpiRanked       *prometheus.GaugeVec
	adjustments     *prometheus.CounterVec
	statusUpdates   prometheus.Counter
	excludedPlayers *prometheus.GaugeVec
}

func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kvk_uploads_total",
			Help: "Spreadsheet uploads by kind, phase and outcome.",
		}, []string{"kind", "phase", "outcome"}),
		uploadRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kvk_upload_rows_total",
			Help: "Rows accepted from spreadsheet uploads.",
		}, []string{"kind", "phase"}),
		kpiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kvk_kpi_compute_duration_seconds",
			Help:    "Time to load a snapshot and rank one KPI scope.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"scope"}),
		kpiRanked: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kvk_kpi_ranked_players",
			Help: "Eligible players in the last computation of a scope.",
		}, []string{"scope"}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kvk_adjustments_total",
			Help: "KPI reduction ledger changes by action.",
		}, []string{"action"}),
		statusUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvk_status_updates_total",
			Help: "Status registry writes made by administrators.",
		}),
		excludedPlayers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kvk_excluded_players",
			Help: "Players currently carrying a status flag.",
		}, []string{"flag"}),
	}

	registerer.MustRegister(
		m.uploads,
		m.uploadRows,
		m.kpiDuration,
		m.kpiRanked,
		m.adjustments,
		m.statusUpdates,
		m.excludedPlayers,
	)
	return m
}

// NewRegistry returns a registry preloaded with the process and Go collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (m *Metrics) ObserveUpload(kind string, phase domain.Phase, rows int, err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(kind, string(phase), Outcome(err)).Inc()
	if err == nil {
		m.uploadRows.WithLabelValues(kind, string(phase)).Add(float64(rows))
	}
}

func (m *Metrics) ObserveKPI(scope string, took time.Duration, ranked int) {
	if m == nil {
		return
	}
	m.kpiDuration.WithLabelValues(scope).Observe(took.Seconds())
	m.kpiRanked.WithLabelValues(scope).Set(float64(ranked))
}

func (m *Metrics) AdjustmentChanged(action string) {
	if m == nil {
		return
	}
	m.adjustments.WithLabelValues(action).Inc()
}

func (m *Metrics) StatusUpdated() {
	if m == nil {
		return
	}
	m.statusUpdates.Inc()
}

func (m *Metrics) SetExcluded(flag domain.StatusFlag, n int) {
	if m == nil {
		return
	}
	m.excludedPlayers.WithLabelValues(string(flag)).Set(float64(n))
}

// Outcome maps an operation error onto a bounded label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrInvalidFormat):
		return OutcomeInvalidFormat
	case errors.Is(err, domain.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrStorage):
		return OutcomeStorage
	default:
		return OutcomeUnknown
	}
}

// UploadsCounter exposes one series of the upload counter.
func (m *Metrics) UploadsCounter(kind string, phase domain.Phase, outcome string) prometheus.Counter {
	return m.uploads.WithLabelValues(kind, string(phase), outcome)
}
