package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"signalering/internal/signalering/models"
)

type Metrics struct {
	MailsSent           *prometheus.CounterVec
	MailsFailed         *prometheus.CounterVec
	CandidatesSkipped   *prometheus.CounterVec
	LedgerCorrections   *prometheus.CounterVec
	NotificationsPurged prometheus.Counter
	RunDuration         *prometheus.HistogramVec
}

// New registers the signalering metrics with reg. A nil reg creates
// unregistered collectors, which tests use to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MailsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signalering_mails_sent_total",
			Help: "Total number of notification mails handed to the relay",
		}, []string{"kind", "detail"}),
		MailsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signalering_mails_failed_total",
			Help: "Total number of notification mails the relay rejected",
		}, []string{"kind"}),
		CandidatesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signalering_candidates_skipped_total",
			Help: "Total number of deadline candidates that did not produce a mail",
		}, []string{"kind", "reason"}),
		LedgerCorrections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signalering_ledger_corrections_total",
			Help: "Total number of sent records removed because the deadline moved",
		}, []string{"kind"}),
		NotificationsPurged: factory.NewCounter(prometheus.CounterOpts{
			Name: "signalering_notifications_purged_total",
			Help: "Total number of live notifications removed by retention",
		}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signalering_run_duration_seconds",
			Help:    "Duration of dispatch and retention runs",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"run"}),
	}
}

func (m *Metrics) IncrementMailsSent(kind models.Kind, detail models.Detail) {
	m.MailsSent.WithLabelValues(string(kind), string(detail)).Inc()
}

func (m *Metrics) IncrementMailsFailed(kind models.Kind) {
	m.MailsFailed.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) IncrementSkipped(kind models.Kind, reason models.SkipReason) {
	m.CandidatesSkipped.WithLabelValues(string(kind), string(reason)).Inc()
}

func (m *Metrics) AddCorrections(kind models.Kind, count int) {
	m.LedgerCorrections.WithLabelValues(string(kind)).Add(float64(count))
}

func (m *Metrics) AddPurged(count int) {
	m.NotificationsPurged.Add(float64(count))
}

func (m *Metrics) ObserveRun(run string, started time.Time) {
	m.RunDuration.WithLabelValues(run).Observe(time.Since(started).Seconds())
}
