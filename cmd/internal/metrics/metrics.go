// Package metrics holds the Prometheus collectors for vkyc.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "vkyc"

	counterAuthOutcomes        = "auth_outcomes_total"
	counterSessionsCreated     = "verification_sessions_created_total"
	counterSessionsSwept       = "verification_sessions_swept_total"
	counterWorkerRuns          = "worker_runs_total"
	histogramWorkerRunSeconds  = "worker_run_seconds"
	counterDescAuthOutcomes    = "Authentication decisions, by flow and outcome"
	counterDescSessionsCreated = "Verification sessions created, by client"
	counterDescSessionsSwept   = "Pending verification sessions moved to incomplete by the sweep"
	counterDescWorkerRuns      = "Background worker runs, by worker and result"
	histogramDescWorkerRunSecs = "Background worker run duration, by worker"
	labelFlow                  = "flow"
	labelOutcome               = "outcome"
	labelClient                = "client"
	labelWorker                = "worker"
	labelResult                = "result"
	resultOK                   = "ok"
	resultError                = "error"
)

// Recorder is the metrics surface used by the HTTP and worker layers.
type Recorder interface {
	AuthOutcome(flow, outcome string)
	SessionCreated(client string)
	SessionsSwept(n int)
	WorkerRun(name string, err error, d time.Duration)
}

// Manager owns the collectors and registers them on a Registerer.
type Manager struct {
	authOutcomes    *prometheus.CounterVec
	sessionsCreated *prometheus.CounterVec
	sessionsSwept   prometheus.Counter
	workerRuns      *prometheus.CounterVec
	workerDuration  *prometheus.HistogramVec
}

var _ Recorder = (*Manager)(nil)

// NewManager creates the collectors and registers them on reg.
func NewManager(reg prometheus.Registerer) (*Manager, error) {
	m := &Manager{
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      counterAuthOutcomes,
			Help:      counterDescAuthOutcomes,
		}, []string{labelFlow, labelOutcome}),
		sessionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      counterSessionsCreated,
			Help:      counterDescSessionsCreated,
		}, []string{labelClient}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      counterSessionsSwept,
			Help:      counterDescSessionsSwept,
		}),
		workerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      counterWorkerRuns,
			Help:      counterDescWorkerRuns,
		}, []string{labelWorker, labelResult}),
		workerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      histogramWorkerRunSeconds,
			Help:      histogramDescWorkerRunSecs,
			Buckets:   prometheus.DefBuckets,
		}, []string{labelWorker}),
	}

	for _, c := range []prometheus.Collector{m.authOutcomes, m.sessionsCreated, m.sessionsSwept, m.workerRuns, m.workerDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Manager) AuthOutcome(flow, outcome string) {
	m.authOutcomes.WithLabelValues(flow, outcome).Inc()
}

func (m *Manager) SessionCreated(client string) {
	m.sessionsCreated.WithLabelValues(client).Inc()
}

func (m *Manager) SessionsSwept(n int) {
	if n > 0 {
		m.sessionsSwept.Add(float64(n))
	}
}

func (m *Manager) WorkerRun(name string, err error, d time.Duration) {
	result := resultOK
	if err != nil {
		result = resultError
	}
	m.workerRuns.WithLabelValues(name, result).Inc()
	m.workerDuration.WithLabelValues(name).Observe(d.Seconds())
}

// Nop discards everything.
type Nop struct{}

func (Nop) AuthOutcome(string, string)             {}
func (Nop) SessionCreated(string)                  {}
func (Nop) SessionsSwept(int)                      {}
func (Nop) WorkerRun(string, error, time.Duration) {}
