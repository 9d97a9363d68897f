package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/begonlabs/poligonos/internal/progress"
)

// PrometheusSink exports verification progress via Prometheus. It owns all
// collectors for runs and per-business completions.
type PrometheusSink struct {
	runsStarted    prometheus.Counter
	runsCompleted  *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	businessesDone *prometheus.CounterVec
	emailsVerified prometheus.Counter
	phonesVerified prometheus.Counter
	emailsAdopted  prometheus.Counter
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poligonos_runs_started_total",
			Help: "Verification runs started (one per zone file).",
		}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poligonos_runs_completed_total",
			Help: "Verification runs completed partitioned by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "poligonos_run_duration_seconds",
			Help:    "Wall time per completed verification run.",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 1800, 3600},
		}, []string{"result"}),
		businessesDone: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poligonos_businesses_processed_total",
			Help: "Businesses processed partitioned by zone.",
		}, []string{"zona"}),
		emailsVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poligonos_emails_verified_total",
			Help: "Businesses whose email was verified against their website.",
		}),
		phonesVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poligonos_phones_verified_total",
			Help: "Businesses whose phone was verified against their website.",
		}),
		emailsAdopted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poligonos_emails_adopted_total",
			Help: "Businesses that gained an email they did not have before.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runDuration,
		s.businessesDone,
		s.emailsVerified,
		s.phonesVerified,
		s.emailsAdopted,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors from the batch. Safe for concurrent use.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
	case progress.StageRunDone:
		s.runsCompleted.WithLabelValues("success").Inc()
		s.observeDuration(evt, "success")
	case progress.StageRunError:
		s.runsCompleted.WithLabelValues("error").Inc()
		s.observeDuration(evt, "error")
	case progress.StageBusinessDone:
		s.businessesDone.WithLabelValues(evt.Zone).Inc()
		if evt.EmailVerified {
			s.emailsVerified.Inc()
		}
		if evt.PhoneVerified {
			s.phonesVerified.Inc()
		}
		if evt.EmailAdopted {
			s.emailsAdopted.Inc()
		}
	}
}

func (s *PrometheusSink) observeDuration(evt progress.Event, label string) {
	if evt.Dur > 0 {
		s.runDuration.WithLabelValues(label).Observe(evt.Dur.Seconds())
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
