package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the activity module.
// A nil *Metrics records nothing.
type Metrics struct {
	ActivitiesCreated   prometheus.Counter
	Signups             *prometheus.CounterVec
	ParticipantsRemoved *prometheus.CounterVec

	// Matching runs by outcome: "matched" or an error code
	MatchingRuns        *prometheus.CounterVec
	MatchingLatency     prometheus.Histogram
	MatchedParticipants prometheus.Histogram

	Reveals     prometheus.Counter
	RevealViews *prometheus.CounterVec
}

// New registers the activity metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActivitiesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "secretsanta_activities_created_total",
			Help: "Total activities created",
		}),

		Signups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "secretsanta_signups_total",
			Help: "Signup attempts by outcome",
		}, []string{"outcome"}),

		ParticipantsRemoved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "secretsanta_participants_removed_total",
			Help: "Participants removed, by who removed them",
		}, []string{"by"}), // by: "admin", "self"

		MatchingRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "secretsanta_matching_runs_total",
			Help: "Matching runs by outcome",
		}, []string{"outcome"}),

		MatchingLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "secretsanta_matching_duration_seconds",
			Help:    "Duration of matching runs including the commit",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		MatchedParticipants: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "secretsanta_matched_participants",
			Help:    "Participants per successful matching",
			Buckets: prometheus.ExponentialBuckets(2, 2, 9),
		}),

		Reveals: factory.NewCounter(prometheus.CounterOpts{
			Name: "secretsanta_reveals_total",
			Help: "Activities moved to REVEALED",
		}),

		RevealViews: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "secretsanta_reveal_views_total",
			Help: "Reveal views served by activity status",
		}, []string{"status"}),
	}
}

func (m *Metrics) IncActivityCreated() {
	if m != nil {
		m.ActivitiesCreated.Inc()
	}
}

func (m *Metrics) IncSignup(outcome string) {
	if m != nil {
		m.Signups.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncParticipantRemoved(by string) {
	if m != nil {
		m.ParticipantsRemoved.WithLabelValues(by).Inc()
	}
}

// ObserveMatching records one matching run. participants is ignored unless
// the run succeeded.
func (m *Metrics) ObserveMatching(outcome string, participants int, d time.Duration) {
	if m == nil {
		return
	}
	m.MatchingRuns.WithLabelValues(outcome).Inc()
	m.MatchingLatency.Observe(d.Seconds())
	if outcome == OutcomeMatched {
		m.MatchedParticipants.Observe(float64(participants))
	}
}

func (m *Metrics) IncReveal() {
	if m != nil {
		m.Reveals.Inc()
	}
}

func (m *Metrics) IncRevealView(status string) {
	if m != nil {
		m.RevealViews.WithLabelValues(status).Inc()
	}
}

const (
	OutcomeMatched = "matched"
	OutcomeJoined  = "joined"
)
