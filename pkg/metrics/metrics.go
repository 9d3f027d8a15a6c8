package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tourney/sts/pkg/search"
	"github.com/tourney/sts/pkg/solver"
)

const (
	BackendLabel = "backend"
	StatusLabel  = "status"
	ModeLabel    = "mode"
	StateLabel   = "state"

	// Crashed and Failed are status label values for probes that ended
	// without a verdict.
	Crashed = "crashed"
	Failed  = "failed"
)

// To add new metrics:
// 1. Declare them below.
// 2. Add them to collectors so Register picks them up.
var (
	probeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sts_probe_total",
			Help: "Monotonic count of backend calls by verdict",
		},
		[]string{BackendLabel, StatusLabel},
	)

	probeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sts_probe_duration_seconds",
			Help:    "The duration of a single backend call",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{BackendLabel},
	)

	searchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sts_search_total",
			Help: "Monotonic count of finished runs by final state",
		},
		[]string{BackendLabel, ModeLabel, StateLabel},
	)

	searchBound = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sts_search_bound",
			Help: "Best imbalance bound of the last finished run per instance, -1 if none",
		},
		[]string{BackendLabel, ModeLabel, "teams"},
	)

	collectors = []prometheus.Collector{probeTotal, probeDuration, searchTotal, searchBound}
)

// Register adds the sts collectors to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister adds the sts collectors to the default registry.
func MustRegister() {
	prometheus.MustRegister(collectors...)
}

// ProbeStatus returns the status label for a backend call.
func ProbeStatus(res solver.Result, err error) string {
	if err == nil || err == solver.Incomplete {
		return res.Status.String()
	}
	if _, ok := err.(*solver.CrashError); ok {
		return Crashed
	}
	return Failed
}

// EmitProbe records one backend call.
func EmitProbe(backend, status string, d time.Duration) {
	probeTotal.WithLabelValues(backend, status).Inc()
	probeDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// EmitOutcome records a finished run.
func EmitOutcome(backend string, o *search.Outcome) {
	if o == nil {
		return
	}
	searchTotal.WithLabelValues(backend, string(o.Mode), o.State.String()).Inc()
	searchBound.WithLabelValues(backend, string(o.Mode), strconv.Itoa(o.Instance.Teams)).Set(float64(o.Bound))
}
