package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/modesim/core/metrics"
)

// PromSink exposes the latest iteration statistics as Prometheus gauges.
type PromSink struct {
	iteration  prometheus.Gauge
	plans      prometheus.Gauge
	modeShare  *prometheus.GaugeVec
	score      *prometheus.GaugeVec
	strategies *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewPromSink registers iteration metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.iteration, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "modesim_iteration",
		Help: "Last completed iteration",
	})); err != nil {
		return nil, err
	}
	if s.plans, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "modesim_plans",
		Help: "Number of plans held by the population",
	})); err != nil {
		return nil, err
	}
	if s.modeShare, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "modesim_mode_share",
		Help: "Share of executed legs per mode",
	}, []string{"mode"})); err != nil {
		return nil, err
	}
	if s.score, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "modesim_score",
		Help: "Average plan score by statistic",
	}, []string{"stat"})); err != nil {
		return nil, err
	}
	if s.strategies, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "modesim_strategy_applied_total",
		Help: "Number of times a replanning strategy was applied",
	}, []string{"strategy"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "modesim_iteration_duration_seconds",
		Help:    "Wall time of one iteration",
		Buckets: prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordIteration updates every gauge with the iteration's statistics.
func (s *PromSink) RecordIteration(st coremetrics.IterationStats) error {
	s.iteration.Set(float64(st.Iteration))
	s.plans.Set(float64(st.PlanCount))
	for mode, share := range st.ModeShares {
		s.modeShare.WithLabelValues(mode).Set(share)
	}
	s.score.WithLabelValues("executed").Set(st.AvgExecuted)
	s.score.WithLabelValues("best").Set(st.AvgBest)
	s.score.WithLabelValues("worst").Set(st.AvgWorst)
	s.score.WithLabelValues("average").Set(st.AvgAverage)
	for name, n := range st.StrategyCounts {
		s.strategies.WithLabelValues(name).Add(float64(n))
	}
	if st.Duration > 0 {
		s.duration.Observe(st.Duration.Seconds())
	}
	return nil
}
