package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromSink exposes dispatch activity as Prometheus metrics.
type PromSink struct {
	ingested  *prometheus.CounterVec
	snapshots *prometheus.CounterVec
	active    prometheus.Gauge
	polls     *prometheus.CounterVec
	added     *prometheus.CounterVec
}

// NewPromSink registers metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ingested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_ingested_total",
		Help: "Dispatch records created by the ingestion endpoint",
	}, []string{"action"})
	snapshots := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_snapshots_total",
		Help: "Snapshot responses served, by result",
	}, []string{"result"})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_active_records",
		Help: "Active records returned by the last snapshot",
	})
	polls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_polls_total",
		Help: "Dashboard poll round-trips, by outcome",
	}, []string{"dashboard", "outcome"})
	added := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cards_added_total",
		Help: "Cards created on a dashboard from polled snapshots",
	}, []string{"dashboard"})

	var err error
	if ingested, err = registerCounterVec(reg, ingested); err != nil {
		return nil, err
	}
	if snapshots, err = registerCounterVec(reg, snapshots); err != nil {
		return nil, err
	}
	if polls, err = registerCounterVec(reg, polls); err != nil {
		return nil, err
	}
	if added, err = registerCounterVec(reg, added); err != nil {
		return nil, err
	}
	if err := reg.Register(active); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			active = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{ingested: ingested, snapshots: snapshots, active: active, polls: polls, added: added}, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return c, nil
}

func (s *PromSink) RecordIngested(action string) error {
	s.ingested.WithLabelValues(action).Inc()
	return nil
}

func (s *PromSink) RecordSnapshot(result string, active int) error {
	s.snapshots.WithLabelValues(result).Inc()
	s.active.Set(float64(active))
	return nil
}

func (s *PromSink) RecordPoll(dashboard, outcome string, added int) error {
	s.polls.WithLabelValues(dashboard, outcome).Inc()
	if added > 0 {
		s.added.WithLabelValues(dashboard).Add(float64(added))
	}
	return nil
}

// Handler serves the metrics registered on g.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
