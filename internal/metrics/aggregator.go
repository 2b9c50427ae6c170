package metrics

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Aggregator counts served requests per (route, method) and renders them,
// together with an uptime gauge and a constant up gauge, in the Prometheus
// text exposition format.
//
// An Aggregator owns a private registry, so several of them can live in one
// process (tests, embedded servers) without colliding. It is created once at
// startup and handed to the HTTP layer; there is no in-band reset.
type Aggregator struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	gather   prometheus.Gatherers
	start    time.Time
	now      func() time.Time
}

// AggregatorOption customizes an Aggregator.
type AggregatorOption func(*Aggregator)

// WithClock overrides the time source used for the uptime gauge.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) { a.now = now }
}

// WithGatherers appends extra gatherers (typically prometheus.DefaultGatherer)
// whose families are rendered after the aggregator's own.
func WithGatherers(g ...prometheus.Gatherer) AggregatorOption {
	return func(a *Aggregator) { a.gather = append(a.gather, g...) }
}

// NewAggregator creates an aggregator whose uptime gauge is named
// <service>_uptime_seconds.
func NewAggregator(service string, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		registry: prometheus.NewRegistry(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.start = a.now()

	a.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "request_count_total",
			Help: "Total number of requests",
		},
		[]string{"endpoint", "method"},
	)
	uptime := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix(service) + "_uptime_seconds",
			Help: "Uptime in seconds",
		},
		func() float64 { return a.now().Sub(a.start).Seconds() },
	)
	up := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "up",
		Help: "Service is up",
	})
	up.Set(1)

	a.registry.MustRegister(a.requests, uptime, up)
	a.gather = append(prometheus.Gatherers{a.registry}, a.gather...)
	return a
}

// RecordHit increments the counter for (route, method), creating it at 1.
// Safe for concurrent use.
func (a *Aggregator) RecordHit(route, method string) {
	a.requests.WithLabelValues(route, strings.ToUpper(method)).Inc()
}

// Count returns the current counter value for (route, method); zero if never hit.
func (a *Aggregator) Count(route, method string) uint64 {
	method = strings.ToUpper(method)
	ch := make(chan prometheus.Metric, 16)
	go func() {
		a.requests.Collect(ch)
		close(ch)
	}()
	var n uint64
	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			continue
		}
		if labelsMatch(pb.GetLabel(), route, method) {
			n = uint64(pb.GetCounter().GetValue())
		}
	}
	return n
}

func labelsMatch(pairs []*dto.LabelPair, route, method string) bool {
	var okRoute, okMethod bool
	for _, lp := range pairs {
		switch lp.GetName() {
		case "endpoint":
			okRoute = lp.GetValue() == route
		case "method":
			okMethod = lp.GetValue() == method
		}
	}
	return okRoute && okMethod
}

// Uptime returns the time elapsed since the aggregator was created.
func (a *Aggregator) Uptime() time.Duration {
	return a.now().Sub(a.start)
}

// WriteTo renders every gathered family to w.
func (a *Aggregator) WriteTo(w io.Writer) (int64, error) {
	families, err := a.gather.Gather()
	if err != nil {
		return 0, fmt.Errorf("gather metrics: %w", err)
	}
	var total int64
	for _, mf := range families {
		n, err := expfmt.MetricFamilyToText(w, mf)
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return total, nil
}

// Render returns the text exposition as a string.
func (a *Aggregator) Render() (string, error) {
	var buf bytes.Buffer
	if _, err := a.WriteTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// metricPrefix maps a service name onto the metric name alphabet.
func metricPrefix(service string) string {
	service = strings.ToLower(strings.TrimSpace(service))
	if service == "" {
		return "service"
	}
	var b strings.Builder
	for i, r := range service {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
