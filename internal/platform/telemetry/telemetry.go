// Package telemetry provides lightweight observability for the referral
// service: labelled counters, gauges, an HTTP request-duration histogram,
// and a Prometheus text exposition endpoint, using only standard library
// constructs.
package telemetry

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Config holds configuration for the telemetry provider.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "referral-server"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.0.0"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// ---------------------------------------------------------------------------
// Histogram
// ---------------------------------------------------------------------------

// defaultDurationBuckets are histogram bucket boundaries (in seconds) for
// HTTP request duration.
var defaultDurationBuckets = []float64{
	0.010, 0.025, 0.050, 0.100, 0.250, 0.500, 1.0, 2.5, 5.0, 10.0,
}

type histogram struct {
	boundaries   []float64
	bucketCounts []int64 // one per boundary, non-cumulative
	count        int64
	sum          uint64     // stored as math.Float64bits for atomic add
	mu           sync.Mutex // protects bucketCounts
}

func newHistogram(boundaries []float64) *histogram {
	return &histogram{
		boundaries:   boundaries,
		bucketCounts: make([]int64, len(boundaries)),
	}
}

// Observe records a single value.
func (h *histogram) Observe(v float64) {
	atomic.AddInt64(&h.count, 1)
	atomicAddFloat64(&h.sum, v)

	h.mu.Lock()
	for i, b := range h.boundaries {
		if v <= b {
			h.bucketCounts[i]++
			h.mu.Unlock()
			return
		}
	}
	// Value exceeds all boundaries; counted in +Inf at export.
	h.mu.Unlock()
}

func (h *histogram) Count() int64 {
	return atomic.LoadInt64(&h.count)
}

func (h *histogram) Sum() float64 {
	return math.Float64frombits(atomic.LoadUint64(&h.sum))
}

func (h *histogram) cumulativeBuckets() []int64 {
	h.mu.Lock()
	raw := make([]int64, len(h.bucketCounts))
	copy(raw, h.bucketCounts)
	h.mu.Unlock()

	cum := make([]int64, len(raw))
	var running int64
	for i, c := range raw {
		running += c
		cum[i] = running
	}
	return cum
}

// atomicAddFloat64 performs an atomic add on a uint64 that stores a float64
// using CAS.
func atomicAddFloat64(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		newVal := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(addr, old, math.Float64bits(newVal)) {
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Counter / gauge stores
// ---------------------------------------------------------------------------

type counterStore struct {
	mu    sync.RWMutex
	items map[string]*int64
}

func newCounterStore() *counterStore {
	return &counterStore{items: make(map[string]*int64)}
}

func (s *counterStore) inc(key string) {
	s.mu.RLock()
	p, ok := s.items[key]
	s.mu.RUnlock()
	if ok {
		atomic.AddInt64(p, 1)
		return
	}
	s.mu.Lock()
	p, ok = s.items[key]
	if !ok {
		v := int64(1)
		s.items[key] = &v
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	atomic.AddInt64(p, 1)
}

func (s *counterStore) get(key string) int64 {
	s.mu.RLock()
	p, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	return atomic.LoadInt64(p)
}

func (s *counterStore) snapshot() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]int64, len(s.items))
	for k, p := range s.items {
		cp[k] = atomic.LoadInt64(p)
	}
	return cp
}

type gaugeStore struct {
	mu    sync.RWMutex
	items map[string]*int64
}

func newGaugeStore() *gaugeStore {
	return &gaugeStore{items: make(map[string]*int64)}
}

func (s *gaugeStore) add(name string, delta int64) {
	s.mu.RLock()
	p, ok := s.items[name]
	s.mu.RUnlock()
	if ok {
		atomic.AddInt64(p, delta)
		return
	}
	s.mu.Lock()
	p, ok = s.items[name]
	if !ok {
		v := delta
		s.items[name] = &v
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	atomic.AddInt64(p, delta)
}

func (s *gaugeStore) get(name string) int64 {
	s.mu.RLock()
	p, ok := s.items[name]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	return atomic.LoadInt64(p)
}

// ---------------------------------------------------------------------------
// Provider
// ---------------------------------------------------------------------------

// Provider manages all observability state for the service.
type Provider struct {
	cfg Config

	durations *histogram
	counters  *counterStore
	gauges    *gaugeStore
}

// NewProvider creates and initialises the telemetry provider.
func NewProvider(cfg Config) *Provider {
	cfg.applyDefaults()
	return &Provider{
		cfg:       cfg,
		durations: newHistogram(defaultDurationBuckets),
		counters:  newCounterStore(),
		gauges:    newGaugeStore(),
	}
}

// Resource returns the service resource attributes.
func (p *Provider) Resource() map[string]string {
	return map[string]string{
		"service.name":           p.cfg.ServiceName,
		"service.version":        p.cfg.ServiceVersion,
		"deployment.environment": p.cfg.Environment,
	}
}

// ReferralOperation increments the referral.operation.count metric for an
// operation (normalize, decide, route, create, ...).
func (p *Provider) ReferralOperation(operation string) {
	p.counters.inc("referral.operation.count|" + operation)
}

// AlertDispatch increments the alert.dispatch.count metric for a channel and
// outcome ("delivered" or "failed").
func (p *Provider) AlertDispatch(channel, outcome string) {
	p.counters.inc("alert.dispatch.count|" + channel + "|" + outcome)
}

// GetReferralOperationCount returns the current value of the referral
// operation counter for the given operation.
func (p *Provider) GetReferralOperationCount(operation string) int64 {
	return p.counters.get("referral.operation.count|" + operation)
}

// GetAlertDispatchCount returns the current value of the alert dispatch
// counter for the given channel and outcome.
func (p *Provider) GetAlertDispatchCount(channel, outcome string) int64 {
	return p.counters.get("alert.dispatch.count|" + channel + "|" + outcome)
}

// ActiveRequests returns the current value of the active-requests gauge.
func (p *Provider) ActiveRequests() int64 {
	return p.gauges.get("http.server.active_requests")
}

// Middleware returns an Echo middleware that records HTTP server metrics.
func (p *Provider) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p.gauges.add("http.server.active_requests", 1)
			start := time.Now()

			err := next(c)

			p.gauges.add("http.server.active_requests", -1)
			p.durations.Observe(time.Since(start).Seconds())

			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			p.counters.inc(fmt.Sprintf("http.server.request.count|%s|%s|%d",
				c.Request().Method, route, c.Response().Status))

			return err
		}
	}
}

// PrometheusHandler returns an Echo handler that serves metrics in Prometheus
// text exposition format.
func (p *Provider) PrometheusHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder

		b.WriteString("# HELP http_server_request_duration_seconds Duration of HTTP requests in seconds.\n")
		b.WriteString("# TYPE http_server_request_duration_seconds histogram\n")
		cum := p.durations.cumulativeBuckets()
		for i, boundary := range p.durations.boundaries {
			fmt.Fprintf(&b, "http_server_request_duration_seconds_bucket{le=\"%g\"} %d\n", boundary, cum[i])
		}
		fmt.Fprintf(&b, "http_server_request_duration_seconds_bucket{le=\"+Inf\"} %d\n", p.durations.Count())
		fmt.Fprintf(&b, "http_server_request_duration_seconds_sum %g\n", p.durations.Sum())
		fmt.Fprintf(&b, "http_server_request_duration_seconds_count %d\n", p.durations.Count())
		b.WriteByte('\n')

		b.WriteString("# HELP http_server_active_requests Number of active HTTP requests.\n")
		b.WriteString("# TYPE http_server_active_requests gauge\n")
		fmt.Fprintf(&b, "http_server_active_requests %d\n", p.gauges.get("http.server.active_requests"))
		b.WriteByte('\n')

		counters := p.counters.snapshot()

		b.WriteString("# HELP http_server_request_count Total HTTP requests by method, route and status.\n")
		b.WriteString("# TYPE http_server_request_count counter\n")
		for key, val := range counters {
			parts := strings.SplitN(key, "|", 4)
			if len(parts) == 4 && parts[0] == "http.server.request.count" {
				fmt.Fprintf(&b, "http_server_request_count{method=%q,route=%q,status=%q} %d\n",
					parts[1], parts[2], parts[3], val)
			}
		}
		b.WriteByte('\n')

		b.WriteString("# HELP referral_operation_count Total referral operations by operation.\n")
		b.WriteString("# TYPE referral_operation_count counter\n")
		for key, val := range counters {
			parts := strings.SplitN(key, "|", 2)
			if len(parts) == 2 && parts[0] == "referral.operation.count" {
				fmt.Fprintf(&b, "referral_operation_count{operation=%q} %d\n", parts[1], val)
			}
		}
		b.WriteByte('\n')

		b.WriteString("# HELP alert_dispatch_count Total alert channel dispatches by channel and outcome.\n")
		b.WriteString("# TYPE alert_dispatch_count counter\n")
		for key, val := range counters {
			parts := strings.SplitN(key, "|", 3)
			if len(parts) == 3 && parts[0] == "alert.dispatch.count" {
				fmt.Fprintf(&b, "alert_dispatch_count{channel=%q,outcome=%q} %d\n", parts[1], parts[2], val)
			}
		}

		return c.String(http.StatusOK, b.String())
	}
}
