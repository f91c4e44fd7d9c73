// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics provides Prometheus instrumentation for the identity stub
// server and the postdeck session manager.
//
// Both sides depend on the small interfaces below, never on the concrete
// [Collector], so tests can pass [Nop] or a throwaway registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPRecorder is used by the server middleware chain.
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// AuthRecorder is used by the stub server's auth service.
type AuthRecorder interface {
	RecordAuthAttempt(operation string, success bool)
}

// SessionRecorder is used by the client session manager.
type SessionRecorder interface {
	RecordTransition(from, to string)
	RecordIdentityCall(operation, code string, duration time.Duration)
}

// Collector implements every recorder on top of a Prometheus registry.
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	authAttempts    *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	identityCalls   *prometheus.CounterVec
	identityLatency *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its series with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "identityd_http_requests_total",
			Help: "HTTP requests served, by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "identityd_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "identityd_auth_attempts_total",
			Help: "Login and registration attempts, by outcome.",
		}, []string{"operation", "outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postdeck_session_transitions_total",
			Help: "Session state machine transitions.",
		}, []string{"from", "to"}),
		identityCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postdeck_identity_calls_total",
			Help: "Calls to the identity API, by operation and result code.",
		}, []string{"operation", "code"}),
		identityLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "postdeck_identity_call_duration_seconds",
			Help:    "Identity API call latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.authAttempts,
		c.transitions,
		c.identityCalls,
		c.identityLatency,
	)

	return c
}

// RecordHTTPRequest records one served request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuthAttempt records a login or registration outcome.
func (c *Collector) RecordAuthAttempt(operation string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.authAttempts.WithLabelValues(operation, outcome).Inc()
}

// RecordTransition records a session state change.
func (c *Collector) RecordTransition(from, to string) {
	c.transitions.WithLabelValues(from, to).Inc()
}

// RecordIdentityCall records one outbound identity call. code is "OK" on success.
func (c *Collector) RecordIdentityCall(operation, code string, duration time.Duration) {
	c.identityCalls.WithLabelValues(operation, code).Inc()
	c.identityLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// Handler returns the HTTP handler for Prometheus scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordAuthAttempt(string, bool) {}
func (Nop) RecordTransition(string, string) {}
func (Nop) RecordIdentityCall(string, string, time.Duration) {}
