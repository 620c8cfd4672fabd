// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"strconv"

	"github.com/gogama/actionx"
	"github.com/gogama/actionx/request"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelOperation = "operation"
	labelOutcome   = "outcome"
	labelCode      = "code"

	outcomeSuccess = "success"
	outcomeError   = "error"
)

// A Collector holds the metrics fed by a client's events. It
// implements prometheus.Collector.
type Collector struct {
	attempts         *prometheus.CounterVec
	sends            *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	reauthorizations *prometheus.CounterVec
	duration         *prometheus.HistogramVec
}

// New returns a Collector whose metric names start with namespace,
// which may be empty.
func New(namespace string) *Collector {
	return &Collector{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actionx",
			Name:      "attempts_total",
			Help:      "Total number of operation attempts by outcome",
		}, []string{labelOperation, labelOutcome}),
		sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actionx",
			Name:      "sends_total",
			Help:      "Total number of HTTP requests sent by response status code, or \"error\"",
		}, []string{labelOperation, labelCode}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actionx",
			Name:      "cache_hits_total",
			Help:      "Total number of attempts answered from the response cache",
		}, []string{labelOperation}),
		reauthorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actionx",
			Name:      "reauthorizations_total",
			Help:      "Total number of attempts repeated with fresh credentials",
		}, []string{labelOperation}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "actionx",
			Name:      "attempt_duration_seconds",
			Help:      "Operation attempt latency histogram in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{labelOperation, labelOutcome}),
	}
}

// Install adds the collector's event handlers to g.
func (c *Collector) Install(g *actionx.HandlerGroup) {
	g.PushBack(actionx.AfterSend, actionx.HandlerFunc(c.afterSend))
	g.PushBack(actionx.AfterCacheHit, actionx.HandlerFunc(c.afterCacheHit))
	g.PushBack(actionx.AfterReauthorize, actionx.HandlerFunc(c.afterReauthorize))
	g.PushBack(actionx.AfterAttempt, actionx.HandlerFunc(c.afterAttempt))
}

func (c *Collector) afterSend(_ actionx.Event, e *request.Execution) {
	code := outcomeError
	if e.Response != nil {
		code = strconv.Itoa(e.Response.StatusCode)
	}
	c.sends.WithLabelValues(e.Operation, code).Inc()
}

func (c *Collector) afterCacheHit(_ actionx.Event, e *request.Execution) {
	c.cacheHits.WithLabelValues(e.Operation).Inc()
}

func (c *Collector) afterReauthorize(_ actionx.Event, e *request.Execution) {
	c.reauthorizations.WithLabelValues(e.Operation).Inc()
}

func (c *Collector) afterAttempt(_ actionx.Event, e *request.Execution) {
	outcome := outcomeSuccess
	if e.Result.Err() != nil {
		outcome = outcomeError
	}
	c.attempts.WithLabelValues(e.Operation, outcome).Inc()
	c.duration.WithLabelValues(e.Operation, outcome).Observe(e.Duration().Seconds())
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{c.attempts, c.sends, c.cacheHits, c.reauthorizations, c.duration}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.collectors() {
		m.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.collectors() {
		m.Collect(ch)
	}
}
