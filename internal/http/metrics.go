package http

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applog "budget/internal/log"
)

// metricsCollector exposes the middleware counters. Values are read on
// every scrape from the components that own them.
type metricsCollector struct {
	s *Server

	requests       *prometheus.Desc
	clientErrors   *prometheus.Desc
	serverErrors   *prometheus.Desc
	avgDuration    *prometheus.Desc
	rateLimitHits  *prometheus.Desc
	rateLimitUsers *prometheus.Desc
	suspicious     *prometheus.Desc
	blocked        *prometheus.Desc
	amqpUp         *prometheus.Desc
}

func newMetricsCollector(s *Server) *metricsCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("budget_"+name, help, nil, nil)
	}
	return &metricsCollector{
		s:              s,
		requests:       desc("http_requests_total", "HTTP requests served."),
		clientErrors:   desc("http_client_errors_total", "HTTP responses with a 4xx status."),
		serverErrors:   desc("http_server_errors_total", "HTTP responses with a 5xx status."),
		avgDuration:    desc("http_request_duration_avg_microseconds", "Average request duration."),
		rateLimitHits:  desc("rate_limit_hits_total", "Requests rejected by the rate limiter."),
		rateLimitUsers: desc("rate_limit_clients", "Clients tracked by the rate limiter."),
		suspicious:     desc("suspicious_requests_total", "Requests flagged as suspicious."),
		blocked:        desc("blocked_requests_total", "Requests rejected by the detector."),
		amqpUp:         desc("amqp_up", "Whether the event publisher circuit is closed."),
	}
}

func (c *metricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.clientErrors
	ch <- c.serverErrors
	ch <- c.avgDuration
	ch <- c.rateLimitHits
	ch <- c.rateLimitUsers
	ch <- c.suspicious
	ch <- c.blocked
	ch <- c.amqpUp
}

func (c *metricsCollector) Collect(ch chan<- prometheus.Metric) {
	emit := func(d *prometheus.Desc, kind prometheus.ValueType, v int64) {
		ch <- prometheus.MustNewConstMetric(d, kind, float64(v))
	}

	tm := c.s.tracer.GetMetrics()
	emit(c.requests, prometheus.CounterValue, tm.TotalRequests)
	emit(c.clientErrors, prometheus.CounterValue, tm.ClientErrors)
	emit(c.serverErrors, prometheus.CounterValue, tm.ServerErrors)
	emit(c.avgDuration, prometheus.GaugeValue, tm.AverageResponseTime)

	rm := c.s.limiter.GetMetrics()
	emit(c.rateLimitHits, prometheus.CounterValue, rm.TotalHits)
	emit(c.rateLimitUsers, prometheus.GaugeValue, rm.ClientCount)

	sm := c.s.detector.GetMetrics()
	emit(c.suspicious, prometheus.CounterValue, sm.SuspiciousRequests)
	emit(c.blocked, prometheus.CounterValue, sm.BlockedRequests)

	if c.s.deps.Events != nil {
		var up int64
		if c.s.deps.Events.Healthy() {
			up = 1
		}
		emit(c.amqpUp, prometheus.GaugeValue, up)
	}
}

// metricsHandler serves a private registry so tests and multiple servers in
// one process do not collide on the global one.
func (s *Server) metricsHandler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		newMetricsCollector(s),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog:      scrapeErrorLog{s.logger},
		ErrorHandling: promhttp.ContinueOnError,
	})
}

type scrapeErrorLog struct{ logger *applog.Logger }

func (l scrapeErrorLog) Println(v ...any) {
	l.logger.Error("Metrics collection failed", applog.FieldError, fmt.Sprint(v...))
}
