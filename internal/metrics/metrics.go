// Package metrics exposes Prometheus instrumentation for logins, submissions
// and HTTP requests.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pavelanni/exitsurvey/internal/auth"
	"github.com/pavelanni/exitsurvey/internal/model"
)

// Login results used as the "result" label.
const (
	ResultSuccess         = "success"
	ResultUnknownIdentity = "unknown_identity"
	ResultBadCredential   = "bad_credential"
	ResultUnknownRole     = "unknown_role"
	ResultError           = "error"
)

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	logins          *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exitsurvey_logins_total",
		Help: "Login attempts by role and result.",
	}, []string{"role", "result"})

	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exitsurvey_submissions_total",
		Help: "Feedback submissions recorded, by department.",
	}, []string{"department"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exitsurvey_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "exitsurvey_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	registry.MustRegister(
		logins, submissions, requestTotal, requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		logins:          logins,
		submissions:     submissions,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// RoleUnknown is the "role" label for logins with a role that is neither student nor admin.
const RoleUnknown = "unknown"

// LoginAttempt counts one authentication attempt.
func (m *Metrics) LoginAttempt(role model.Role, err error) {
	m.logins.WithLabelValues(roleLabel(role), loginResult(err)).Inc()
}

// roleLabel keeps the label set fixed no matter what a client posts.
func roleLabel(role model.Role) string {
	switch role {
	case model.RoleStudent, model.RoleAdmin:
		return string(role)
	default:
		return RoleUnknown
	}
}

// SubmissionRecorded counts one recorded submission.
func (m *Metrics) SubmissionRecorded(sub model.FeedbackSubmission) {
	m.submissions.WithLabelValues(string(sub.Department)).Inc()
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, auth.ErrUnknownIdentity):
		return ResultUnknownIdentity
	case errors.Is(err, auth.ErrBadCredential):
		return ResultBadCredential
	case errors.Is(err, auth.ErrUnknownRole):
		return ResultUnknownRole
	default:
		return ResultError
	}
}

// Middleware records the count and latency of every request, labelled with
// the matched chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
