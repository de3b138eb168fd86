package http

import (
	"net/http"
	"time"

	"github.com/carcatalog/catalog/kit/platform/errors"
	kithttp "github.com/carcatalog/catalog/kit/transport/http"
	"github.com/carcatalog/catalog/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"
	// ReadyPath reports that the server is accepting requests.
	ReadyPath = "/ready"
	// HealthPath checks the server's dependencies.
	HealthPath = "/health"
)

// Handler provides basic handling of metrics, health and ready endpoints.
// All other requests are passed down to the API handler.
type Handler struct {
	name string
	r    chi.Router

	log *zap.Logger

	// Metrics
	requests   *prometheus.CounterVec
	requestDur *prometheus.HistogramVec
}

type (
	handlerOpts struct {
		log        *zap.Logger
		apiHandler http.Handler
		pingers    map[string]Pinger
		gatherer   prometheus.Gatherer
		registerer prometheus.Registerer
		limiter    *rate.Limiter
	}

	HandlerOptFn func(opts *handlerOpts)
)

// WithLog sets the logger of the root handler.
func WithLog(l *zap.Logger) HandlerOptFn {
	return func(opts *handlerOpts) {
		opts.log = l
	}
}

// WithAPIHandler sets the handler serving everything outside the
// metrics, ready and health endpoints.
func WithAPIHandler(h http.Handler) HandlerOptFn {
	return func(opts *handlerOpts) {
		opts.apiHandler = h
	}
}

// WithPinger adds a dependency to the health check.
func WithPinger(name string, p Pinger) HandlerOptFn {
	return func(opts *handlerOpts) {
		if opts.pingers == nil {
			opts.pingers = make(map[string]Pinger)
		}
		opts.pingers[name] = p
	}
}

// WithMetrics serves /metrics from reg.
func WithMetrics(reg *prometheus.Registry) HandlerOptFn {
	return func(opts *handlerOpts) {
		opts.gatherer = reg
		opts.registerer = reg
	}
}

// WithRateLimit limits API requests to rps per second with the given burst.
// A non-positive rps leaves the API unlimited.
func WithRateLimit(rps float64, burst int) HandlerOptFn {
	return func(opts *handlerOpts) {
		if rps <= 0 {
			opts.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		opts.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewRootHandler creates a new handler with the given name and registers
// any root-level routes.
func NewRootHandler(name string, opts ...HandlerOptFn) *Handler {
	opt := handlerOpts{
		log:      zap.NewNop(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, o := range opts {
		o(&opt)
	}

	h := &Handler{
		name: name,
		log:  opt.log,
	}
	h.initMetrics()

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		middleware.RequestID,
		middleware.RealIP,
		h.requestLogger,
		kithttp.SetCORS,
		kithttp.SkipOptions,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		kithttp.ErrorHandler(0).HandleHTTPError(r.Context(), &errors.Error{
			Code: errors.ENotFound,
			Msg:  "path not found",
		}, w)
	})

	// only gather metrics for system handlers
	r.Group(func(r chi.Router) {
		var metricsHandler http.Handler = promhttp.HandlerFor(opt.gatherer, promhttp.HandlerOpts{})
		if opt.registerer != nil {
			metricsHandler = promhttp.InstrumentMetricHandler(opt.registerer, metricsHandler)
		}
		r.Handle(MetricsPath, metricsHandler)
		r.Handle(ReadyPath, ReadyHandler())
		r.Handle(HealthPath, HealthHandler(name, opt.pingers))
	})

	// gather metrics and traces for everything else
	if opt.apiHandler != nil {
		api := kithttp.NewAPI(kithttp.WithLog(opt.log))
		r.Group(func(r chi.Router) {
			r.Use(
				kithttp.Metrics(name, h.requests, h.requestDur),
				kithttp.Trace(name),
				kithttp.RateLimit(api, opt.limiter),
			)
			r.Mount("/", opt.apiHandler)
		})
	}

	h.r = r

	if opt.registerer != nil {
		opt.registerer.MustRegister(h.PrometheusCollectors()...)
	}
	return h
}

// requestLogger carries a logger tagged with the request id through the
// request context.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		log := h.log.With(logger.RequestID(middleware.GetReqID(r.Context())))
		next.ServeHTTP(w, r.WithContext(logger.NewContextWithLogger(r.Context(), log)))
	}
	return http.HandlerFunc(fn)
}

// ServeHTTP delegates a request to the appropriate subhandler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.r.ServeHTTP(w, r)
}

// PrometheusCollectors returns the collectors behind the request metrics.
func (h *Handler) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		h.requests,
		h.requestDur,
	}
}

func (h *Handler) initMetrics() {
	const namespace = "http"
	const handlerSubsystem = "api"

	h.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: handlerSubsystem,
		Name:      "requests_total",
		Help:      "Number of http requests received",
	}, kithttp.MetricLabels)

	h.requestDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: handlerSubsystem,
		Name:      "request_duration_seconds",
		Help:      "Time taken to respond to HTTP request",
		Buckets:   prometheus.ExponentialBuckets(float64(time.Millisecond)/float64(time.Second), 2, 14),
	}, kithttp.MetricLabels)
}
