package tracing

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"
	jaegerconfig "github.com/uber/jaeger-client-go/config"
	jaegerzap "github.com/uber/jaeger-client-go/log/zap"
	"go.uber.org/zap"
)

// Supported tracer types.
const (
	TypeNone   = ""
	TypeJaeger = "jaeger"
)

// LogError adds a span log for an error.
// Returns unchanged error, so useful to wrap as in:
//
//	return nil, tracing.LogError(span, err)
func LogError(span opentracing.Span, err error) error {
	span.LogFields(log.Error(err))
	return err
}

// InjectToHTTPRequest adds tracing headers to an HTTP request.
func InjectToHTTPRequest(span opentracing.Span, req *http.Request) {
	err := opentracing.GlobalTracer().Inject(span.Context(), opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(req.Header))
	if err != nil {
		span.LogFields(log.String("trace-inject-error", err.Error()))
	}
}

// ExtractFromHTTPRequest gets a child span of the parent referenced in HTTP request headers.
func ExtractFromHTTPRequest(req *http.Request, handlerName string) (opentracing.Span, *http.Request) {
	spanContext, err := opentracing.GlobalTracer().Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(req.Header))
	if err != nil {
		span, ctx := opentracing.StartSpanFromContext(req.Context(), handlerName+":"+req.URL.Path)
		if err != opentracing.ErrSpanContextNotFound {
			span.LogFields(log.String("trace-extract-error", err.Error()))
		}
		req = req.WithContext(ctx)
		return span, req
	}

	span := opentracing.StartSpan(handlerName+":"+req.URL.Path, opentracing.ChildOf(spanContext))
	req = req.WithContext(opentracing.ContextWithSpan(req.Context(), span))
	return span, req
}

// StartSpanFromContextWithOperationName starts a child of the span in ctx,
// or a root span when ctx carries none.
func StartSpanFromContextWithOperationName(ctx context.Context, operationName string) (opentracing.Span, context.Context) {
	if ctx == nil {
		panic("StartSpanFromContextWithOperationName called with nil context")
	}
	return opentracing.StartSpanFromContext(ctx, operationName)
}

// Open installs the global tracer of the given type. Jaeger reads its
// settings from the standard JAEGER_* environment variables. The returned
// closer flushes buffered spans.
func Open(tracerType, serviceName string, logger *zap.Logger) (io.Closer, error) {
	switch tracerType {
	case TypeNone:
		return nopCloser{}, nil
	case TypeJaeger:
		cfg, err := jaegerconfig.FromEnv()
		if err != nil {
			return nil, fmt.Errorf("reading jaeger config: %w", err)
		}
		if cfg.ServiceName == "" {
			cfg.ServiceName = serviceName
		}
		tracer, closer, err := cfg.NewTracer(jaegerconfig.Logger(jaegerzap.NewLogger(logger)))
		if err != nil {
			return nil, fmt.Errorf("creating jaeger tracer: %w", err)
		}
		opentracing.SetGlobalTracer(tracer)
		logger.Info("Tracing enabled", zap.String("tracing_type", tracerType), zap.String("service_name", cfg.ServiceName))
		return closer, nil
	default:
		return nil, fmt.Errorf("unknown tracing type %q", tracerType)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
