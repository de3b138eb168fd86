package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carcatalog/catalog/kit/prom/promtest"
	kithttp "github.com/carcatalog/catalog/kit/transport/http"
	"github.com/carcatalog/catalog/pkg/testttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestHandler_ServeHTTP(t *testing.T) {
	type fields struct {
		name    string
		handler http.Handler
		log     *zap.Logger
	}
	type args struct {
		w *httptest.ResponseRecorder
		r *http.Request
	}
	tests := []struct {
		name   string
		fields fields
		args   args
	}{
		{
			name: "should record metrics when http handling",
			fields: fields{
				name:    "test",
				handler: http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}),
				log:     zaptest.NewLogger(t),
			},
			args: args{
				r: httptest.NewRequest(http.MethodGet, "/", nil),
				w: httptest.NewRecorder(),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			h := NewRootHandler(
				tt.fields.name,
				WithLog(tt.fields.log),
				WithAPIHandler(tt.fields.handler),
				WithMetrics(reg),
			)

			tt.args.r.Header.Set("User-Agent", "ua1")
			h.ServeHTTP(tt.args.w, tt.args.r)

			mfs := promtest.MustGather(t, reg)

			c := promtest.MustFindMetric(t, mfs, "http_api_requests_total", map[string]string{
				"handler":       "test",
				"method":        "GET",
				"path":          "/",
				"status":        "2XX",
				"user_agent":    "ua1",
				"response_code": "200",
			})
			if got := c.GetCounter().GetValue(); got != 1 {
				t.Fatalf("expected counter to be 1, got %v", got)
			}

			g := promtest.MustFindMetric(t, mfs, "http_api_request_duration_seconds", map[string]string{
				"handler":       "test",
				"method":        "GET",
				"path":          "/",
				"status":        "2XX",
				"user_agent":    "ua1",
				"response_code": "200",
			})
			if got := g.GetHistogram().GetSampleCount(); got != 1 {
				t.Fatalf("expected histogram sample count to be 1, got %v", got)
			}
		})
	}
}

func TestHandler_NormalizesIDsInMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewRootHandler("catalog",
		WithLog(zaptest.NewLogger(t)),
		WithAPIHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})),
		WithMetrics(reg),
	)

	for _, id := range []string{
		"0189f7a2-4c1e-7b3a-9f00-000000000001",
		"0189f7a2-4c1e-7b3a-9f00-000000000002",
	} {
		testttp.Get(t, "/api/v1/cars/"+id).
			Headers("User-Agent", "ua1").
			Do(h).
			ExpectStatus(http.StatusInternalServerError)
	}

	c := promtest.MustFindMetric(t, promtest.MustGather(t, reg), "http_api_requests_total", map[string]string{
		"handler":       "catalog",
		"method":        "GET",
		"path":          "/api/v1/cars/:id",
		"status":        "5XX",
		"user_agent":    "ua1",
		"response_code": "500",
	})
	assert.Equal(t, float64(2), c.GetCounter().GetValue())
}

func TestHandler_SkipsMetricsForClientErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewRootHandler("catalog",
		WithAPIHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})),
		WithMetrics(reg),
	)

	testttp.Get(t, "/api/v1/brands").Do(h).ExpectStatus(http.StatusNotFound)

	m := promtest.FindMetric(promtest.MustGather(t, reg), "http_api_requests_total", map[string]string{
		"handler":       "catalog",
		"method":        "GET",
		"path":          "/api/v1/brands",
		"status":        "4XX",
		"user_agent":    "unknown",
		"response_code": "404",
	})
	assert.Nil(t, m)
}

func TestHandler_SystemRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewRootHandler("catalog",
		WithLog(zaptest.NewLogger(t)),
		WithMetrics(reg),
		WithPinger("store", pingFunc(func(context.Context) error { return nil })),
	)

	testttp.Get(t, ReadyPath).Do(h).
		ExpectStatus(http.StatusOK).
		ExpectHeader("Content-Type", "application/json; charset=utf-8")

	testttp.Get(t, HealthPath).Do(h).
		ExpectStatus(http.StatusOK).
		ExpectBody(func(b *bytes.Buffer) {
			var got health
			require.NoError(t, json.Unmarshal(b.Bytes(), &got))
			assert.Equal(t, "pass", got.Status)
			assert.Equal(t, []check{{Name: "store", Status: "pass"}}, got.Checks)
		})

	testttp.Get(t, MetricsPath).Do(h).
		ExpectStatus(http.StatusOK).
		Expect(func(resp *testttp.Resp) {
			mfs, err := promtest.FromHTTPResponse(resp.Rec.Result())
			require.NoError(t, err)
			promtest.MustFindMetric(t, mfs, "promhttp_metric_handler_requests_in_flight", map[string]string{})
		})
}

func TestHandler_NotFoundWithoutAPI(t *testing.T) {
	h := NewRootHandler("catalog", WithMetrics(prometheus.NewRegistry()))

	testttp.Get(t, "/api/v1/brands").Do(h).
		ExpectStatus(http.StatusNotFound).
		ExpectHeader(kithttp.PlatformErrorCodeHeader, "not found").
		ExpectBody(func(b *bytes.Buffer) {
			assert.JSONEq(t, `{"code":"not found","message":"path not found"}`, b.String())
		})
}

func TestHandler_RateLimit(t *testing.T) {
	h := NewRootHandler("catalog",
		WithAPIHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})),
		WithMetrics(prometheus.NewRegistry()),
		WithRateLimit(0.001, 1),
	)

	testttp.Get(t, "/api/v1/brands").Do(h).ExpectStatus(http.StatusOK)
	testttp.Get(t, "/api/v1/brands").Do(h).
		ExpectStatus(http.StatusTooManyRequests).
		ExpectHeader("Retry-After", "1").
		ExpectHeader(kithttp.PlatformErrorCodeHeader, "too many requests")

	// system routes are never limited.
	testttp.Get(t, ReadyPath).Do(h).ExpectStatus(http.StatusOK)
}

func TestHandler_CORS(t *testing.T) {
	called := false
	h := NewRootHandler("catalog",
		WithAPIHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})),
		WithMetrics(prometheus.NewRegistry()),
	)

	testttp.HTTP(t, http.MethodOptions, "/api/v1/cars", nil).
		Headers("Origin", "http://catalog.example").
		Do(h).
		ExpectStatus(http.StatusNoContent).
		ExpectHeader("Access-Control-Allow-Origin", "http://catalog.example").
		ExpectHeader("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
	assert.False(t, called, "preflight requests stop at the CORS middleware")

	testttp.Get(t, "/api/v1/cars").
		Headers("Origin", "http://catalog.example").
		Do(h).
		ExpectStatus(http.StatusOK).
		ExpectHeader("Access-Control-Allow-Origin", "http://catalog.example")
	assert.True(t, called)
}
