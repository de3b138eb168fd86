package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// healthCheckTimeout bounds each dependency check.
const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency the health endpoint checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

type check struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type health struct {
	Name    string  `json:"name"`
	Message string  `json:"message"`
	Status  string  `json:"status"`
	Checks  []check `json:"checks"`
}

// HealthHandler reports whether every named dependency answers a ping.
// Any failing check turns the response into a 503.
func HealthHandler(name string, deps map[string]Pinger) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		h := health{
			Name:    name,
			Message: "ready for requests",
			Status:  "pass",
			Checks:  []check{},
		}
		code := http.StatusOK

		for depName, p := range deps {
			c := check{Name: depName, Status: "pass"}

			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			err := p.Ping(ctx)
			cancel()
			if err != nil {
				c.Status = "fail"
				c.Message = err.Error()
				h.Status = "fail"
				h.Message = "one or more dependencies are unavailable"
				code = http.StatusServiceUnavailable
			}
			h.Checks = append(h.Checks, c)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(h)
	}
	return http.HandlerFunc(fn)
}
