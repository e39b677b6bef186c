// Package health serves the liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type ReadinessReporter interface {
	Readiness() (ready bool, records int)
}

// Check is a dependency probe run on every readiness request.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

func Named(name string, fn func(ctx context.Context) error) Check {
	return Check{Name: name, Fn: fn}
}

const checkTimeout = 2 * time.Second

func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// Readiness answers 503 until the dataset has been loaded once, and while
// any dependency check fails.
func Readiness(rr ReadinessReporter, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type resp struct {
			Status  string            `json:"status"`
			Records int               `json:"records,omitempty"`
			Failed  map[string]string `json:"failed,omitempty"`
		}
		ready, n := rr.Readiness()
		out := resp{Status: "not_ready"}

		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()
		for _, c := range checks {
			if err := c.Fn(ctx); err != nil {
				if out.Failed == nil {
					out.Failed = map[string]string{}
				}
				out.Failed[c.Name] = err.Error()
				ready = false
			}
		}

		if ready {
			out.Status = "ready"
			out.Records = n
		}
		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
