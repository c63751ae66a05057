// Package health provides liveness and readiness probes for the API server.
//
// Registered checks run periodically in a single background goroutine; probe
// endpoints only read the last recorded results, so a slow dependency can
// never stall a probe response.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Service aggregates health checks and serves /livez- and /readyz-style
// endpoints.
type Service struct {
	mu        sync.RWMutex
	liveness  []check
	readiness []check
	results   map[string]error

	ready  atomic.Bool
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an empty health service. It reports not-ready until SetReady.
func New() *Service {
	return &Service{results: make(map[string]error)}
}

// AddLivenessCheck registers a check that gates /livez.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a check that gates /readyz.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the manual readiness gate, used to drain traffic before
// shutdown.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Start launches the background check loop. Stop it with Stop or by
// cancelling ctx.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.runChecks(ctx)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runChecks(ctx)
			}
		}
	}()
}

// Stop terminates the check loop and waits for it to exit.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

func (s *Service) runChecks(ctx context.Context) {
	s.mu.RLock()
	checks := make([]check, 0, len(s.liveness)+len(s.readiness))
	checks = append(checks, s.liveness...)
	checks = append(checks, s.readiness...)
	s.mu.RUnlock()

	results := make(map[string]error, len(checks))
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		results[c.name] = c.fn(checkCtx)
		cancel()
	}

	s.mu.Lock()
	for name, err := range results {
		s.results[name] = err
	}
	s.mu.Unlock()
}

// LiveEndpoint serves the liveness probe.
func (s *Service) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	checks := s.liveness
	s.mu.RUnlock()
	s.respond(w, checks, true)
}

// ReadyEndpoint serves the readiness probe. It fails while the manual gate is
// down, regardless of check results.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	checks := s.readiness
	s.mu.RUnlock()
	s.respond(w, checks, s.ready.Load())
}

func (s *Service) respond(w http.ResponseWriter, checks []check, gate bool) {
	status := "ok"
	httpStatus := http.StatusOK
	details := make(map[string]string, len(checks))

	s.mu.RLock()
	for _, c := range checks {
		if err := s.results[c.name]; err != nil {
			details[c.name] = err.Error()
			status = "unhealthy"
		} else {
			details[c.name] = "ok"
		}
	}
	s.mu.RUnlock()

	if !gate {
		status = "unhealthy"
	}
	if status != "ok" {
		httpStatus = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"checks": details,
	})
}
