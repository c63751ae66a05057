package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func probe(t *testing.T, handler http.HandlerFunc) (int, probeBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	var body probeBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestLiveEndpoint(t *testing.T) {
	s := New()
	s.AddLivenessCheck("always-ok", time.Second, func(context.Context) error {
		return nil
	})
	s.Start(context.Background(), time.Minute)
	defer s.Stop()

	code, body := probe(t, s.LiveEndpoint)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Checks["always-ok"])
}

func TestLiveEndpoint_FailingCheck(t *testing.T) {
	s := New()
	s.AddLivenessCheck("broken", time.Second, func(context.Context) error {
		return errors.New("disk on fire")
	})
	s.Start(context.Background(), time.Minute)
	defer s.Stop()

	code, body := probe(t, s.LiveEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "disk on fire", body.Checks["broken"])
}

func TestReadyEndpoint_Gate(t *testing.T) {
	s := New()
	s.AddReadinessCheck("dep", time.Second, func(context.Context) error {
		return nil
	})
	s.Start(context.Background(), time.Minute)
	defer s.Stop()

	// Healthy checks alone are not enough before SetReady.
	code, body := probe(t, s.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)

	s.SetReady(true)
	code, body = probe(t, s.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)

	// Flipping the gate back down drains the probe again.
	s.SetReady(false)
	code, _ = probe(t, s.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestBackgroundLoopRefreshesResults(t *testing.T) {
	healthy := make(chan bool, 1)
	healthy <- false

	current := false
	s := New()
	s.AddLivenessCheck("flaky", time.Second, func(context.Context) error {
		select {
		case current = <-healthy:
		default:
		}
		if !current {
			return errors.New("down")
		}
		return nil
	})
	s.Start(context.Background(), 10*time.Millisecond)
	defer s.Stop()

	code, _ := probe(t, s.LiveEndpoint)
	require.Equal(t, http.StatusServiceUnavailable, code)

	healthy <- true
	assert.Eventually(t, func() bool {
		code, _ := probe(t, s.LiveEndpoint)
		return code == http.StatusOK
	}, time.Second, 10*time.Millisecond)
}

func TestCheckTimeout(t *testing.T) {
	s := New()
	s.AddLivenessCheck("slow", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	s.Start(context.Background(), time.Minute)
	defer s.Stop()

	code, body := probe(t, s.LiveEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks["slow"], "deadline")
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
