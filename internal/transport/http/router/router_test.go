package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHealth struct{}

func (stubHealth) Healthz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
func (stubHealth) Readyz(w http.ResponseWriter, r *http.Request)  { w.WriteHeader(http.StatusOK) }

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(Deps{Metrics: prometheus.NewRegistry()})
	require.Error(t, err)

	_, err = New(Deps{Health: stubHealth{}})
	require.Error(t, err)
}

func TestRouterServesOpsEndpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := promauto.With(reg).NewCounter(prometheus.CounterOpts{Name: "intake_test_total"})
	c.Inc()

	h, err := New(Deps{Health: stubHealth{}, Metrics: reg})
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	defer srv.Close()

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
