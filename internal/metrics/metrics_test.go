package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersArePerRegistry(t *testing.T) {
	a := New("cme", false)
	b := New("cme", false)

	a.PacketsTotal.WithLabelValues("sequenced").Add(3)
	a.GapsTotal.Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(a.PacketsTotal.WithLabelValues("sequenced")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PacketsTotal.WithLabelValues("sequenced")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.GapsTotal))
}

func TestWriteTextfile(t *testing.T) {
	m := New("cboe", false)
	m.MissingSequencesTotal.Add(42)
	m.Streams.Set(2)

	path := filepath.Join(t.TempDir(), "seqgap.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `seqgap_missing_sequences_total{exchange="cboe"} 42`)
	assert.Contains(t, string(data), `seqgap_streams{exchange="cboe"} 2`)
}

func TestWriteTextfileBadPath(t *testing.T) {
	m := New("ice", false)
	assert.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}

func TestServerHandler(t *testing.T) {
	m := New("ice", true)
	m.SelectedPacketsTotal.Add(5)

	srv := NewServer("127.0.0.1:0", "", m)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `seqgap_selected_packets_total{exchange="ice"} 5`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestServerStartStop(t *testing.T) {
	m := New("cme", false)
	m.GapsTotal.Inc()

	srv := NewServer("127.0.0.1:0", "/m", m)
	require.NoError(t, srv.Start())

	resp, err := http.Get("http://" + srv.Addr() + "/m")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `seqgap_gaps_total{exchange="cme"} 1`)

	require.NoError(t, srv.Stop(context.Background()))
}
