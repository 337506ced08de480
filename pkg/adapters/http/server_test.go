package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vhttp "github.com/aretw0/vivarium/pkg/adapters/http"
	"github.com/aretw0/vivarium/pkg/adapters/memory"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/ports"
)

func seeded(t *testing.T) *memory.Emitter {
	t.Helper()
	ctx := context.Background()
	m := memory.NewEmitter()
	require.NoError(t, m.Emit(ctx, domain.Envelope{
		Table: domain.TableConfiguration,
		Data:  map[string]any{"experiment_id": "exp"},
	}))
	for i := 1; i <= 2; i++ {
		require.NoError(t, m.Emit(ctx, domain.Envelope{
			Table: domain.TableHistory,
			Data:  map[string]any{"global": map[string]any{"mass": float64(i)}, "time": float64(i)},
		}))
	}
	return m
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) any {
	t.Helper()
	var out any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	w := get(t, vhttp.NewHandler(memory.NewEmitter()), "/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, map[string]any{"status": "ok"}, decode(t, w))
}

func TestConfiguration(t *testing.T) {
	w := get(t, vhttp.NewHandler(memory.NewEmitter()), "/configuration")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(t, vhttp.NewHandler(seeded(t)), "/configuration")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"experiment_id": "exp"}, decode(t, w))
}

func TestHistoryAndTimeseries(t *testing.T) {
	h := vhttp.NewHandler(seeded(t))

	tests := []struct {
		name   string
		target string
		want   any
	}{
		{
			name:   "history",
			target: "/history",
			want: []any{
				map[string]any{"global": map[string]any{"mass": 1.0}, "time": 1.0},
				map[string]any{"global": map[string]any{"mass": 2.0}, "time": 2.0},
			},
		},
		{
			name:   "nested series",
			target: "/timeseries",
			want: map[string]any{
				"global": map[string]any{"mass": []any{1.0, 2.0}},
				"time":   []any{1.0, 2.0},
			},
		},
		{
			name:   "flat series",
			target: "/timeseries?format=paths",
			want: map[string]any{
				"global/mass": []any{1.0, 2.0},
				"time":        []any{1.0, 2.0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, tt.target)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, decode(t, w))
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(t, h, "/timeseries?format=csv").Code)
	})
}

func TestMetrics(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, get(t, vhttp.NewHandler(memory.NewEmitter()), "/metrics").Code)

	reg := prometheus.NewRegistry()
	ticks := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_ticks_total", Help: "ticks"})
	reg.MustRegister(ticks)
	ticks.Add(3)

	w := get(t, vhttp.NewHandler(memory.NewEmitter(), vhttp.WithMetrics(reg)), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_ticks_total 3")
}

func TestStreamManager_Contract(t *testing.T) {
	ports.RunEmitterContract(t, vhttp.NewStreamManager())
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := vhttp.NewStreamManager(vhttp.WithBuffer(1))
	events, cancel := sm.Subscribe("exp")
	defer cancel()

	sm.Broadcast("exp", vhttp.Event{Name: "history", Data: "1"})
	sm.Broadcast("exp", vhttp.Event{Name: "history", Data: "2"})

	assert.Equal(t, "1", (<-events).Data)
	assert.Empty(t, events)
}

func TestStreamManager_Unsubscribe(t *testing.T) {
	sm := vhttp.NewStreamManager()
	events, cancel := sm.Subscribe("exp")
	assert.Equal(t, 1, sm.Subscribers("exp"))

	cancel()
	cancel()

	assert.Equal(t, 0, sm.Subscribers("exp"))
	_, open := <-events
	assert.False(t, open)
}

func TestSubscribeEvents(t *testing.T) {
	server := vhttp.NewServer(memory.NewEmitter())
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events?experiment_id=exp")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() []string {
		var lines []string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			if line == "" {
				return lines
			}
			lines = append(lines, line)
		}
	}

	assert.Equal(t, []string{"event: ping", "data: connected"}, readEvent())

	ctx := context.Background()
	require.NoError(t, server.Streams.Emit(ctx, domain.Envelope{
		Table:        domain.TableHistory,
		ExperimentID: "other",
		Data:         map[string]any{"time": 1.0},
	}))
	require.NoError(t, server.Streams.Emit(ctx, domain.Envelope{
		Table:        domain.TableHistory,
		ExperimentID: "exp",
		Data:         map[string]any{"time": 2.0},
	}))

	assert.Equal(t, []string{"event: history", `data: {"time":2}`}, readEvent())
}
