package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/halo/pkg/adapters/memory"
	"github.com/aretw0/halo/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *memory.SnapshotStore {
	t.Helper()
	store := memory.NewSnapshotStore()
	for gen := 0; gen < 3; gen++ {
		require.NoError(t, store.Save(context.Background(), &domain.Snapshot{
			Generation: gen,
			Width:      2,
			Height:     2,
			Cells:      []domain.Cell{1, 0, 0, domain.Cell(gen % 2)},
			Seams:      []int{1},
		}))
	}
	return store
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestSnapshots_List(t *testing.T) {
	h := NewHandler(seededStore(t))

	w := get(t, h, "/snapshots")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []int{0, 1, 2}, body["generations"])
}

func TestSnapshots_Get(t *testing.T) {
	h := NewHandler(seededStore(t))

	tests := []struct {
		name   string
		target string
		code   int
		gen    int
	}{
		{name: "latest", target: "/snapshots/latest", code: http.StatusOK, gen: 2},
		{name: "by generation", target: "/snapshots/1", code: http.StatusOK, gen: 1},
		{name: "missing", target: "/snapshots/42", code: http.StatusNotFound},
		{name: "not a number", target: "/snapshots/abc", code: http.StatusBadRequest},
		{name: "negative", target: "/snapshots/-1", code: http.StatusBadRequest},
		{name: "bad format", target: "/snapshots/1?format=png", code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, tt.target)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code != http.StatusOK {
				return
			}
			var snap domain.Snapshot
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
			assert.Equal(t, tt.gen, snap.Generation)
			assert.Equal(t, []int{1}, snap.Seams)
		})
	}
}

func TestSnapshots_PGM(t *testing.T) {
	h := NewHandler(seededStore(t))

	w := get(t, h, "/snapshots/0?format=pgm")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/x-portable-graymap", w.Header().Get("Content-Type"))
	assert.Equal(t, "P5\n2 2\n255\n\xff\x00\x45\x45", w.Body.String())
}

func TestLatest_EmptyStore(t *testing.T) {
	w := get(t, NewHandler(memory.NewSnapshotStore()), "/snapshots/latest")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndInfo(t *testing.T) {
	h := NewHandler(memory.NewSnapshotStore())

	w := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = get(t, h, "/info")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"app":"halo-http"`)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsMount(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("halo_generations_total 3\n"))
	})

	w := get(t, NewHandler(memory.NewSnapshotStore(), WithMetrics(metrics)), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "halo_generations_total")

	w = get(t, NewHandler(memory.NewSnapshotStore()), "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents(t *testing.T) {
	sm := NewStreamManager()
	srv := httptest.NewServer(NewHandler(memory.NewSnapshotStore(), WithStreams(sm)))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())
	require.True(t, lines.Scan())
	assert.Equal(t, "data: connected", lines.Text())

	sm.Hooks().OnSnapshot(ctx, &domain.SnapshotEvent{Generation: 7, Alive: 3})

	var data string
	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "data: ") {
			data = strings.TrimPrefix(lines.Text(), "data: ")
			break
		}
	}
	var ev domain.SnapshotEvent
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, 7, ev.Generation)
	assert.Equal(t, 3, ev.Alive)

	sm.Close()
}

func TestStreamManager_Unsubscribe(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)

	sm.Close()
	ch, _ = sm.Subscribe()
	_, ok = <-ch
	assert.False(t, ok, "subscribing after Close yields a closed channel")
}
