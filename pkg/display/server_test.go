package display

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"battle-display/pkg/arena"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	frame    []byte
	snap     arena.Snapshot
	accept   bool
	err      error
	requests int
}

func (f *fakeSource) Frame() []byte            { return f.frame }
func (f *fakeSource) Snapshot() arena.Snapshot { return f.snap }

func (f *fakeSource) ForceTurn(ctx context.Context) (bool, error) {
	f.requests++
	return f.accept, f.err
}

func newTestServer(t *testing.T, src *fakeSource) *Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewServer(src, NewHub(ctx, zap.NewNop()), zap.NewNop())
}

func do(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestInfoAndHealth(t *testing.T) {
	s := newTestServer(t, &fakeSource{snap: arena.Snapshot{Mode: arena.ModeSwap}})

	rec := do(s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(s, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, "swap", body["mode"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestFrame(t *testing.T) {
	src := &fakeSource{}
	s := newTestServer(t, src)

	rec := do(s, http.MethodGet, "/frame.png")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	src.frame = []byte("\x89PNG fake")
	rec = do(s, http.MethodGet, "/frame.png")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, src.frame, rec.Body.Bytes())
}

func TestState(t *testing.T) {
	src := &fakeSource{snap: arena.Snapshot{
		BattleID: "b-1",
		Active:   true,
		Turn:     "front",
		Front:    arena.SlotView{Name: "Pikachu", Health: 0.5},
	}}
	s := newTestServer(t, src)

	rec := do(s, http.MethodGet, "/api/state")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap arena.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "b-1", snap.BattleID)
	assert.Equal(t, "Pikachu", snap.Front.Name)
	assert.Equal(t, 0.5, snap.Front.Health)
}

func TestTurn(t *testing.T) {
	cases := []struct {
		name   string
		src    *fakeSource
		status int
		body   string
	}{
		{"accepted", &fakeSource{accept: true}, http.StatusOK, `{"accepted":true}`},
		{"guarded", &fakeSource{}, http.StatusConflict, `{"accepted":false}`},
		{"driver gone", &fakeSource{err: errors.New("stopped")}, http.StatusServiceUnavailable, `{"error":"stopped"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, tc.src)
			rec := do(s, http.MethodPost, "/api/turn")
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
			assert.Equal(t, 1, tc.src.requests)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/combat").Code)
}
