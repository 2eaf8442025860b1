package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vovakirdan/chaosynth/internal/config"
	"github.com/vovakirdan/chaosynth/internal/engine"
	"github.com/vovakirdan/chaosynth/internal/orchestrator"
	"github.com/vovakirdan/chaosynth/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()
	cfg := config.Default()
	cfg.Audio.SampleRate = 8000
	cfg.Presets.Backend = storage.BackendMemory
	e, err := engine.New(engine.Options{Config: cfg, Seed: 7})
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return New(Config{Addr: "127.0.0.1:0"}, e, nil), e
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("GET /health = %d, expected 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("GET /health body = %s", w.Body.String())
	}
}

func TestState(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /state = %d, expected 200", w.Code)
	}
	var st engine.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if st.Chaos.Settings.Kind != "lorenz" || st.Bio.Settings.Kind != "heartbeat" {
		t.Errorf("state kinds = %s/%s, expected lorenz/heartbeat", st.Chaos.Settings.Kind, st.Bio.Settings.Kind)
	}
	if len(st.Pool) != 4 {
		t.Errorf("state pool = %d kinds, expected 4", len(st.Pool))
	}
}

func TestSetKind(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"chaos ok", "/chaos/kind", `{"kind":"henon"}`, http.StatusOK},
		{"bio ok", "/bio/kind", `{"kind":"genetic"}`, http.StatusOK},
		{"unknown kind", "/chaos/kind", `{"kind":"genetic"}`, http.StatusBadRequest},
		{"unknown target", "/drums/kind", `{"kind":"henon"}`, http.StatusNotFound},
		{"bad json", "/chaos/kind", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			w := do(t, s, http.MethodPut, tt.path, tt.body)
			if w.Code != tt.code {
				t.Errorf("PUT %s = %d, expected %d (%s)", tt.path, w.Code, tt.code, w.Body.String())
			}
		})
	}
}

func TestSetKindApplies(t *testing.T) {
	s, e := newTestServer(t)
	do(t, s, http.MethodPut, "/chaos/kind", `{"kind":"chua"}`)
	if got := e.Chaos().Kind(); got != "chua" {
		t.Errorf("Kind() = %q, expected chua", got)
	}
}

func TestParams(t *testing.T) {
	s, e := newTestServer(t)

	w := do(t, s, http.MethodPost, "/bio/params", `{"density":0.25,"scale":"dorian","quantize":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /bio/params = %d (%s)", w.Code, w.Body.String())
	}
	got := e.Bio().Settings()
	if got.Density != 0.25 || got.Scale != "dorian" || got.Quantize {
		t.Errorf("Settings() = %+v, expected density 0.25 dorian unquantized", got)
	}

	// Invalid values are rejected, valid ones in the same request still apply.
	w = do(t, s, http.MethodPost, "/bio/params", `{"volume":0.3,"speed":99}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("POST /bio/params invalid = %d, expected 400", w.Code)
	}
	got = e.Bio().Settings()
	if got.Volume != 0.3 {
		t.Errorf("Volume = %v, expected 0.3", got.Volume)
	}
	if got.Speed != orchestrator.DefaultSettings("bio").Speed {
		t.Errorf("Speed = %v, expected unchanged", got.Speed)
	}
}

func TestMorph(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		body string
		code int
	}{
		{"", http.StatusOK},
		{`{"amount":0.5}`, http.StatusOK},
		{`{"amount":-1}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := do(t, s, http.MethodPost, "/chaos/morph", tt.body)
		if w.Code != tt.code {
			t.Errorf("POST /chaos/morph %q = %d, expected %d", tt.body, w.Code, tt.code)
		}
	}
}

func TestStartStop(t *testing.T) {
	s, e := newTestServer(t)
	if w := do(t, s, http.MethodPost, "/chaos/start", ""); w.Code != http.StatusOK {
		t.Fatalf("POST /chaos/start = %d", w.Code)
	}
	if e.Chaos().State() != orchestrator.Running {
		t.Error("chaos not running after start")
	}
	if w := do(t, s, http.MethodPost, "/chaos/stop", ""); w.Code != http.StatusOK {
		t.Fatalf("POST /chaos/stop = %d", w.Code)
	}
	if e.Chaos().State() != orchestrator.Idle {
		t.Error("chaos still running after stop")
	}
}

func TestPresetLifecycle(t *testing.T) {
	s, e := newTestServer(t)

	if w := do(t, s, http.MethodGet, "/presets/none", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET missing preset = %d, expected 404", w.Code)
	}

	if w := do(t, s, http.MethodPut, "/presets/live", ""); w.Code != http.StatusOK {
		t.Fatalf("PUT /presets/live = %d (%s)", w.Code, w.Body.String())
	}

	custom := e.CurrentPreset()
	custom.Chaos.Kind = "rossler"
	body, _ := json.Marshal(custom)
	if w := do(t, s, http.MethodPut, "/presets/custom", string(body)); w.Code != http.StatusOK {
		t.Fatalf("PUT /presets/custom = %d (%s)", w.Code, w.Body.String())
	}

	w := do(t, s, http.MethodGet, "/presets", "")
	var infos []engine.PresetInfo
	if err := json.Unmarshal(w.Body.Bytes(), &infos); err != nil {
		t.Fatalf("decode presets: %v", err)
	}
	if len(infos) != 2 || infos[0].Name != "custom" || infos[1].Name != "live" {
		t.Errorf("GET /presets = %+v, expected custom and live", infos)
	}

	if w := do(t, s, http.MethodPost, "/presets/custom/load", ""); w.Code != http.StatusOK {
		t.Fatalf("POST load = %d (%s)", w.Code, w.Body.String())
	}
	if got := e.Chaos().Kind(); got != "rossler" {
		t.Errorf("Kind() after load = %q, expected rossler", got)
	}

	if w := do(t, s, http.MethodDelete, "/presets/custom", ""); w.Code != http.StatusNoContent {
		t.Errorf("DELETE = %d, expected 204", w.Code)
	}
	if w := do(t, s, http.MethodDelete, "/presets/custom", ""); w.Code != http.StatusNotFound {
		t.Errorf("second DELETE = %d, expected 404", w.Code)
	}
}

func TestMIDI(t *testing.T) {
	s, e := newTestServer(t)

	// CC 7 on channel 1 is bound to chaos volume; full scale.
	r := httptest.NewRequest(http.MethodPost, "/midi", bytes.NewReader([]byte{0xB0, 7, 127, 0x90, 60, 100}))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /midi = %d (%s)", w.Code, w.Body.String())
	}
	var resp midiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Handled != 1 {
		t.Errorf("handled = %d, expected 1", resp.Handled)
	}
	if got := e.Chaos().Settings().Volume; got != 1 {
		t.Errorf("Volume = %v, expected 1", got)
	}

	r = httptest.NewRequest(http.MethodPost, "/midi", bytes.NewReader([]byte{0xB0, 7}))
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("POST /midi truncated = %d, expected 400", w.Code)
	}
}

func TestSpectrumAndEvents(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/spectrum", "")
	var sp spectrumResponse
	if err := json.Unmarshal(w.Body.Bytes(), &sp); err != nil {
		t.Fatalf("decode spectrum: %v", err)
	}
	if len(sp.Bands) != SpectrumBands {
		t.Errorf("bands = %d, expected %d", len(sp.Bands), SpectrumBands)
	}

	if w := do(t, s, http.MethodGet, "/events?n=5", ""); w.Code != http.StatusOK {
		t.Errorf("GET /events = %d", w.Code)
	}
	if w := do(t, s, http.MethodGet, "/events?n=x", ""); w.Code != http.StatusBadRequest {
		t.Errorf("GET /events?n=x = %d, expected 400", w.Code)
	}
}
