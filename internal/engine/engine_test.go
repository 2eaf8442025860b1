package engine

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/chaosynth/internal/config"
	"github.com/vovakirdan/chaosynth/internal/orchestrator"
	"github.com/vovakirdan/chaosynth/internal/storage"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Audio.SampleRate = 8000
	cfg.Audio.Output = false
	cfg.Presets.Backend = storage.BackendMemory
	cfg.Chaos.Density = 1
	cfg.Bio.Density = 1
	return cfg
}

func newTestEngine(t *testing.T, cfg config.Config) *Engine {
	t.Helper()
	e, err := New(Options{Config: cfg, Seed: 42})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func run(e *Engine, total, step time.Duration) {
	for elapsed := time.Duration(0); elapsed < total; elapsed += step {
		e.Step(step)
	}
}

func TestEngineStepTriggers(t *testing.T) {
	e := newTestEngine(t, testConfig())
	e.Start()
	if !e.Running() {
		t.Fatal("Running() = false after Start")
	}

	run(e, 2*time.Second, 10*time.Millisecond)

	st := e.Status()
	if st.Chaos.Stats.Ticks == 0 || st.Bio.Stats.Ticks == 0 {
		t.Errorf("ticks = chaos %d bio %d, expected both > 0", st.Chaos.Stats.Ticks, st.Bio.Stats.Ticks)
	}
	if st.Chaos.Stats.Triggers == 0 {
		t.Error("chaos orchestrator never triggered")
	}
	if len(e.History(0)) == 0 {
		t.Error("History() is empty after triggers")
	}
	if st.Now < 2*time.Second {
		t.Errorf("Now = %v, expected >= 2s", st.Now)
	}
}

func TestEngineStopReleasesVoices(t *testing.T) {
	e := newTestEngine(t, testConfig())
	e.Start()
	run(e, time.Second, 10*time.Millisecond)
	e.Stop()

	if e.Running() {
		t.Error("Running() = true after Stop")
	}
	for _, u := range e.Pool().Usage() {
		if u.Active != 0 {
			t.Errorf("pool %v active = %d after Stop, expected 0", u.Kind, u.Active)
		}
	}
}

func TestEngineDeterministic(t *testing.T) {
	a := newTestEngine(t, testConfig())
	b := newTestEngine(t, testConfig())
	a.Start()
	b.Start()
	run(a, time.Second, 10*time.Millisecond)
	run(b, time.Second, 10*time.Millisecond)

	ha, hb := a.History(0), b.History(0)
	if len(ha) != len(hb) {
		t.Fatalf("history lengths differ: %d vs %d", len(ha), len(hb))
	}
	for i := range ha {
		if ha[i].Kind != hb[i].Kind || ha[i].At != hb[i].At || !reflect.DeepEqual(ha[i].Requests, hb[i].Requests) {
			t.Fatalf("event %d differs: %+v vs %+v", i, ha[i], hb[i])
		}
	}
}

func TestEngineHistoryBounded(t *testing.T) {
	e := newTestEngine(t, testConfig())
	for i := 0; i < HistorySize+10; i++ {
		e.record(orchestrator.Event{Kind: "lorenz", At: time.Duration(i)})
	}
	h := e.History(0)
	if len(h) != HistorySize {
		t.Errorf("History() len = %d, expected %d", len(h), HistorySize)
	}
	if h[len(h)-1].At != time.Duration(HistorySize+9) {
		t.Errorf("newest event At = %v, expected %v", h[len(h)-1].At, HistorySize+9)
	}
	if got := e.History(3); len(got) != 3 || got[2].At != h[len(h)-1].At {
		t.Errorf("History(3) = %v, expected the 3 newest", got)
	}
}

func TestEngineOrchestratorLookup(t *testing.T) {
	e := newTestEngine(t, testConfig())

	if o, err := e.Orchestrator("chaos"); err != nil || o != e.Chaos() {
		t.Errorf("Orchestrator(chaos) = %v, %v", o, err)
	}
	if o, err := e.Orchestrator("bio"); err != nil || o != e.Bio() {
		t.Errorf("Orchestrator(bio) = %v, %v", o, err)
	}
	if _, err := e.Orchestrator("drums"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("Orchestrator(drums) error = %v, expected ErrUnknownTarget", err)
	}
}

func TestEngineMIDIBindings(t *testing.T) {
	e := newTestEngine(t, testConfig())

	// CC 1 is bound to chaos density.
	if n, err := e.MIDI().HandleBytes([]byte{0xB0, 1, 0}); err != nil || n != 1 {
		t.Fatalf("HandleBytes() = %d, %v", n, err)
	}
	if got := e.Chaos().Settings().Density; got != 0 {
		t.Errorf("chaos density = %v, expected 0", got)
	}
}

func TestPresetSaveLoad(t *testing.T) {
	e := newTestEngine(t, testConfig())

	if err := e.Chaos().SetKind("henon"); err != nil {
		t.Fatal(err)
	}
	if err := e.Bio().UpdateParameter(orchestrator.ParamVolume, 0.9); err != nil {
		t.Fatal(err)
	}
	saved := e.CurrentPreset()
	if err := e.SavePreset("night"); err != nil {
		t.Fatalf("SavePreset() failed: %v", err)
	}

	_ = e.Chaos().SetKind("logistic")
	_ = e.Bio().UpdateParameter(orchestrator.ParamVolume, 0.1)

	if err := e.LoadPreset("night"); err != nil {
		t.Fatalf("LoadPreset() failed: %v", err)
	}
	if got := e.CurrentPreset(); got != saved {
		t.Errorf("CurrentPreset() = %+v, expected %+v", got, saved)
	}

	names, err := e.ListPresets()
	if err != nil || !reflect.DeepEqual(names, []string{"night"}) {
		t.Errorf("ListPresets() = %v, %v", names, err)
	}
	infos, err := e.PresetInfos()
	if err != nil || len(infos) != 1 || !infos[0].Valid || infos[0].Preset != saved {
		t.Errorf("PresetInfos() = %+v, %v", infos, err)
	}

	if err := e.DeletePreset("night"); err != nil {
		t.Fatalf("DeletePreset() failed: %v", err)
	}
	if err := e.LoadPreset("night"); !errors.Is(err, storage.ErrPresetNotFound) {
		t.Errorf("LoadPreset() after delete error = %v, expected ErrPresetNotFound", err)
	}
}

func TestApplyPresetKeepsValidFields(t *testing.T) {
	e := newTestEngine(t, testConfig())
	before := e.CurrentPreset()

	p := before
	p.Chaos.Kind = "pendulum"
	p.Chaos.Volume = 0.2
	err := e.ApplyPreset(p)
	if !errors.Is(err, orchestrator.ErrUnknownKind) {
		t.Errorf("ApplyPreset() error = %v, expected ErrUnknownKind", err)
	}

	got := e.Chaos().Settings()
	if got.Kind != before.Chaos.Kind {
		t.Errorf("Kind = %q, expected %q kept", got.Kind, before.Chaos.Kind)
	}
	if got.Volume != 0.2 {
		t.Errorf("Volume = %v, expected 0.2", got.Volume)
	}
}

func TestPresetsDegradeWhenStoreFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Presets.Backend = storage.BackendSQLite
	cfg.Presets.Path = filepath.Join(blocker, "presets.db")
	e := newTestEngine(t, cfg)

	if e.HasPresets() {
		t.Fatal("HasPresets() = true, expected degraded engine")
	}
	if err := e.SavePreset("x"); !errors.Is(err, ErrPresetsUnavailable) {
		t.Errorf("SavePreset() error = %v, expected ErrPresetsUnavailable", err)
	}
	if _, err := e.ListPresets(); !errors.Is(err, ErrPresetsUnavailable) {
		t.Errorf("ListPresets() error = %v, expected ErrPresetsUnavailable", err)
	}
	if e.Status().Presets {
		t.Error("Status().Presets = true, expected false")
	}

	// The engine itself keeps working.
	e.Start()
	run(e, 500*time.Millisecond, 10*time.Millisecond)
	if e.Status().Chaos.Stats.Ticks == 0 {
		t.Error("degraded engine did not tick")
	}
}

func TestPresetsSQLiteBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Presets.Backend = storage.BackendSQLite
	cfg.Presets.Path = filepath.Join(t.TempDir(), "presets.db")
	e := newTestEngine(t, cfg)

	if err := e.SavePreset("a"); err != nil {
		t.Fatalf("SavePreset() failed: %v", err)
	}
	if _, err := e.GetPreset("a"); err != nil {
		t.Errorf("GetPreset() failed: %v", err)
	}
}
