package voice

import (
	"sync"
	"testing"
	"time"
)

// fakeBackend records calls and hands out sequential nodes.
type fakeBackend struct {
	mu        sync.Mutex
	next      Node
	live      map[Node]bool
	refuse    bool
	ramps     []float64
	connected map[Node]Node
	stops     map[Node]time.Duration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		live:      make(map[Node]bool),
		connected: make(map[Node]Node),
		stops:     make(map[Node]time.Duration),
	}
}

func (f *fakeBackend) alloc() Node {
	f.next++
	f.live[f.next] = true
	return f.next
}

func (f *fakeBackend) Now() time.Duration { return 0 }

func (f *fakeBackend) AcquireVoice(Request) (Node, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refuse {
		return 0, false
	}
	return f.alloc(), true
}

func (f *fakeBackend) AcquireEnvelope(Node, float64) (Node, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alloc(), true
}

func (f *fakeBackend) SetLevel(Node, time.Duration, float64) {}

func (f *fakeBackend) RampLinear(_ Node, _ time.Duration, level float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ramps = append(f.ramps, level)
}

func (f *fakeBackend) RampExponential(_ Node, _ time.Duration, level float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ramps = append(f.ramps, level)
}

func (f *fakeBackend) Connect(src, dst Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected[src] = dst
}

func (f *fakeBackend) StopAt(v Node, at time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops[v] = at
}

func (f *fakeBackend) ReleaseVoice(v Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, v)
}

func (f *fakeBackend) ReleaseEnvelope(e Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, e)
}

func (f *fakeBackend) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

func sineRequest() Request {
	return Request{Waveform: Sine, Frequency: 440, Amplitude: 0.5, Duration: time.Second}
}

func TestAcquireToCapacity(t *testing.T) {
	pool := NewPool(newFakeBackend(), map[Waveform]int{Sine: 3}, nil)

	var handles []Handle
	for i := 0; i < 3; i++ {
		h, ok := pool.Acquire("a", sineRequest(), 0)
		if !ok {
			t.Fatalf("Acquire() #%d failed below capacity", i)
		}
		handles = append(handles, h)
	}

	if _, ok := pool.Acquire("a", sineRequest(), 0); ok {
		t.Fatal("Acquire() beyond capacity should fail")
	}

	if !pool.Release(handles[1]) {
		t.Fatal("Release() of a live handle should succeed")
	}
	if _, ok := pool.Acquire("b", sineRequest(), 0); !ok {
		t.Fatal("Acquire() after Release should succeed")
	}
	if got := pool.Active(Sine); got != 3 {
		t.Errorf("Active(Sine) = %d, expected 3", got)
	}
}

func TestDoubleReleaseIsNoop(t *testing.T) {
	backend := newFakeBackend()
	pool := NewPool(backend, map[Waveform]int{Sine: 2}, nil)

	h1, _ := pool.Acquire("a", sineRequest(), 0)
	h2, _ := pool.Acquire("a", sineRequest(), 0)

	if !pool.Release(h1) {
		t.Fatal("first Release() should succeed")
	}
	if pool.Release(h1) {
		t.Error("second Release() should be a no-op")
	}

	// The slot is reused with a new generation; the stale handle must not free it.
	h3, ok := pool.Acquire("b", sineRequest(), 0)
	if !ok {
		t.Fatal("Acquire() into freed slot failed")
	}
	if h3.ID.Slot != h1.ID.Slot || h3.ID.Generation == h1.ID.Generation {
		t.Errorf("reused handle = %+v, expected same slot as %+v with new generation", h3.ID, h1.ID)
	}
	if pool.Release(h1) {
		t.Error("stale Release() should not free a reused slot")
	}
	if got := pool.Active(Sine); got != 2 {
		t.Errorf("Active(Sine) = %d, expected 2", got)
	}

	pool.Release(h2)
	pool.Release(h3)
	if backend.liveCount() != 0 {
		t.Errorf("backend has %d live nodes after releasing everything, expected 0", backend.liveCount())
	}
}

func TestCapacityIsPerKind(t *testing.T) {
	pool := NewPool(newFakeBackend(), map[Waveform]int{Sine: 1, Square: 1}, nil)

	if _, ok := pool.Acquire("a", sineRequest(), 0); !ok {
		t.Fatal("Acquire(Sine) failed")
	}
	sq := sineRequest()
	sq.Waveform = Square
	if _, ok := pool.Acquire("b", sq, 0); !ok {
		t.Fatal("Acquire(Square) should not be blocked by Sine usage")
	}
	tri := sineRequest()
	tri.Waveform = Triangle
	if _, ok := pool.Acquire("b", tri, 0); ok {
		t.Error("Acquire() of a kind without capacity should fail")
	}
}

func TestReleaseOwner(t *testing.T) {
	backend := newFakeBackend()
	pool := NewPool(backend, map[Waveform]int{Sine: 4, Square: 4}, nil)

	pool.Acquire("chaos", sineRequest(), 0)
	pool.Acquire("chaos", Request{Waveform: Square}, 0)
	keep, _ := pool.Acquire("bio", sineRequest(), 0)

	if n := pool.ReleaseOwner("chaos"); n != 2 {
		t.Errorf("ReleaseOwner() = %d, expected 2", n)
	}
	if pool.Owned("chaos") != 0 {
		t.Error("owner still holds handles after ReleaseOwner()")
	}
	if pool.Owned("bio") != 1 {
		t.Error("ReleaseOwner() touched another owner's handles")
	}
	if !pool.Release(keep) {
		t.Error("other owner's handle should still be live")
	}
}

func TestExpire(t *testing.T) {
	pool := NewPool(newFakeBackend(), map[Waveform]int{Sine: 4}, nil)

	early, _ := pool.Acquire("a", sineRequest(), 100*time.Millisecond)
	pool.Acquire("a", sineRequest(), 500*time.Millisecond)
	pool.Acquire("a", sineRequest(), 0)

	if n := pool.Expire(50 * time.Millisecond); n != 0 {
		t.Errorf("Expire(50ms) = %d, expected 0", n)
	}
	if n := pool.Expire(100 * time.Millisecond); n != 1 {
		t.Errorf("Expire(100ms) = %d, expected 1", n)
	}
	if pool.Release(early) {
		t.Error("expired handle should already be released")
	}
	if n := pool.Expire(time.Hour); n != 1 {
		t.Errorf("Expire(1h) = %d, expected 1 (no deferred release on the third)", n)
	}
	if got := pool.Active(Sine); got != 1 {
		t.Errorf("Active(Sine) = %d, expected 1", got)
	}
}

func TestForwardingRequiresLiveHandle(t *testing.T) {
	backend := newFakeBackend()
	pool := NewPool(backend, map[Waveform]int{Sine: 1}, nil)

	h, _ := pool.Acquire("a", sineRequest(), 0)
	if backend.connected[h.Voice] != h.Envelope {
		t.Error("Acquire() should connect the voice into its envelope")
	}
	if !pool.RampLinear(h, 10*time.Millisecond, 0.5) || !pool.RampExponential(h, time.Second, 0.001) {
		t.Error("ramps on a live handle should be forwarded")
	}
	if !pool.StopAt(h, 2*time.Second) || backend.stops[h.Voice] != 2*time.Second {
		t.Error("StopAt() should be forwarded for a live handle")
	}

	pool.Release(h)
	if pool.SetLevel(h, 0, 1) || pool.RampLinear(h, 0, 1) || pool.StopAt(h, 0) {
		t.Error("operations on a released handle should be rejected")
	}
	if len(backend.ramps) != 2 {
		t.Errorf("backend saw %d ramps, expected 2", len(backend.ramps))
	}
}

func TestBackendRefusal(t *testing.T) {
	backend := newFakeBackend()
	backend.refuse = true
	pool := NewPool(backend, map[Waveform]int{Sine: 1}, nil)

	if _, ok := pool.Acquire("a", sineRequest(), 0); ok {
		t.Error("Acquire() should fail when the backend refuses")
	}
	if pool.Active(Sine) != 0 {
		t.Error("refused acquisition must not occupy a slot")
	}
}

func TestConcurrentAcquireRespectsCapacity(t *testing.T) {
	pool := NewPool(newFakeBackend(), map[Waveform]int{Sine: 5}, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := pool.Acquire("a", sineRequest(), 0); ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != 5 {
		t.Errorf("granted %d handles concurrently, expected 5", granted)
	}
}

func TestParseWaveform(t *testing.T) {
	for _, w := range Waveforms {
		got, err := ParseWaveform(w.String())
		if err != nil || got != w {
			t.Errorf("ParseWaveform(%q) = %v, %v, expected %v", w.String(), got, err, w)
		}
	}
	if _, err := ParseWaveform("noise"); err == nil {
		t.Error("ParseWaveform() of unknown name should fail")
	}
}

func TestWaveformText(t *testing.T) {
	for _, w := range Waveforms {
		text, err := w.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) failed: %v", w, err)
		}
		var got Waveform
		if err := got.UnmarshalText(text); err != nil || got != w {
			t.Errorf("UnmarshalText(%s) = %v, %v, expected %v", text, got, err, w)
		}
	}
	if _, err := Waveform(9).MarshalText(); err == nil {
		t.Error("MarshalText() of invalid waveform should fail")
	}
}
