package audio

import (
	"context"
	"encoding/binary"
	"math"
	"sync"
	"time"
)

// Output pulls frames from an Engine and delivers them somewhere.
type Output interface {
	Start() error
	Close() error
}

// encode renders len(p)/8 stereo frames from e into p as float32LE.
func encode(e *Engine, buf []float32, p []byte) []float32 {
	samples := len(p) / 4
	if cap(buf) < samples {
		buf = make([]float32, samples)
	}
	buf = buf[:samples]
	e.Render(buf)
	for i, s := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	for i := samples * 4; i < len(p); i++ {
		p[i] = 0
	}
	return buf
}

// PacedOutput renders and discards audio at wall-clock pace. It keeps the
// engine clock moving when no sound device is available.
type PacedOutput struct {
	engine *Engine
	period time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPacedOutput creates a paced output rendering in blocks of period.
func NewPacedOutput(engine *Engine, period time.Duration) *PacedOutput {
	if period <= 0 {
		period = 10 * time.Millisecond
	}
	return &PacedOutput{engine: engine, period: period}
}

// Start begins rendering in a background goroutine. Calling Start twice is a no-op.
func (p *PacedOutput) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.period)
		defer ticker.Stop()

		start := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if lag := time.Since(start) - p.engine.Now(); lag > 0 {
					p.engine.Advance(lag)
				}
			}
		}
	}()
	return nil
}

// Close stops rendering and waits for the goroutine to exit.
func (p *PacedOutput) Close() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}
