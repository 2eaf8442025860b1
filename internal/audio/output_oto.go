//go:build !headless

package audio

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// OtoOutput streams the engine mix to the default sound device.
type OtoOutput struct {
	engine *Engine
	ctx    *oto.Context
	player *oto.Player
	buf    []float32 // only touched by Read
	logger *log.Logger

	mu      sync.Mutex
	started bool
}

// NewOutput opens the sound device for engine.
func NewOutput(engine *Engine, logger *log.Logger) (Output, error) {
	if logger == nil {
		logger = log.Default()
	}
	op := &oto.NewContextOptions{
		SampleRate:   engine.SampleRate(),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audio: cannot open sound device: %w", err)
	}
	<-ready

	o := &OtoOutput{engine: engine, ctx: ctx, logger: logger}
	o.player = ctx.NewPlayer(o)
	return o, nil
}

// Read implements io.Reader for the oto player.
func (o *OtoOutput) Read(p []byte) (int, error) {
	o.buf = encode(o.engine, o.buf, p)
	return len(p), nil
}

// Start begins playback.
func (o *OtoOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		o.player.Play()
		o.started = true
		o.logger.Info("audio output started", "sample_rate", o.engine.SampleRate())
	}
	return nil
}

// Close stops playback and releases the player.
func (o *OtoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	o.started = false
	if err != nil {
		return fmt.Errorf("audio: cannot close player: %w", err)
	}
	return nil
}
