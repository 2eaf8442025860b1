// Package visualizer taps the audio mix and keeps a magnitude spectrum for
// display. Nothing flows back into the engine.
package visualizer

import (
	"math"
	"math/cmplx"
	"sync"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/maddyblue/go-dsp/fft"
)

// SampleSource supplies recent mono samples, oldest first.
type SampleSource interface {
	Tap(dst []float64) int
}

// DefaultWindow is the number of samples per analysis.
const DefaultWindow = 1024

// Visualizer polls a source and computes its spectrum. It is safe for
// concurrent use.
type Visualizer struct {
	src        SampleSource
	sampleRate int
	window     []float64
	hann       []float64

	mu       sync.Mutex
	spectrum []float64
	peak     float64
	stop     chan struct{}
	done     chan struct{}
}

// New creates a visualizer over src. window is rounded up to a power of two.
func New(src SampleSource, sampleRate, window int) *Visualizer {
	if window <= 0 {
		window = DefaultWindow
	}
	n := 1
	for n < window {
		n <<= 1
	}
	hann := make([]float64, n)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return &Visualizer{
		src:        src,
		sampleRate: sampleRate,
		window:     make([]float64, n),
		hann:       hann,
	}
}

// Start polls the source every interval until Stop. Starting twice is a no-op.
func (v *Visualizer) Start(interval time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stop != nil {
		return
	}
	v.stop = make(chan struct{})
	v.done = make(chan struct{})
	go v.loop(interval, v.stop, v.done)
}

func (v *Visualizer) loop(interval time.Duration, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			v.Update()
		}
	}
}

// Stop ends polling and waits for the loop to exit.
func (v *Visualizer) Stop() {
	v.mu.Lock()
	stop, done := v.stop, v.done
	v.stop, v.done = nil, nil
	v.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// Running reports whether the poll loop is active.
func (v *Visualizer) Running() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stop != nil
}

// Update reads the source once and recomputes the spectrum.
// Only one goroutine may call Update at a time.
func (v *Visualizer) Update() {
	n := v.src.Tap(v.window)
	for i := n; i < len(v.window); i++ {
		v.window[i] = 0
	}

	peak := 0.0
	data := make([]float64, len(v.window))
	for i, s := range v.window {
		peak = math.Max(peak, math.Abs(s))
		data[i] = s * v.hann[i]
	}

	result := fft.FFTReal(data)
	mags := make([]float64, len(result)/2+1)
	for i, c := range result[:len(mags)] {
		mags[i] = cmplx.Abs(c) / float64(len(data))
	}

	v.mu.Lock()
	v.spectrum = mags
	v.peak = peak
	v.mu.Unlock()
}

// Spectrum returns a copy of the latest magnitude spectrum. Bin i covers
// i·sampleRate/window Hz.
func (v *Visualizer) Spectrum() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]float64(nil), v.spectrum...)
}

// Peak returns the absolute peak of the latest window.
func (v *Visualizer) Peak() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.peak
}

// BinFrequency returns the centre frequency of spectrum bin i.
func (v *Visualizer) BinFrequency(i int) float64 {
	return float64(i) * float64(v.sampleRate) / float64(len(v.window))
}

// PeakFrequency returns the frequency of the strongest non-DC bin.
func (v *Visualizer) PeakFrequency() float64 {
	spec := v.Spectrum()
	best, bestMag := 0, 0.0
	for i := 1; i < len(spec); i++ {
		if spec[i] > bestMag {
			best, bestMag = i, spec[i]
		}
	}
	return v.BinFrequency(best)
}

// Bands folds the spectrum into n logarithmic bands between 40 Hz and the
// Nyquist frequency, normalized so the loudest band is 1. n <= 0 returns nil.
func (v *Visualizer) Bands(n int) []float64 {
	if n <= 0 {
		return nil
	}
	spec := v.Spectrum()
	bands := make([]float64, n)
	if len(spec) < 2 {
		return bands
	}

	lo, hi := 40.0, float64(v.sampleRate)/2
	ratio := math.Pow(hi/lo, 1/float64(n))
	for i := 1; i < len(spec); i++ {
		f := v.BinFrequency(i)
		if f < lo {
			continue
		}
		b := int(math.Log(f/lo) / math.Log(ratio))
		if b >= n {
			b = n - 1
		}
		bands[b] = math.Max(bands[b], spec[i])
	}

	top := 0.0
	for _, b := range bands {
		top = math.Max(top, b)
	}
	if top > 0 {
		for i := range bands {
			bands[i] /= top
		}
	}
	return bands
}

// Plot renders the band levels as an ASCII line chart. A non-positive width
// or a negative height renders nothing.
func (v *Visualizer) Plot(width, height int, caption string) string {
	if height < 0 {
		return ""
	}
	bands := v.Bands(width)
	if len(bands) == 0 {
		return ""
	}
	return asciigraph.Plot(bands,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Caption(caption),
	)
}
