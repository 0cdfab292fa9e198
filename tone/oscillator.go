package tone

import (
	"math"
	"sync/atomic"
)

// Clock counts rendered frames. Now is safe from any goroutine.
type Clock struct {
	sampleRate float64
	frames     atomic.Uint64
}

func NewClock(sampleRate int) *Clock {
	return &Clock{sampleRate: float64(sampleRate)}
}

func (c *Clock) SampleRate() int { return int(c.sampleRate) }

// Now is the audio time, in seconds, of the next frame to be rendered.
func (c *Clock) Now() float64 {
	return float64(c.frames.Load()) / c.sampleRate
}

func (c *Clock) Frames() uint64 { return c.frames.Load() }

func (c *Clock) advance(n int) {
	c.frames.Add(uint64(n))
}

// Oscillator is a sine generator. Phase is carried across frequency changes
// so a retune never jumps the waveform.
type Oscillator struct {
	Frequency *Param
	phase     float64 // cycles, [0, 1)
}

func NewOscillator(hz float64) *Oscillator {
	return &Oscillator{Frequency: NewParam(hz)}
}

func (o *Oscillator) next(t, sampleRate float64) float64 {
	s := math.Sin(2 * math.Pi * o.phase)
	o.phase += o.Frequency.valueAt(t) / sampleRate
	o.phase -= math.Floor(o.phase)
	return s
}
