package tone

import (
	"sync"
	"sync/atomic"

	"binaural/audio"
)

// Split returns the left and right ear frequencies for a carrier and beat.
func Split(carrier, beat float64) (left, right float64) {
	return carrier - beat/2, carrier + beat/2
}

// Session is the live graph: left and right oscillators merged into
// channels 0 and 1, through one gain stage, into an output device.
type Session struct {
	clock *Clock
	left  *Oscillator
	right *Oscillator
	gain  *Param

	stopped atomic.Bool

	mu       sync.Mutex
	out      audio.PlaybackDevice
	released bool
}

func NewSession(sampleRate int, carrier, beat, volume float64) *Session {
	l, r := Split(carrier, beat)
	return &Session{
		clock: NewClock(sampleRate),
		left:  NewOscillator(l),
		right: NewOscillator(r),
		gain:  NewParam(volume),
	}
}

func (s *Session) Clock() *Clock      { return s.clock }
func (s *Session) Left() *Oscillator  { return s.left }
func (s *Session) Right() *Oscillator { return s.right }
func (s *Session) GainParam() *Param  { return s.gain }
func (s *Session) Stopped() bool      { return s.stopped.Load() }

// Frequencies returns the latest scheduled left and right frequencies.
func (s *Session) Frequencies() (left, right float64) {
	return s.left.Frequency.Target(), s.right.Frequency.Target()
}

func (s *Session) Gain() float64 { return s.gain.Target() }

// Retune schedules both oscillators at the current audio time.
func (s *Session) Retune(carrier, beat float64) {
	l, r := Split(carrier, beat)
	now := s.clock.Now()
	s.left.Frequency.SetValueAtTime(l, now)
	s.right.Frequency.SetValueAtTime(r, now)
}

func (s *Session) SetGain(v float64) {
	s.gain.SetValueAtTime(v, s.clock.Now())
}

// Render fills out with interleaved stereo frames. It must only be called
// from one goroutine at a time. A trailing half frame is zeroed.
func (s *Session) Render(out []float32) {
	frames := len(out) / 2
	if s.stopped.Load() {
		clear(out)
		return
	}
	sr := s.clock.sampleRate
	base := s.clock.Frames()
	for i := 0; i < frames; i++ {
		t := float64(base+uint64(i)) / sr
		l := s.left.next(t, sr)
		r := s.right.next(t, sr)
		g := s.gain.valueAt(t)
		out[2*i] = float32(l * g)
		out[2*i+1] = float32(r * g)
	}
	clear(out[frames*2:])
	s.clock.advance(frames)
}

func (s *Session) attach(dev audio.PlaybackDevice) {
	s.mu.Lock()
	s.out = dev
	s.mu.Unlock()
}

// Release silences the oscillators and closes the output device. Only the
// first call has any effect.
func (s *Session) Release() {
	s.stopped.Store(true)
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	out := s.out
	s.out = nil
	s.mu.Unlock()

	if out != nil {
		out.Close()
	}
}
