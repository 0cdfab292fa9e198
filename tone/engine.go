package tone

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"binaural/audio"
)

var (
	ErrActive         = errors.New("tone session already active")
	ErrNoBeat         = errors.New("no beat frequency configured")
	ErrInvalidCarrier = errors.New("invalid carrier frequency")
)

type Config struct {
	SampleRate int
	Device     *audio.DeviceInfo // nil for the system default
}

// Engine owns at most one Session at a time.
type Engine struct {
	ctx audio.Context
	cfg Config

	mu      sync.Mutex
	session *Session
}

func NewEngine(ctx audio.Context, cfg Config) *Engine {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = audio.DefaultSampleRate
	}
	return &Engine{ctx: ctx, cfg: cfg}
}

func (e *Engine) SampleRate() int { return e.cfg.SampleRate }

// Start opens an output device and begins playing carrier ∓ beat/2.
func (e *Engine) Start(carrier, beat, volume float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return ErrActive
	}
	if beat == 0 || math.IsNaN(beat) || math.IsInf(beat, 0) {
		return ErrNoBeat
	}
	if carrier <= 0 || math.IsNaN(carrier) || math.IsInf(carrier, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidCarrier, carrier)
	}

	sess := NewSession(e.cfg.SampleRate, carrier, beat, volume)
	dev, err := e.ctx.NewPlayback(e.cfg.Device, audio.PlaybackConfig{
		SampleRate: uint32(e.cfg.SampleRate),
		Channels:   audio.StereoChannels,
	}, sess.Render)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	sess.attach(dev)
	if err := dev.Start(); err != nil {
		sess.Release()
		return fmt.Errorf("starting output: %w", err)
	}

	e.session = sess
	return nil
}

// UpdateFrequencies retunes the live session. No-op when idle.
func (e *Engine) UpdateFrequencies(carrier, beat float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.session.Retune(carrier, beat)
	}
}

// UpdateVolume sets the live session's gain. No-op when idle.
func (e *Engine) UpdateVolume(volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.session.SetGain(volume)
	}
}

// Stop releases the live session, if any.
func (e *Engine) Stop() {
	e.mu.Lock()
	sess := e.session
	e.session = nil
	e.mu.Unlock()

	if sess != nil {
		sess.Release()
	}
}

func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// Session returns the live session, or nil.
func (e *Engine) Session() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}
