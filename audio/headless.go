package audio

import (
	"sync"
	"sync/atomic"
	"time"
)

const headlessChunkFrames = 480

// HeadlessContext renders audio without a sound card. In realtime mode
// playback pulls a chunk every chunk-duration; otherwise frames are only
// produced on Pull, which tests use to drive rendering by hand.
type HeadlessContext struct {
	realtime bool

	mu     sync.Mutex
	opened int
	live   map[*HeadlessPlayback]struct{}
	last   *HeadlessPlayback
}

func NewHeadlessContext(realtime bool) *HeadlessContext {
	return &HeadlessContext{realtime: realtime, live: make(map[*HeadlessPlayback]struct{})}
}

func (h *HeadlessContext) Name() string                   { return "headless" }
func (h *HeadlessContext) Devices() ([]DeviceInfo, error) { return []DeviceInfo{{ID: "null", Name: "null output"}}, nil }
func (h *HeadlessContext) Close()                         {}

func (h *HeadlessContext) NewPlayback(_ *DeviceInfo, config PlaybackConfig, render Renderer) (PlaybackDevice, error) {
	p := &HeadlessPlayback{ctx: h, config: config, render: render}
	h.mu.Lock()
	h.opened++
	h.live[p] = struct{}{}
	h.last = p
	h.mu.Unlock()
	return p, nil
}

// Opened counts playback devices created over the context's lifetime.
func (h *HeadlessContext) Opened() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.opened
}

// Live counts playback devices not yet closed.
func (h *HeadlessContext) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// Last returns the most recently created playback device.
func (h *HeadlessContext) Last() *HeadlessPlayback {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

type HeadlessPlayback struct {
	ctx    *HeadlessContext
	config PlaybackConfig
	render Renderer

	mu       sync.Mutex
	started  bool
	closed   bool
	frames   atomic.Uint64
	stopCh   chan struct{}
	loopDone chan struct{}
}

func (p *HeadlessPlayback) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return nil
	}
	p.started = true
	if !p.ctx.realtime {
		return nil
	}

	p.stopCh = make(chan struct{})
	p.loopDone = make(chan struct{})
	interval := time.Duration(headlessChunkFrames) * time.Second / time.Duration(p.config.SampleRate)
	buf := make([]float32, headlessChunkFrames*int(p.config.Channels))
	go func() {
		defer close(p.loopDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.render(buf)
				p.frames.Add(headlessChunkFrames)
			}
		}
	}()
	return nil
}

// Pull renders frames synchronously and returns the interleaved samples.
func (p *HeadlessPlayback) Pull(frames int) []float32 {
	buf := make([]float32, frames*int(p.config.Channels))
	p.render(buf)
	p.frames.Add(uint64(frames))
	return buf
}

func (p *HeadlessPlayback) Frames() uint64 { return p.frames.Load() }

func (p *HeadlessPlayback) Started() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

func (p *HeadlessPlayback) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *HeadlessPlayback) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	stop, done := p.stopCh, p.loopDone
	p.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	p.ctx.mu.Lock()
	delete(p.ctx.live, p)
	p.ctx.mu.Unlock()
}
