package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process, created on first playback and
// fixed to that sample rate. oto has no way to destroy it, so Close closes
// the players still open and suspends output.
type otoContext struct {
	mu         sync.Mutex
	ctx        *oto.Context
	sampleRate uint32
	channels   uint32
	live       map[*otoPlayback]struct{}
}

func newOtoContext() Context {
	return &otoContext{live: make(map[*otoPlayback]struct{})}
}

func (o *otoContext) Name() string { return "oto" }

// oto has no device selection; it always plays on the system default.
func (o *otoContext) Devices() ([]DeviceInfo, error) { return nil, nil }

func (o *otoContext) NewPlayback(_ *DeviceInfo, config PlaybackConfig, render Renderer) (PlaybackDevice, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   int(config.SampleRate),
			ChannelCount: int(config.Channels),
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			return nil, fmt.Errorf("oto: %w", err)
		}
		<-ready
		o.ctx = ctx
		o.sampleRate = config.SampleRate
		o.channels = config.Channels
	} else if o.sampleRate != config.SampleRate || o.channels != config.Channels {
		return nil, fmt.Errorf("oto: context is fixed at %d Hz/%d ch, got %d Hz/%d ch",
			o.sampleRate, o.channels, config.SampleRate, config.Channels)
	}

	src := &otoSource{render: render, channels: int(config.Channels)}
	p := &otoPlayback{ctx: o, player: o.ctx.NewPlayer(src)}
	o.live[p] = struct{}{}
	return p, nil
}

func (o *otoContext) Close() {
	o.mu.Lock()
	players := make([]*otoPlayback, 0, len(o.live))
	for p := range o.live {
		players = append(players, p)
	}
	ctx := o.ctx
	o.mu.Unlock()

	for _, p := range players {
		p.Close()
	}
	if ctx != nil {
		ctx.Suspend()
	}
}

func (o *otoContext) forget(p *otoPlayback) {
	o.mu.Lock()
	delete(o.live, p)
	o.mu.Unlock()
}

// otoSource adapts a Renderer to the io.Reader oto pulls from. Reads are
// trimmed to whole frames so the renderer never sees a partial one.
type otoSource struct {
	render   Renderer
	channels int
	samples  []float32
}

func (s *otoSource) Read(p []byte) (int, error) {
	n := len(p) / 4
	if s.channels > 1 {
		n -= n % s.channels
	}
	if cap(s.samples) < n {
		s.samples = make([]float32, n)
	}
	s.samples = s.samples[:n]
	s.render(s.samples)
	for i, v := range s.samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return n * 4, nil
}

type otoPlayback struct {
	ctx    *otoContext
	player *oto.Player
	once   sync.Once
}

func (p *otoPlayback) Start() error {
	p.player.Play()
	return p.player.Err()
}

func (p *otoPlayback) Close() {
	p.once.Do(func() {
		p.player.Pause()
		p.player.Close()
		p.ctx.forget(p)
	})
}
