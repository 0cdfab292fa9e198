package session

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"binaural/log"
	"binaural/preset"
	"binaural/settings"
	"binaural/tone"
)

var ErrInvalidValue = errors.New("invalid parameter value")

// Engine is the audio side the controller drives.
type Engine interface {
	Start(carrier, beat, volume float64) error
	UpdateFrequencies(carrier, beat float64)
	UpdateVolume(volume float64)
	Stop()
}

// Controller is the Idle/Playing state machine. Every parameter change goes
// through Apply, which always persists and only touches the engine while
// playing. All methods are safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	store    *settings.Store
	engine   Engine
	state    State
	started  time.Time
	sessions int

	subMu sync.Mutex
	subs  []chan Snapshot
}

func New(store *settings.Store, engine Engine) *Controller {
	return &Controller{store: store, engine: engine}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins playback with the stored parameters. It reports whether the
// controller is now playing because of this call; a call while already
// playing, or with no beat configured, is refused.
func (c *Controller) Start() bool {
	c.mu.Lock()
	ok := c.startLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if ok {
		c.publish(snap)
	}
	return ok
}

func (c *Controller) startLocked() bool {
	if c.state == Playing {
		log.ToneRefused("already playing")
		return false
	}
	beat := c.store.Beat()
	if beat == 0 {
		log.ToneRefused("no beat configured")
		return false
	}
	carrier, volume := c.store.Carrier(), c.store.Volume()
	if err := c.engine.Start(carrier, beat, volume); err != nil {
		log.Errorf("tone start failed: %v", err)
		return false
	}

	c.state = Playing
	c.started = time.Now()
	c.sessions++
	l, r := tone.Split(carrier, beat)
	log.ToneStart(c.toneLocked(), l, r)
	return true
}

// Stop halts playback. Safe to call in either state.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.engine.Stop()
	wasPlaying := c.state == Playing
	c.state = Idle
	if wasPlaying {
		log.ToneStop(c.toneLocked(), time.Since(c.started))
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if wasPlaying {
		c.publish(snap)
	}
}

// Toggle starts when idle and stops when playing, returning the new state.
func (c *Controller) Toggle() State {
	if c.State() == Playing {
		c.Stop()
	} else {
		c.Start()
	}
	return c.State()
}

// Apply validates and records one change. The new value is always
// persisted; while playing it is also pushed to the engine.
func (c *Controller) Apply(ch Change) error {
	if err := validate(ch); err != nil {
		return err
	}

	c.mu.Lock()
	switch ch := ch.(type) {
	case CarrierChange:
		c.store.SetCarrier(ch.Hz)
	case PresetChange:
		c.store.SetSource(preset.FromPreset(ch.Name))
	case CustomBeatChange:
		c.store.SetSource(preset.Custom(ch.Hz))
	case ClearBeatChange:
		c.store.SetSource(preset.None())
	case VolumeChange:
		c.store.SetVolume(ch.Volume)
	}

	playing := c.state == Playing
	if playing {
		if _, ok := ch.(VolumeChange); ok {
			c.engine.UpdateVolume(c.store.Volume())
		} else {
			c.engine.UpdateFrequencies(c.store.Carrier(), c.store.Beat())
		}
	}
	log.ParamChange(ch.field(), ch.value(), playing)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return nil
}

func validate(ch Change) error {
	switch ch := ch.(type) {
	case CarrierChange:
		if !settings.ValidFrequency(ch.Hz) {
			return fmt.Errorf("%w: carrier %v", ErrInvalidValue, ch.Hz)
		}
	case PresetChange:
		if _, ok := preset.Lookup(ch.Name); !ok {
			return fmt.Errorf("%w: unknown preset %q", ErrInvalidValue, ch.Name)
		}
	case CustomBeatChange:
		if math.IsNaN(ch.Hz) || math.IsInf(ch.Hz, 0) {
			return fmt.Errorf("%w: beat %v", ErrInvalidValue, ch.Hz)
		}
	case VolumeChange:
		if math.IsNaN(ch.Volume) || ch.Volume < 0 || ch.Volume > 1 {
			return fmt.Errorf("%w: volume %v", ErrInvalidValue, ch.Volume)
		}
	case ClearBeatChange:
	case nil:
		return fmt.Errorf("%w: nil change", ErrInvalidValue)
	default:
		return fmt.Errorf("%w: unsupported change %T", ErrInvalidValue, ch)
	}
	return nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	carrier, beat := c.store.Carrier(), c.store.Beat()
	l, r := tone.Split(carrier, beat)
	return Snapshot{
		State:    c.state,
		Carrier:  carrier,
		Source:   c.store.Source(),
		Beat:     beat,
		Volume:   c.store.Volume(),
		LeftHz:   l,
		RightHz:  r,
		Sessions: c.sessions,
	}
}

func (c *Controller) toneLocked() log.Tone {
	return log.Tone{
		CarrierHz: c.store.Carrier(),
		BeatHz:    c.store.Beat(),
		Source:    c.store.Source().String(),
		Volume:    c.store.Volume(),
	}
}

// Subscribe returns a channel that receives a snapshot after every change.
// Slow readers only see the latest one.
func (c *Controller) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	c.subMu.Lock()
	c.subs = append(c.subs, ch)
	c.subMu.Unlock()
	return ch
}

func (c *Controller) publish(s Snapshot) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}
