package tone

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

type event struct {
	time  float64
	value float64
}

// Param is a value the render thread reads every frame and the control side
// changes by scheduling instantaneous jumps on the audio clock.
type Param struct {
	bits    atomic.Uint64
	pending atomic.Int32

	mu     sync.Mutex
	events []event // sorted by time
	target float64
}

func NewParam(v float64) *Param {
	p := &Param{target: v}
	p.bits.Store(math.Float64bits(v))
	return p
}

// Value is the value as of the last rendered frame.
func (p *Param) Value() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Target is the value once every scheduled change has been applied.
func (p *Param) Target() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// SetValueAtTime schedules v to take effect at the first frame at or after
// t seconds. A second change at the same instant replaces the first.
func (p *Param) SetValueAtTime(v, t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time >= t })
	if i < len(p.events) && p.events[i].time == t {
		p.events[i].value = v
	} else {
		p.events = append(p.events, event{})
		copy(p.events[i+1:], p.events[i:])
		p.events[i] = event{time: t, value: v}
	}
	p.target = p.events[len(p.events)-1].value
	p.pending.Store(int32(len(p.events)))
}

// valueAt applies events due by t and returns the current value. Called
// from the render thread only.
func (p *Param) valueAt(t float64) float64 {
	if p.pending.Load() == 0 {
		return p.Value()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for n < len(p.events) && p.events[n].time <= t {
		p.bits.Store(math.Float64bits(p.events[n].value))
		n++
	}
	if n > 0 {
		p.events = p.events[:copy(p.events, p.events[n:])]
		p.pending.Store(int32(len(p.events)))
	}
	return p.Value()
}
