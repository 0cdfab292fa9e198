package session

import (
	"errors"
	"testing"
	"time"

	"binaural/audio"
	"binaural/preset"
	"binaural/settings"
	"binaural/tone"
)

type call struct {
	op      string
	carrier float64
	beat    float64
	volume  float64
}

type fakeEngine struct {
	calls    []call
	startErr error
}

func (f *fakeEngine) Start(carrier, beat, volume float64) error {
	f.calls = append(f.calls, call{op: "start", carrier: carrier, beat: beat, volume: volume})
	return f.startErr
}

func (f *fakeEngine) UpdateFrequencies(carrier, beat float64) {
	f.calls = append(f.calls, call{op: "freq", carrier: carrier, beat: beat})
}

func (f *fakeEngine) UpdateVolume(volume float64) {
	f.calls = append(f.calls, call{op: "volume", volume: volume})
}

func (f *fakeEngine) Stop() {
	f.calls = append(f.calls, call{op: "stop"})
}

func (f *fakeEngine) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func newTestController() (*Controller, *fakeEngine, *settings.MemoryMedium) {
	m := settings.NewMemoryMedium()
	fe := &fakeEngine{}
	return New(settings.Load(m), fe), fe, m
}

func TestStartRefusedWithoutBeat(t *testing.T) {
	c, fe, _ := newTestController()
	if c.Start() {
		t.Fatal("Start succeeded with no beat configured")
	}
	if c.State() != Idle {
		t.Errorf("state = %v, want Idle", c.State())
	}
	if len(fe.calls) != 0 {
		t.Errorf("engine calls = %v, want none", fe.calls)
	}
}

func TestStartUsesResolvedBeat(t *testing.T) {
	c, fe, _ := newTestController()
	if err := c.Apply(PresetChange{Name: "Alfa"}); err != nil {
		t.Fatal(err)
	}
	if !c.Start() {
		t.Fatal("Start refused")
	}
	if c.State() != Playing {
		t.Errorf("state = %v, want Playing", c.State())
	}
	want := call{op: "start", carrier: 400, beat: 10, volume: 0.1}
	if len(fe.calls) != 1 || fe.calls[0] != want {
		t.Errorf("calls = %+v, want [%+v]", fe.calls, want)
	}
}

func TestStartWhilePlayingIsNoop(t *testing.T) {
	c, fe, _ := newTestController()
	c.Apply(CustomBeatChange{Hz: 4})
	c.Start()
	if c.Start() {
		t.Error("second Start reported success")
	}
	if fe.count("start") != 1 {
		t.Errorf("engine started %d times, want 1", fe.count("start"))
	}
	if c.State() != Playing {
		t.Errorf("state = %v, want Playing", c.State())
	}
}

func TestStartEngineErrorStaysIdle(t *testing.T) {
	c, fe, _ := newTestController()
	fe.startErr = errors.New("no sound card")
	c.Apply(PresetChange{Name: "Beta"})
	if c.Start() {
		t.Fatal("Start reported success despite engine error")
	}
	if c.State() != Idle {
		t.Errorf("state = %v, want Idle", c.State())
	}
}

func TestStopWhenIdle(t *testing.T) {
	c, fe, _ := newTestController()
	c.Stop()
	if c.State() != Idle {
		t.Errorf("state = %v, want Idle", c.State())
	}
	if fe.count("stop") != 1 {
		t.Errorf("stop calls = %d, want 1 (unconditional)", fe.count("stop"))
	}
}

func TestStopFromPlaying(t *testing.T) {
	c, _, _ := newTestController()
	c.Apply(PresetChange{Name: "Delta"})
	c.Start()
	c.Stop()
	if c.State() != Idle {
		t.Errorf("state = %v, want Idle", c.State())
	}
}

func TestCarrierChangeWhilePlaying(t *testing.T) {
	c, fe, m := newTestController()
	c.Apply(PresetChange{Name: "Alfa"})
	c.Start()

	if err := c.Apply(CarrierChange{Hz: 500}); err != nil {
		t.Fatal(err)
	}
	last := fe.calls[len(fe.calls)-1]
	if last != (call{op: "freq", carrier: 500, beat: 10}) {
		t.Errorf("last call = %+v", last)
	}
	if v, _ := m.Get(settings.KeyCarrier); v != "500" {
		t.Errorf("persisted carrier = %q, want 500", v)
	}
	snap := c.Snapshot()
	if snap.LeftHz != 495 || snap.RightHz != 505 {
		t.Errorf("snapshot L/R = %v/%v, want 495/505", snap.LeftHz, snap.RightHz)
	}
}

func TestChangesWhileIdleOnlyPersist(t *testing.T) {
	c, fe, m := newTestController()
	c.Apply(CarrierChange{Hz: 250})
	c.Apply(PresetChange{Name: "Gamma"})
	c.Apply(VolumeChange{Volume: 0.6})

	if len(fe.calls) != 0 {
		t.Errorf("engine calls while idle: %+v", fe.calls)
	}
	for key, want := range map[string]string{
		settings.KeyCarrier: "250",
		settings.KeyPreset:  "Gamma",
		settings.KeyVolume:  "0.6",
	} {
		if got, _ := m.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestVolumeChangeWhilePlaying(t *testing.T) {
	c, fe, m := newTestController()
	c.Apply(PresetChange{Name: "Teta"})
	c.Start()
	before := len(fe.calls)

	c.Apply(VolumeChange{Volume: 0.3})

	got := fe.calls[before:]
	if len(got) != 1 || got[0] != (call{op: "volume", volume: 0.3}) {
		t.Errorf("calls after volume change = %+v, want one volume update", got)
	}
	if v, _ := m.Get(settings.KeyVolume); v != "0.3" {
		t.Errorf("persisted volume = %q", v)
	}
}

func TestOverridePrecedence(t *testing.T) {
	c, fe, _ := newTestController()
	c.Apply(PresetChange{Name: "Gamma"})
	c.Apply(CustomBeatChange{Hz: 7.83})
	if b := c.Snapshot().Beat; b != 7.83 {
		t.Errorf("beat = %v, want custom 7.83", b)
	}
	if _, ok := c.Snapshot().Source.PresetName(); ok {
		t.Error("preset selection survived a custom value")
	}

	c.Apply(PresetChange{Name: "Delta"})
	if b := c.Snapshot().Beat; b != 2 {
		t.Errorf("beat = %v, want preset 2", b)
	}

	c.Start()
	c.Apply(CustomBeatChange{Hz: 12})
	last := fe.calls[len(fe.calls)-1]
	if last != (call{op: "freq", carrier: 400, beat: 12}) {
		t.Errorf("last call = %+v, want retune with beat 12", last)
	}
}

func TestClearBeatWhilePlayingCollapsesToCarrier(t *testing.T) {
	c, fe, _ := newTestController()
	c.Apply(PresetChange{Name: "Alfa"})
	c.Start()
	c.Apply(ClearBeatChange{})

	if c.State() != Playing {
		t.Errorf("state = %v, want Playing", c.State())
	}
	last := fe.calls[len(fe.calls)-1]
	if last != (call{op: "freq", carrier: 400, beat: 0}) {
		t.Errorf("last call = %+v", last)
	}
}

func TestApplyRejectsInvalid(t *testing.T) {
	c, fe, m := newTestController()
	bad := []Change{
		CarrierChange{Hz: 0},
		PresetChange{Name: "Omega"},
		VolumeChange{Volume: 1.5},
		VolumeChange{Volume: -0.1},
		nil,
	}
	for _, ch := range bad {
		if err := c.Apply(ch); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Apply(%#v) err = %v, want ErrInvalidValue", ch, err)
		}
	}
	if len(fe.calls) != 0 {
		t.Errorf("engine calls = %+v", fe.calls)
	}
	for _, key := range []string{settings.KeyCarrier, settings.KeyPreset, settings.KeyVolume} {
		if _, ok := m.Get(key); ok {
			t.Errorf("%s persisted after rejected change", key)
		}
	}
}

func TestSubscribe(t *testing.T) {
	c, _, _ := newTestController()
	ch := c.Subscribe()

	c.Apply(CarrierChange{Hz: 300})
	c.Apply(PresetChange{Name: "Alfa"})
	c.Start()

	select {
	case snap := <-ch:
		if snap.State != Playing || snap.Carrier != 300 || snap.Beat != 10 {
			t.Errorf("latest snapshot = %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}

	c.Stop()
	select {
	case snap := <-ch:
		if snap.State != Idle {
			t.Errorf("state = %v, want Idle", snap.State)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after Stop")
	}
}

func TestToggle(t *testing.T) {
	c, _, _ := newTestController()
	c.Apply(PresetChange{Name: "Beta"})
	if got := c.Toggle(); got != Playing {
		t.Errorf("Toggle = %v, want Playing", got)
	}
	if got := c.Toggle(); got != Idle {
		t.Errorf("Toggle = %v, want Idle", got)
	}
}

func TestRestoreAcrossRestart(t *testing.T) {
	m := settings.NewMemoryMedium()
	c := New(settings.Load(m), &fakeEngine{})
	c.Apply(CarrierChange{Hz: 320})
	c.Apply(CustomBeatChange{Hz: 5.5})
	c.Apply(VolumeChange{Volume: 0.2})

	fe := &fakeEngine{}
	c2 := New(settings.Load(m), fe)
	c2.Start()
	want := call{op: "start", carrier: 320, beat: 5.5, volume: 0.2}
	if len(fe.calls) != 1 || fe.calls[0] != want {
		t.Errorf("calls = %+v, want [%+v]", fe.calls, want)
	}
}

func TestWithToneEngine(t *testing.T) {
	ctx := audio.NewHeadlessContext(false)
	eng := tone.NewEngine(ctx, tone.Config{SampleRate: 48000})
	c := New(settings.Load(settings.NewMemoryMedium()), eng)

	c.Apply(PresetChange{Name: "Alfa"})
	c.Start()
	c.Start()
	sess := eng.Session()
	if sess == nil || ctx.Live() != 1 {
		t.Fatalf("session=%v live=%d, want one live session", sess, ctx.Live())
	}

	c.Apply(CarrierChange{Hz: 500})
	if eng.Session() != sess {
		t.Error("carrier change restarted the session")
	}
	if l, r := sess.Frequencies(); l != 495 || r != 505 {
		t.Errorf("L/R = %v/%v, want 495/505", l, r)
	}

	c.Stop()
	if eng.Active() || ctx.Live() != 0 {
		t.Error("session still alive after Stop")
	}
	if _, ok := c.Snapshot().Source.CustomHz(); ok {
		t.Error("unexpected custom source")
	}
	if c.Snapshot().Source != preset.FromPreset("Alfa") {
		t.Errorf("source = %v", c.Snapshot().Source)
	}
}
