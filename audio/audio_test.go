package audio

import (
	"testing"
	"time"
)

func TestIsBluetooth(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"AirPods Pro", true},
		{"bluez_output.headset_head_unit", true},
		{"Built-in Audio Analog Stereo", false},
		{"HDMI / DisplayPort", false},
	}
	for _, tt := range tests {
		if got := IsBluetooth(tt.name); got != tt.want {
			t.Errorf("IsBluetooth(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPickerKey(t *testing.T) {
	cursor, act := pickerKey(0, 3, []byte{0x1b, '[', 'B'})
	if cursor != 1 || act != pickerNone {
		t.Fatalf("down: cursor=%d act=%d", cursor, act)
	}
	cursor, _ = pickerKey(cursor, 3, []byte{'j'})
	cursor, _ = pickerKey(cursor, 3, []byte{'j'})
	if cursor != 2 {
		t.Errorf("cursor moved past end: %d", cursor)
	}
	cursor, _ = pickerKey(cursor, 3, []byte{0x1b, '[', 'A'})
	if cursor != 1 {
		t.Errorf("up: cursor=%d", cursor)
	}
	if _, act := pickerKey(cursor, 3, []byte{13}); act != pickerConfirm {
		t.Error("enter did not confirm")
	}
	if _, act := pickerKey(cursor, 3, []byte{3}); act != pickerAbort {
		t.Error("ctrl+c did not abort")
	}
}

func TestNewContextUnknown(t *testing.T) {
	if _, err := NewContext("jack"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestHeadlessPull(t *testing.T) {
	ctx := NewHeadlessContext(false)
	calls := 0
	dev, err := ctx.NewPlayback(nil, PlaybackConfig{SampleRate: 48000, Channels: 2}, func(out []float32) {
		calls++
		for i := range out {
			out[i] = 0.5
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Start(); err != nil {
		t.Fatal(err)
	}

	hp := ctx.Last()
	buf := hp.Pull(64)
	if len(buf) != 128 {
		t.Errorf("len = %d, want 128 interleaved samples", len(buf))
	}
	if calls != 1 || hp.Frames() != 64 {
		t.Errorf("calls=%d frames=%d", calls, hp.Frames())
	}

	if ctx.Live() != 1 {
		t.Errorf("live = %d, want 1", ctx.Live())
	}
	dev.Close()
	dev.Close()
	if ctx.Live() != 0 || ctx.Opened() != 1 {
		t.Errorf("after close: live=%d opened=%d", ctx.Live(), ctx.Opened())
	}
}

func TestHeadlessRealtime(t *testing.T) {
	ctx := NewHeadlessContext(true)
	dev, err := ctx.NewPlayback(nil, PlaybackConfig{SampleRate: 48000, Channels: 2}, func([]float32) {})
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Start(); err != nil {
		t.Fatal(err)
	}

	hp := ctx.Last()
	deadline := time.After(time.Second)
	for hp.Frames() == 0 {
		select {
		case <-deadline:
			t.Fatal("realtime playback rendered nothing")
		case <-time.After(5 * time.Millisecond):
		}
	}
	dev.Close()
	if !hp.Closed() {
		t.Error("playback not closed")
	}
}
