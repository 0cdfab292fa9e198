package audio

import "strings"

const (
	DefaultSampleRate = 48000
	StereoChannels    = 2
)

// Bluetooth headsets that fall back to the hands-free profile play mono,
// which collapses the two ear tones into one.
var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
	"handsfree", "hands-free", "headset_head_unit",
}

func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Renderer fills out with interleaved float32 frames in [-1, 1]. It runs on
// the backend's audio thread.
type Renderer func(out []float32)

type PlaybackConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

// Context is a process-wide connection to an audio backend.
type Context interface {
	Name() string
	Devices() ([]DeviceInfo, error)
	NewPlayback(device *DeviceInfo, config PlaybackConfig, render Renderer) (PlaybackDevice, error)
	Close()
}

// PlaybackDevice is one output stream. Close stops it and releases it; it is
// safe to call more than once.
type PlaybackDevice interface {
	Start() error
	Close()
}

// FindDevice returns the device whose name matches, or nil.
func FindDevice(ctx Context, name string) *DeviceInfo {
	if name == "" {
		return nil
	}
	devices, err := ctx.Devices()
	if err != nil {
		return nil
	}
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i]
		}
	}
	return nil
}
