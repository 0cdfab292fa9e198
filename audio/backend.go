package audio

import (
	"fmt"
	"runtime"
)

var Backends = []string{"auto", "pulse", "malgo", "oto", "headless"}

// NewContext opens the named backend. "auto" is PulseAudio on linux and
// miniaudio elsewhere.
func NewContext(backend string) (Context, error) {
	switch backend {
	case "", "auto":
		if runtime.GOOS == "linux" {
			return newPulseContext()
		}
		return newMalgoContext()
	case "pulse":
		return newPulseContext()
	case "malgo":
		return newMalgoContext()
	case "oto":
		return newOtoContext(), nil
	case "headless":
		return NewHeadlessContext(true), nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", backend)
	}
}
