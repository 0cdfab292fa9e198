//go:build !linux

package audio

import "errors"

func newPulseContext() (Context, error) {
	return nil, errors.New("pulse backend is only available on linux")
}
