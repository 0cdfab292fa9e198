package audio

/*
#include <stdlib.h>
*/
import "C"

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func newMalgoContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo: %w", err)
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) Name() string { return "malgo" }

func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   encodeDeviceID(d.ID),
			Name: d.Name(),
		})
	}
	return result, nil
}

func (m *malgoContext) NewPlayback(device *DeviceInfo, config PlaybackConfig, render Renderer) (PlaybackDevice, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	// DeviceID.Pointer copies the ID into C memory owned by the playback.
	var cID unsafe.Pointer
	if device != nil {
		devID, err := decodeDeviceID(device.ID)
		if err != nil {
			return nil, err
		}
		cID = devID.Pointer()
		deviceConfig.Playback.DeviceID = cID
	}

	var samples []float32
	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			n := int(frameCount * config.Channels)
			if cap(samples) < n {
				samples = make([]float32, n)
			}
			samples = samples[:n]
			render(samples)
			for i, s := range samples {
				binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
			}
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		freeDeviceID(cID)
		return nil, fmt.Errorf("malgo init device: %w", err)
	}
	return &malgoPlayback{device: dev, deviceID: cID}, nil
}

func encodeDeviceID(id malgo.DeviceID) string {
	return hex.EncodeToString(id[:])
}

func decodeDeviceID(s string) (malgo.DeviceID, error) {
	var id malgo.DeviceID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid device ID: %w", err)
	}
	if len(b) > len(id) {
		return id, fmt.Errorf("invalid device ID: %d bytes", len(b))
	}
	copy(id[:], b)
	return id, nil
}

func freeDeviceID(p unsafe.Pointer) {
	if p != nil {
		C.free(p)
	}
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoPlayback struct {
	device   *malgo.Device
	deviceID unsafe.Pointer // C copy of the selected device ID, nil for default
	once     sync.Once
}

func (p *malgoPlayback) Start() error {
	return p.device.Start()
}

func (p *malgoPlayback) Close() {
	p.once.Do(func() {
		p.device.Stop()
		p.device.Uninit()
		freeDeviceID(p.deviceID)
		p.deviceID = nil
	})
}
