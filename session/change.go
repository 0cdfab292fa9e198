package session

import (
	"strconv"

	"binaural/preset"
)

// Change is a single user edit to one parameter.
type Change interface {
	field() string
	value() string
}

type CarrierChange struct{ Hz float64 }

type PresetChange struct{ Name string }

type CustomBeatChange struct{ Hz float64 }

// ClearBeatChange drops both the preset selection and any custom value.
type ClearBeatChange struct{}

type VolumeChange struct{ Volume float64 }

func (c CarrierChange) field() string    { return "carrier" }
func (c CarrierChange) value() string    { return fmtHz(c.Hz) }
func (c PresetChange) field() string     { return "preset" }
func (c PresetChange) value() string     { return c.Name }
func (c CustomBeatChange) field() string { return "custom_beat" }
func (c CustomBeatChange) value() string { return fmtHz(c.Hz) }
func (ClearBeatChange) field() string    { return "beat" }
func (ClearBeatChange) value() string    { return "none" }
func (c VolumeChange) field() string     { return "volume" }
func (c VolumeChange) value() string     { return fmtHz(c.Volume) }

func fmtHz(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// State is the playback state.
type State int

const (
	Idle State = iota
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Playing:
		return "Playing"
	default:
		return "Unknown"
	}
}

// Snapshot is a consistent view of the controller for display.
type Snapshot struct {
	State    State
	Carrier  float64
	Source   preset.BeatSource
	Beat     float64
	Volume   float64
	LeftHz   float64
	RightHz  float64
	Sessions int // successful Start calls since construction
}
