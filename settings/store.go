package settings

import (
	"math"
	"strconv"

	"binaural/log"
	"binaural/preset"
)

const (
	KeyCarrier    = "carrier"
	KeyPreset     = "preset"
	KeyCustomBeat = "custom_beat"
	KeyVolume     = "volume"
)

const (
	DefaultCarrier = 400.0
	DefaultVolume  = 0.1
)

// Store holds the tone parameters and writes every change through to its
// medium. Persistence is best effort: a failed write is logged and the
// in-memory value stays authoritative. Not safe for concurrent use.
type Store struct {
	medium  Medium
	carrier float64
	source  preset.BeatSource
	volume  float64
}

// Load restores each field independently, falling back to defaults for
// anything missing or malformed.
func Load(m Medium) *Store {
	s := &Store{
		medium:  m,
		carrier: DefaultCarrier,
		source:  preset.None(),
		volume:  DefaultVolume,
	}

	if v, ok := readFloat(m, KeyCarrier); ok && ValidFrequency(v) {
		s.carrier = v
	}
	if v, ok := readFloat(m, KeyVolume); ok && v >= 0 && v <= 1 {
		s.volume = v
	}

	if name, ok := m.Get(KeyPreset); ok {
		if p, known := preset.Lookup(name); known {
			s.source = preset.FromPreset(p.Name)
		}
	}
	// A stored custom value wins over a stale preset entry.
	if v, ok := readFloat(m, KeyCustomBeat); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		s.source = preset.Custom(v)
	}
	return s
}

func readFloat(m Medium, key string) (float64, bool) {
	raw, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warnf("settings: ignoring malformed %s=%q", key, raw)
		return 0, false
	}
	return v, true
}

// ValidFrequency reports whether hz is usable as a carrier.
func ValidFrequency(hz float64) bool {
	return hz > 0 && !math.IsInf(hz, 0) && !math.IsNaN(hz)
}

func (s *Store) Carrier() float64          { return s.carrier }
func (s *Store) Source() preset.BeatSource { return s.source }
func (s *Store) Volume() float64           { return s.volume }

// Beat is the effective beat frequency of the current source.
func (s *Store) Beat() float64 { return preset.Resolve(s.source) }

func (s *Store) SetCarrier(hz float64) {
	s.carrier = hz
	s.write(KeyCarrier, formatFloat(hz))
}

func (s *Store) SetSource(src preset.BeatSource) {
	s.source = src
	switch src.Kind() {
	case preset.KindPreset:
		name, _ := src.PresetName()
		s.write(KeyPreset, name)
		s.remove(KeyCustomBeat)
	case preset.KindCustom:
		hz, _ := src.CustomHz()
		s.write(KeyCustomBeat, formatFloat(hz))
		s.remove(KeyPreset)
	default:
		s.remove(KeyPreset)
		s.remove(KeyCustomBeat)
	}
}

func (s *Store) SetVolume(v float64) {
	s.volume = v
	s.write(KeyVolume, formatFloat(v))
}

func (s *Store) write(key, value string) {
	if err := s.medium.Set(key, value); err != nil {
		log.Warnf("settings: write %s failed: %v", key, err)
	}
}

func (s *Store) remove(key string) {
	if err := s.medium.Remove(key); err != nil {
		log.Warnf("settings: remove %s failed: %v", key, err)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
