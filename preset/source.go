package preset

import "strconv"

type Kind int

const (
	KindNone Kind = iota
	KindPreset
	KindCustom
)

// BeatSource is where the beat frequency comes from: nothing, a named
// preset, or a custom value. Exactly one of these is active at a time.
type BeatSource struct {
	kind Kind
	name string
	hz   float64
}

func None() BeatSource { return BeatSource{} }

// FromPreset selects a preset. The name is canonicalised against the
// catalogue; an unknown name is kept as-is and resolves to 0.
func FromPreset(name string) BeatSource {
	if p, ok := Lookup(name); ok {
		name = p.Name
	}
	return BeatSource{kind: KindPreset, name: name}
}

func Custom(hz float64) BeatSource {
	return BeatSource{kind: KindCustom, hz: hz}
}

func (s BeatSource) Kind() Kind { return s.kind }

func (s BeatSource) PresetName() (string, bool) {
	return s.name, s.kind == KindPreset
}

func (s BeatSource) CustomHz() (float64, bool) {
	return s.hz, s.kind == KindCustom
}

func (s BeatSource) String() string {
	switch s.kind {
	case KindPreset:
		return "preset:" + s.name
	case KindCustom:
		return "custom:" + strconv.FormatFloat(s.hz, 'g', -1, 64)
	default:
		return "none"
	}
}

// Resolve returns the effective beat frequency for src. A custom value
// always wins; 0 means no beat is configured.
func Resolve(src BeatSource) float64 {
	switch src.kind {
	case KindCustom:
		return src.hz
	case KindPreset:
		if p, ok := Lookup(src.name); ok {
			return p.Freq
		}
	}
	return 0
}
