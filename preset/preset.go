package preset

import (
	"strconv"
	"strings"
)

type Preset struct {
	Name        string
	Freq        float64 // beat frequency, Hz
	Description string
}

// Display order is catalogue order.
var catalogue = []Preset{
	{Name: "Alfa", Freq: 10, Description: "Relaxation and meditation (8-12 Hz)"},
	{Name: "Teta", Freq: 6, Description: "Creativity and deep relaxation (4-7 Hz)"},
	{Name: "Delta", Freq: 2, Description: "Deep sleep and regeneration (0.5-4 Hz)"},
	{Name: "Beta", Freq: 20, Description: "Focus, attention and cognitive performance (13-30 Hz)"},
	{Name: "Gamma", Freq: 40, Description: "Advanced cognitive processing and alertness (30-100 Hz)"},
}

func All() []Preset {
	out := make([]Preset, len(catalogue))
	copy(out, catalogue)
	return out
}

// Lookup finds a preset by name, ignoring case.
func Lookup(name string) (Preset, bool) {
	for _, p := range catalogue {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// Label is the menu text for a preset, e.g. "Alfa (10 Hz)".
func (p Preset) Label() string {
	return p.Name + " (" + strconv.FormatFloat(p.Freq, 'g', -1, 64) + " Hz)"
}

// Next returns the preset after name in catalogue order, wrapping around.
// An unknown name yields the first preset.
func Next(name string, step int) Preset {
	idx := -1
	for i, p := range catalogue {
		if strings.EqualFold(p.Name, name) {
			idx = i
			break
		}
	}
	if idx < 0 {
		if step < 0 {
			return catalogue[len(catalogue)-1]
		}
		return catalogue[0]
	}
	n := len(catalogue)
	return catalogue[((idx+step)%n+n)%n]
}
