package preset

import "testing"

func TestResolvePresets(t *testing.T) {
	want := map[string]float64{
		"Alfa":  10,
		"Teta":  6,
		"Delta": 2,
		"Beta":  20,
		"Gamma": 40,
	}
	for _, p := range All() {
		if got := Resolve(FromPreset(p.Name)); got != want[p.Name] {
			t.Errorf("Resolve(%s) = %v, want %v", p.Name, got, want[p.Name])
		}
	}
	if len(All()) != len(want) {
		t.Errorf("catalogue has %d presets, want %d", len(All()), len(want))
	}
}

func TestResolveCustom(t *testing.T) {
	for _, hz := range []float64{0.001, 0.5, 7.83, 10, 123.4} {
		if got := Resolve(Custom(hz)); got != hz {
			t.Errorf("Resolve(Custom(%v)) = %v", hz, got)
		}
	}
}

func TestResolveNone(t *testing.T) {
	if got := Resolve(None()); got != 0 {
		t.Errorf("Resolve(None) = %v, want 0", got)
	}
	if got := Resolve(FromPreset("Epsilon")); got != 0 {
		t.Errorf("unknown preset resolved to %v, want 0", got)
	}
}

func TestSourceExclusive(t *testing.T) {
	src := FromPreset("Gamma")
	if got := Resolve(src); got != 40 {
		t.Fatalf("Resolve = %v, want 40", got)
	}
	src = Custom(3.5)
	if _, ok := src.PresetName(); ok {
		t.Error("custom source still reports a preset")
	}
	if got := Resolve(src); got != 3.5 {
		t.Errorf("Resolve = %v, want 3.5", got)
	}

	src = FromPreset("teta")
	if _, ok := src.CustomHz(); ok {
		t.Error("preset source still reports a custom value")
	}
	if name, _ := src.PresetName(); name != "Teta" {
		t.Errorf("preset name = %q, want canonical Teta", name)
	}
	if got := Resolve(src); got != 6 {
		t.Errorf("Resolve = %v, want 6", got)
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		from string
		step int
		want string
	}{
		{"Alfa", 1, "Teta"},
		{"Gamma", 1, "Alfa"},
		{"Alfa", -1, "Gamma"},
		{"", 1, "Alfa"},
		{"", -1, "Gamma"},
	}
	for _, tt := range tests {
		if got := Next(tt.from, tt.step).Name; got != tt.want {
			t.Errorf("Next(%q, %d) = %s, want %s", tt.from, tt.step, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	p, _ := Lookup("Delta")
	if got := p.Label(); got != "Delta (2 Hz)" {
		t.Errorf("Label = %q", got)
	}
}
