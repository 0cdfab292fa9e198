package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestOtoSourceWholeFrames(t *testing.T) {
	var sizes []int
	src := &otoSource{
		channels: StereoChannels,
		render: func(out []float32) {
			sizes = append(sizes, len(out))
			for i := range out {
				out[i] = float32(i%2) + 0.5 // left 0.5, right 1.5
			}
		},
	}

	// 3 samples plus 2 stray bytes: only one stereo frame fits.
	p := make([]byte, 14)
	n, err := src.Read(p)
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Errorf("Read returned %d bytes, want 8", n)
	}
	if len(sizes) != 1 || sizes[0] != 2 {
		t.Errorf("render sizes = %v, want [2]", sizes)
	}
	l := math.Float32frombits(binary.LittleEndian.Uint32(p[0:]))
	r := math.Float32frombits(binary.LittleEndian.Uint32(p[4:]))
	if l != 0.5 || r != 1.5 {
		t.Errorf("frame = (%v, %v), want (0.5, 1.5)", l, r)
	}

	n, _ = src.Read(make([]byte, 4096))
	if n != 4096 || sizes[1] != 1024 {
		t.Errorf("aligned read: n=%d samples=%d", n, sizes[1])
	}
}
