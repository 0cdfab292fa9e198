package encoder

import "time"

const (
	Channels      = 2
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encoder consumes interleaved stereo float32 frames.
type Encoder interface {
	EncodeBlock(block []float32) error
	Close() error
	TotalFrames() uint64
	AddEncodeTime(d time.Duration)
	EncodeTime() time.Duration
}

// toInt16 maps [-1, 1] onto the 16-bit range, clipping out-of-range input.
func toInt16(v float32) int32 {
	s := int32(v * 32767)
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return s
}
