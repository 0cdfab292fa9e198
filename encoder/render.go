package encoder

import (
	"fmt"
	"time"
)

// Source produces interleaved stereo frames, e.g. a tone.Session.
type Source interface {
	Render(out []float32)
}

// Render pulls frames from src in BlockSize chunks and encodes them.
func Render(enc Encoder, src Source, frames int) error {
	buf := make([]float32, BlockSize*Channels)
	for done := 0; done < frames; {
		n := min(BlockSize, frames-done)
		block := buf[:n*Channels]
		src.Render(block)

		start := time.Now()
		if err := enc.EncodeBlock(block); err != nil {
			return fmt.Errorf("encoding at frame %d: %w", done, err)
		}
		enc.AddEncodeTime(time.Since(start))
		done += n
	}
	return nil
}
