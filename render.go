package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"binaural/encoder"
	"binaural/log"
	"binaural/session"
	"binaural/tone"
)

// runRender writes seconds of the configured tone to a stereo FLAC file.
func runRender(s session.Snapshot, path string, seconds float64, sampleRate int) error {
	if s.Beat == 0 {
		return errors.New("nothing to render: choose a beat with -preset or -beat")
	}
	if seconds <= 0 {
		return fmt.Errorf("invalid -seconds %v", seconds)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := encoder.NewFlac(f, sampleRate)
	if err != nil {
		return err
	}

	start := time.Now()
	sess := tone.NewSession(sampleRate, s.Carrier, s.Beat, s.Volume)
	frames := int(seconds * float64(sampleRate))
	if err := encoder.Render(enc, sess, frames); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finishing flac: %w", err)
	}

	log.Info(fmt.Sprintf("rendered %d frames to %s in %s (encode %s)",
		enc.TotalFrames(), path, time.Since(start).Round(time.Millisecond), enc.EncodeTime().Round(time.Millisecond)))
	fmt.Printf("Wrote %s: %.1fs, L %.2f Hz / R %.2f Hz\n", path, seconds, s.LeftHz, s.RightHz)
	return nil
}
