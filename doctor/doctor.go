package doctor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"binaural/audio"
	"binaural/preset"
	"binaural/tone"
)

type Options struct {
	Backend      string
	Device       string
	SampleRate   int
	ToneDuration time.Duration

	// Overridable for tests; default to the real backend and the terminal.
	Context audio.Context
	In      io.Reader
	Out     io.Writer
}

type checker struct {
	opts   Options
	out    io.Writer
	reader *bufio.Reader
}

// Run executes interactive diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(opts Options) int {
	if opts.In == nil {
		resetTerminal()
		setupInterruptHandler()
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = audio.DefaultSampleRate
	}
	if opts.ToneDuration <= 0 {
		opts.ToneDuration = 2 * time.Second
	}
	c := &checker{opts: opts, out: opts.Out, reader: bufio.NewReader(opts.In)}

	fmt.Fprintln(c.out, "binaural doctor - interactive audio diagnostics")
	fmt.Fprintln(c.out, "===============================================")

	ctx, ok := c.checkBackend()
	allPass := ok
	if ok {
		if !opts.isInjected() {
			defer ctx.Close()
		}
		var device *audio.DeviceInfo
		device, ok = c.checkDevices(ctx)
		allPass = allPass && ok
		if ok && !c.checkStereo(ctx, device) {
			allPass = false
		}
	}

	fmt.Fprintln(c.out)
	if allPass {
		fmt.Fprintln(c.out, "All checks passed!")
		return 0
	}
	fmt.Fprintln(c.out, "Some checks failed. See details above.")
	return 1
}

func (o Options) isInjected() bool { return o.Context != nil }

func (c *checker) checkBackend() (audio.Context, bool) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "[1/3] Audio backend")

	if c.opts.Context != nil {
		fmt.Fprintf(c.out, "  PASS: using %s\n", c.opts.Context.Name())
		return c.opts.Context, true
	}
	ctx, err := audio.NewContext(c.opts.Backend)
	if err != nil {
		fmt.Fprintf(c.out, "  FAIL: cannot connect to audio: %v\n", err)
		return nil, false
	}
	fmt.Fprintf(c.out, "  PASS: connected to %s\n", ctx.Name())
	return ctx, true
}

func (c *checker) checkDevices(ctx audio.Context) (*audio.DeviceInfo, bool) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "[2/3] Output devices")

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Fprintf(c.out, "  FAIL: cannot list devices: %v\n", err)
		return nil, false
	}
	if len(devices) == 0 {
		fmt.Fprintln(c.out, "  (backend does not enumerate devices; using system default)")
	}
	for _, d := range devices {
		tag := ""
		if audio.IsBluetooth(d.Name) {
			tag = "  [warning: bluetooth headsets may switch to mono]"
		}
		fmt.Fprintf(c.out, "  - %s%s\n", d.Name, tag)
	}

	device := audio.FindDevice(ctx, c.opts.Device)
	if c.opts.Device != "" && device == nil {
		fmt.Fprintf(c.out, "  FAIL: device %q not found\n", c.opts.Device)
		return nil, false
	}
	fmt.Fprintln(c.out, "  PASS")
	return device, true
}

func (c *checker) checkStereo(ctx audio.Context, device *audio.DeviceInfo) bool {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "[3/3] Stereo separation (use headphones)")

	steps := []struct {
		mute     int // channel to silence, -1 for none
		question string
	}{
		{1, "Did you hear a tone in your LEFT ear only?"},
		{0, "Did you hear a tone in your RIGHT ear only?"},
		{-1, "Did you hear a slow pulsing between both ears?"},
	}

	alfa, _ := preset.Lookup("Alfa")
	for _, step := range steps {
		sess := tone.NewSession(c.opts.SampleRate, 400, alfa.Freq, 0.2)
		mute := step.mute
		render := func(out []float32) {
			sess.Render(out)
			if mute < 0 {
				return
			}
			for i := mute; i < len(out); i += audio.StereoChannels {
				out[i] = 0
			}
		}

		dev, err := ctx.NewPlayback(device, audio.PlaybackConfig{
			SampleRate: uint32(c.opts.SampleRate),
			Channels:   audio.StereoChannels,
		}, render)
		if err != nil {
			fmt.Fprintf(c.out, "  FAIL: cannot open output: %v\n", err)
			return false
		}
		if err := dev.Start(); err != nil {
			dev.Close()
			fmt.Fprintf(c.out, "  FAIL: cannot start output: %v\n", err)
			return false
		}
		time.Sleep(c.opts.ToneDuration)
		dev.Close()

		if !c.confirm(step.question) {
			fmt.Fprintln(c.out, "  FAIL: not confirmed (check channel mapping and mono/balance settings)")
			return false
		}
	}
	fmt.Fprintln(c.out, "  PASS: stereo output verified by user")
	return true
}

func (c *checker) confirm(question string) bool {
	fmt.Fprintf(c.out, "%s [y/n]: ", question)
	answer, _ := c.reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
