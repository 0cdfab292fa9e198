package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"binaural/audio"
	"binaural/doctor"
	"binaural/log"
	"binaural/session"
	"binaural/settings"
	"binaural/shutdown"
	"binaural/tone"
)

var version = "dev"

var shutdownOnce sync.Once

// gracefulShutdown handles a termination signal. A running TUI is only told
// to quit so it can restore the terminal; main finishes up after runTUI
// returns.
func gracefulShutdown(ctrl *session.Controller) {
	if quitTUI() {
		return
	}
	shutdownOnce.Do(func() {
		ctrl.Stop()
		log.SessionEnd(ctrl.Snapshot().Sessions)
		log.Close()
		os.Exit(0)
	})
}

func deviceLineText(backend string, dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT: may play mono!)"
		}
	}
	return "out: " + name + suffix + " [" + backend + "]"
}

func main() {
	backendFlag := flag.String("backend", "auto", "Audio backend: "+strings.Join(audio.Backends, ", "))
	deviceFlag := flag.String("device", "", "Use named output device")
	setupFlag := flag.Bool("setup", false, "Select output device interactively (otherwise uses system default)")
	sampleRateFlag := flag.Int("samplerate", audio.DefaultSampleRate, "Output sample rate in Hz")
	settingsFlag := flag.String("settings", "", "settings file path (default: OS config dir)")
	carrierFlag := flag.Float64("carrier", 0, "Set and save the carrier frequency in Hz (50-600)")
	presetFlag := flag.String("preset", "", "Set and save the beat preset (Alfa, Teta, Delta, Beta, Gamma)")
	beatFlag := flag.Float64("beat", 0, "Set and save a custom beat frequency in Hz (overrides preset)")
	volumeFlag := flag.Float64("volume", -1, "Set and save the volume (0-1)")
	renderFlag := flag.String("render", "", "Render the saved tone to a FLAC file instead of playing")
	secondsFlag := flag.Float64("seconds", 60, "Length of -render output in seconds")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run audio diagnostics and exit")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI (false: play saved tone until interrupted)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("binaural %s\n", version)
		os.Exit(0)
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *doctorFlag {
		os.Exit(doctor.Run(doctor.Options{
			Backend:    *backendFlag,
			Device:     *deviceFlag,
			SampleRate: *sampleRateFlag,
		}))
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	store := settings.Load(openMedium(*settingsFlag, *testFlag))

	backend := *backendFlag
	if *testFlag {
		backend = "headless"
	}

	var ctx audio.Context
	if *renderFlag != "" {
		// Offline: the engine is only used to apply flag overrides.
		ctx = audio.NewHeadlessContext(false)
	} else {
		ctx, err = audio.NewContext(backend)
		if err != nil {
			log.Errorf("audio context init error: %v", err)
			fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
			os.Exit(1)
		}
	}
	defer ctx.Close()

	var device *audio.DeviceInfo
	if *deviceFlag != "" {
		device = audio.FindDevice(ctx, *deviceFlag)
		if device == nil {
			log.Warnf("device %q not found, using default", *deviceFlag)
			fmt.Fprintf(os.Stderr, "Warning: device %q not found, using system default\n", *deviceFlag)
		}
	} else if *setupFlag {
		device, err = audio.SelectDevice(ctx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			device = nil
		}
	}

	engine := tone.NewEngine(ctx, tone.Config{SampleRate: *sampleRateFlag, Device: device})
	ctrl := session.New(store, engine)

	if err := applyFlagOverrides(ctrl, *carrierFlag, *presetFlag, *beatFlag, *volumeFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if *renderFlag != "" {
		if err := runRender(ctrl.Snapshot(), *renderFlag, *secondsFlag, *sampleRateFlag); err != nil {
			log.Errorf("render failed: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	deviceName := ""
	if device != nil {
		deviceName = device.Name
	}
	log.SessionStart(ctx.Name(), deviceName)
	shutdown.OnSignal(func() { gracefulShutdown(ctrl) })

	if *testFlag {
		code := runTestMode(ctrl, os.Stdin, os.Stdout)
		ctrl.Stop()
		log.SessionEnd(ctrl.Snapshot().Sessions)
		os.Exit(code)
	}

	if !*tuiFlag {
		runPlain(ctrl)
		return
	}

	if err := runTUI(ctrl, deviceLineText(ctx.Name(), device)); err != nil {
		log.Errorf("TUI error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	ctrl.Stop()
	log.SessionEnd(ctrl.Snapshot().Sessions)
}

func openMedium(flagPath string, testMode bool) settings.Medium {
	if testMode && flagPath == "" {
		return settings.NewMemoryMedium()
	}
	path, err := settings.ResolvePath(flagPath)
	if err != nil {
		log.Warnf("settings path: %v", err)
		return settings.NewMemoryMedium()
	}
	m, err := settings.OpenFile(path)
	if err != nil {
		log.Warnf("%v", err)
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	return m
}

// applyFlagOverrides applies only the flags given on the command line.
func applyFlagOverrides(ctrl *session.Controller, carrier float64, presetName string, beat, volume float64) error {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var changes []session.Change
	if set["carrier"] {
		changes = append(changes, session.CarrierChange{Hz: carrier})
	}
	if set["preset"] {
		changes = append(changes, session.PresetChange{Name: presetName})
	}
	if set["beat"] {
		changes = append(changes, session.CustomBeatChange{Hz: beat})
	}
	if set["volume"] {
		changes = append(changes, session.VolumeChange{Volume: volume})
	}
	for _, ch := range changes {
		if err := ctrl.Apply(ch); err != nil {
			return err
		}
	}
	return nil
}

func runPlain(ctrl *session.Controller) {
	if !ctrl.Start() {
		fmt.Fprintln(os.Stderr, "Nothing to play: choose a beat with -preset or -beat")
		os.Exit(1)
	}
	s := ctrl.Snapshot()
	fmt.Printf("Playing %s: L %.2f Hz / R %.2f Hz (beat %g Hz, volume %g). Ctrl+C to stop.\n",
		s.Source, s.LeftHz, s.RightHz, s.Beat, s.Volume)
	select {}
}
