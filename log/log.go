package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog     zerolog.Logger
	diagFile    *os.File
	historyFile *os.File
	logMu       sync.Mutex
	logReady    bool
	pid         int
	dir         string
)

// Tone describes one listening session for the history log.
type Tone struct {
	CarrierHz float64
	BeatHz    float64
	Source    string
	Volume    float64
}

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: BINAURAL_LOG_PATH environment variable
	envPath := os.Getenv("BINAURAL_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	historyPath := filepath.Join(dir, "listening_log.txt")
	historyFile, err = os.OpenFile(historyPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if historyFile != nil {
		historyFile.Close()
		historyFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func ToneStart(t Tone, leftHz, rightHz float64) {
	if !logReady {
		return
	}
	diagLog.Info().
		Float64("carrier_hz", t.CarrierHz).
		Float64("beat_hz", t.BeatHz).
		Str("source", t.Source).
		Float64("volume", t.Volume).
		Float64("left_hz", leftHz).
		Float64("right_hz", rightHz).
		Msg("tone_start")
}

func ToneRefused(reason string) {
	if !logReady {
		return
	}
	diagLog.Info().Str("reason", reason).Msg("tone_refused")
}

// ToneStop logs the end of a listening session and appends it to the
// listening history.
func ToneStop(t Tone, d time.Duration) {
	if !logReady {
		return
	}
	diagLog.Info().
		Float64("duration_s", d.Seconds()).
		Msg("tone_stop")

	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%.1fs\tcarrier=%g\tbeat=%g\t%s\tvolume=%g\n",
		time.Now().Format("2006-01-02 15:04:05"), pid, d.Seconds(),
		t.CarrierHz, t.BeatHz, t.Source, t.Volume)
	historyFile.WriteString(line)
}

func ParamChange(field, value string, playing bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("field", field).
		Str("value", value).
		Bool("playing", playing).
		Msg("param_change")
}

func SessionStart(backend, device string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("backend", backend).
		Str("device", device).
		Msg("session_start")
}

func SessionEnd(plays int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("plays", plays).
		Msg("session_end")
}
