package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/mylog" {
		t.Errorf("got %q, want /tmp/mylog", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "logs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("BINAURAL_LOG_PATH", "/tmp/binaural-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/binaural-env-log" {
		t.Errorf("got %q, want /tmp/binaural-env-log", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("BINAURAL_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got == "" {
		t.Error("expected non-empty default directory")
	}
}

func TestInitCreatesFiles(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"diagnostics_log.txt", "listening_log.txt"} {
		path := filepath.Join(tmp, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}
}

func TestToneStopHistory(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	ToneStop(Tone{CarrierHz: 400, BeatHz: 10, Source: "preset:Alfa", Volume: 0.1}, 90*time.Second)

	data, err := os.ReadFile(filepath.Join(tmp, "listening_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	for _, want := range []string{"90.0s", "carrier=400", "beat=10", "preset:Alfa", "volume=0.1"} {
		if !strings.Contains(line, want) {
			t.Errorf("listening_log.txt missing %q, got: %q", want, line)
		}
	}
	// format: "2006-01-02 15:04:05\t[pid]\tduration\t..."
	if !strings.Contains(line, "\t") {
		t.Errorf("expected tab-separated format, got: %q", line)
	}
}

func TestDiagnosticsEvents(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	ToneStart(Tone{CarrierHz: 400, BeatHz: 10, Source: "custom:10", Volume: 0.2}, 395, 405)
	ParamChange("carrier", "500", true)
	Warnf("settings write failed: %v", "disk full")

	data, err := os.ReadFile(filepath.Join(tmp, "diagnostics_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"tone_start", "left_hz=395", "right_hz=405", "param_change", "field=carrier", "disk full"} {
		if !strings.Contains(out, want) {
			t.Errorf("diagnostics_log.txt missing %q, got: %q", want, out)
		}
	}
}

func TestNoopBeforeInit(t *testing.T) {
	setupLogDir(t)
	// must not panic on nil files
	ToneStop(Tone{}, time.Second)
	Info("ignored")
}

func TestCloseIdempotent(t *testing.T) {
	setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Close()
	Close() // should not panic
}
