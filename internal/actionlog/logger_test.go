package actionlog

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/setwin/internal/platform"
)

func newTestLogger(t *testing.T, cfg LogConfig) (*Logger, string) {
	t.Helper()
	cfg.Enabled = true
	if cfg.FilePath == "" {
		cfg.FilePath = filepath.Join(t.TempDir(), "logs", "actions.log")
	}
	l, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { l.Close() })
	return l, cfg.FilePath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestLogger_FormatsRecord(t *testing.T) {
	l, path := newTestLogger(t, LogConfig{Level: slog.LevelDebug})
	l.Log(ActionWrite, slog.String("run", "run-1"), slog.Int("path", 3), slog.Int("bytes", 12), slog.String("data", "1B 24"))

	got := readLog(t, path)
	want := "time=2026-01-02T03:04:05.000Z level=INFO action=WRITE run=run-1 path=3 bytes=12 data=\"1B 24\"\n"
	if got != want {
		t.Fatalf("log = %q, want %q", got, want)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	l, path := newTestLogger(t, LogConfig{Level: slog.LevelInfo})
	if l.Enabled(ActionStatus) {
		t.Fatal("Enabled(STATUS) = true at info level")
	}
	l.Log(ActionStatus, slog.Int("path", 1))
	l.Log(ActionOpen, slog.Int("path", 4))
	l.Log(ActionFailed, slog.String("op", "write"))

	got := readLog(t, path)
	if strings.Contains(got, "action=STATUS") {
		t.Fatalf("debug action logged at info level: %q", got)
	}
	if !strings.Contains(got, "level=INFO action=OPEN") || !strings.Contains(got, "level=ERROR action=FAILED") {
		t.Fatalf("info/error actions missing: %q", got)
	}
}

func TestLogger_DisabledIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.log")
	l, err := NewLogger(LogConfig{Enabled: false, FilePath: path})
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}
	l.Log(ActionWrite, slog.Int("path", 1))
	var nilLogger *Logger
	nilLogger.Log(ActionWrite, slog.Int("path", 1))
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("Close() on nil logger: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("disabled logger created %s", path)
	}
}

func TestRotatingFile_RotatesBetweenRecords(t *testing.T) {
	l, path := newTestLogger(t, LogConfig{Level: slog.LevelDebug, MaxSizeMB: 1, MaxFiles: 2})
	l.Log(ActionOpen, slog.Int("path", 3))
	l.out.size = 1024 * 1024
	l.Log(ActionFork, slog.String("device", "W7"))

	old := readLog(t, path+".1")
	if !strings.Contains(old, "action=OPEN") || strings.Contains(old, "action=FORK") {
		t.Fatalf("rotated log = %q, want only the open record", old)
	}
	if got := readLog(t, path); !strings.HasSuffix(got, "action=FORK device=W7\n") {
		t.Fatalf("new log = %q, want fork record", got)
	}

	l.out.size = 1024 * 1024
	l.Log(ActionSleep, slog.Int("ticks", 30))
	if got := readLog(t, path+".2"); got != old {
		t.Fatalf("second rotation did not shift .1 to .2: %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPreview(t *testing.T) {
	b := []byte{0x1B, 0x24, 0x1B, 0x20, 0x02}
	if got := Preview(b, 0); got != "1B 24 1B 20 02" {
		t.Fatalf("Preview(b, 0) = %q", got)
	}
	if got := Preview(b, 2); got != "1B 24 ..." {
		t.Fatalf("Preview(b, 2) = %q", got)
	}
}

func TestBackend_RecordsCalls(t *testing.T) {
	l, path := newTestLogger(t, LogConfig{Level: slog.LevelDebug, IncludeContent: true, PreviewLength: 4})
	mem := platform.NewMemoryBackend(platform.WindowState{Width: 80, Height: 24, TypeCode: 2, Foreground: 1, DeviceName: "W1"})
	b := Wrap(mem, l)
	run := b.Invocation()
	if run == "" {
		t.Fatal("Invocation() is empty")
	}

	if _, err := b.Status(platform.PathStdout, platform.StatusScreenSize); err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if _, err := b.Status(platform.PathStdout, platform.StatusColors); err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if _, err := b.Write(platform.PathStdout, []byte{0x1B, 0x24, 0x1B, 0x20, 0x02}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := b.Fork(platform.ForkRequest{Command: "shell", Args: "i=/W1&", Device: "W1"}); err != nil {
		t.Fatalf("Fork() error: %v", err)
	}
	mem.Fail["sleep"] = errors.New("interrupted")
	if err := b.Sleep(30); err == nil {
		t.Fatal("Sleep() error = nil, want failure")
	}

	got := readLog(t, path)
	for _, want := range []string{
		"action=STATUS run=" + run + " path=1 code=screen-size width=80 height=24\n",
		"action=STATUS run=" + run + " path=1 code=colors fg=1 bg=0 border=0\n",
		"action=WRITE run=" + run + " path=1 bytes=5 data=\"1B 24 1B 20 ...\"\n",
		"action=FORK run=" + run + " command=shell args=\"i=/W1&\" device=W1\n",
		"level=ERROR action=FAILED run=" + run + " ticks=30 op=sleep error=",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("log missing %q:\n%s", want, got)
		}
	}
	if len(mem.Writes) != 1 {
		t.Fatalf("wrapped backend writes = %d, want 1", len(mem.Writes))
	}
}
