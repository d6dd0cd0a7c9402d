//go:build linux || darwin

package platform

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func newPtyBackend(t *testing.T, cfg HostConfig) (*HostBackend, Path) {
	t.Helper()
	b := NewHostBackend(cfg)
	t.Cleanup(func() { b.Close() })
	path, err := b.Open("/W", ModeRead|ModeWrite)
	if err != nil {
		t.Skipf("pseudo-terminals unavailable: %v", err)
	}
	return b, path
}

// readMaster reads from the pty master until want shows up or the timeout
// passes.
func readMaster(t *testing.T, master *os.File, want []byte) []byte {
	t.Helper()
	got := make(chan []byte, 1)
	go func() {
		var acc []byte
		buf := make([]byte, 256)
		for !bytes.Contains(acc, want) {
			n, err := master.Read(buf)
			acc = append(acc, buf[:n]...)
			if err != nil {
				break
			}
		}
		got <- acc
	}()
	select {
	case b := <-got:
		return b
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %q on pty master", want)
		return nil
	}
}

func TestHostBackend_OpenAllocatesSizedPty(t *testing.T) {
	b, path := newPtyBackend(t, HostConfig{NewWindowCols: 32, NewWindowRows: 16})
	if path < 3 {
		t.Fatalf("Open() = %d, want a path after the standard streams", path)
	}
	if b.paths[path].master == nil {
		t.Fatal("Open() did not keep the pty master")
	}

	regs, err := b.Status(path, StatusScreenSize)
	if err != nil {
		t.Fatalf("Status(screen-size) error: %v", err)
	}
	if regs.X != 32 || regs.Y != 16 {
		t.Fatalf("Status(screen-size) = %dx%d, want 32x16", regs.X, regs.Y)
	}

	next, err := b.Open("/W", ModeRead|ModeWrite)
	if err != nil {
		t.Fatalf("second Open() error: %v", err)
	}
	if next == path {
		t.Fatalf("second Open() reused path %d", path)
	}
}

func TestHostBackend_StatusFromConfig(t *testing.T) {
	b, path := newPtyBackend(t, HostConfig{ScreenType: 8, Foreground: 1, Background: 2, Border: 3})

	regs, err := b.Status(path, StatusScreenType)
	if err != nil || regs.A != 8 {
		t.Fatalf("Status(screen-type) = %+v, %v, want type 8", regs, err)
	}
	regs, err = b.Status(path, StatusColors)
	if err != nil || regs.A != 1 || regs.B != 2 || regs.X != 3 {
		t.Fatalf("Status(colors) = %+v, %v", regs, err)
	}

	_, err = b.Status(path, StatusCode(0x42))
	var derr *DeviceError
	if !errors.As(err, &derr) || derr.Code != StatusCode(0x42) {
		t.Fatalf("Status(unknown) error = %v, want *DeviceError", err)
	}
}

func TestHostBackend_WriteReachesMaster(t *testing.T) {
	b, path := newPtyBackend(t, HostConfig{})
	seq := []byte{0x1B, 0x20, 0x02, 0x00, 0x00, 0x50, 0x18, 0x01, 0x00, 0x00}

	n, err := b.Write(path, seq)
	if err != nil || n != len(seq) {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if got := readMaster(t, b.paths[path].master, seq); !bytes.Contains(got, seq) {
		t.Fatalf("master read % X, want % X", got, seq)
	}
}

func TestHostBackend_CurrentPathRequiresTerminal(t *testing.T) {
	b, path := newPtyBackend(t, HostConfig{})

	b.cfg.CurrentPath = path
	got, err := b.CurrentPath()
	if err != nil || got != path {
		t.Fatalf("CurrentPath() = %d, %v, want %d", got, err, path)
	}

	null, err := b.Open("/dev/null", ModeWrite)
	if err != nil {
		t.Fatalf("Open(/dev/null) error: %v", err)
	}
	b.cfg.CurrentPath = null
	_, err = b.CurrentPath()
	var derr *DeviceError
	if !errors.As(err, &derr) || !strings.Contains(err.Error(), "not a terminal") {
		t.Fatalf("CurrentPath() on /dev/null error = %v", err)
	}
}

func TestOpenFlags(t *testing.T) {
	tests := []struct {
		mode OpenMode
		want int
	}{
		{ModeRead, os.O_RDONLY},
		{ModeWrite, os.O_WRONLY},
		{ModeRead | ModeWrite, os.O_RDWR},
	}
	for _, tt := range tests {
		if got := openFlags(tt.mode); got != tt.want {
			t.Fatalf("openFlags(%d) = %d, want %d", tt.mode, got, tt.want)
		}
	}
}

func TestHostBackend_Sleep(t *testing.T) {
	b := NewHostBackend(HostConfig{TickRate: 1000})

	start := time.Now()
	if err := b.Sleep(20); err != nil {
		t.Fatalf("Sleep(20) error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("Sleep(20) at 1000 ticks/s took %v, want >= 20ms", elapsed)
	}

	var derr *DeviceError
	if err := b.Sleep(-1); !errors.As(err, &derr) || derr.Op != "sleep" {
		t.Fatalf("Sleep(-1) error = %v, want *DeviceError", err)
	}
}

func TestHostBackend_ForkBindsDevice(t *testing.T) {
	echo, err := exec.LookPath("echo")
	if err != nil {
		t.Skip("echo not available")
	}
	b, path := newPtyBackend(t, HostConfig{})
	device := strings.TrimPrefix(b.paths[path].file.Name(), "/")

	if err := b.Fork(ForkRequest{Command: echo, Args: "fork-ok", Device: device}); err != nil {
		t.Fatalf("Fork() error: %v", err)
	}
	want := []byte("fork-ok")
	if got := readMaster(t, b.paths[path].master, want); !bytes.Contains(got, want) {
		t.Fatalf("master read %q, want child output", got)
	}

	var derr *DeviceError
	if err := b.Fork(ForkRequest{Command: echo}); !errors.As(err, &derr) {
		t.Fatalf("Fork() without device error = %v, want *DeviceError", err)
	}
}

func TestHostBackend_CloseReleasesOpenedPaths(t *testing.T) {
	b, path := newPtyBackend(t, HostConfig{})

	if err := b.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if len(b.paths) != 3 {
		t.Fatalf("paths after Close() = %d, want only the standard streams", len(b.paths))
	}
	var derr *DeviceError
	if _, err := b.Write(path, []byte{0x1B, 0x21}); !errors.As(err, &derr) {
		t.Fatalf("Write() after Close() error = %v, want *DeviceError", err)
	}
}
