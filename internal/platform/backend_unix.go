//go:build linux || darwin

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// HostConfig describes how HostBackend answers queries a host terminal has
// no registers for.
type HostConfig struct {
	CurrentPath Path
	ScreenType  int
	Foreground  int
	Background  int
	Border      int
	TickRate    int
	// NewWindowSize is applied to freshly allocated pseudo-terminals.
	NewWindowCols int
	NewWindowRows int
}

type hostPath struct {
	file   *os.File
	master *os.File // set for pseudo-terminals opened by Open
}

// HostBackend maps window paths onto open terminal files. New windows are
// pseudo-terminals.
type HostBackend struct {
	cfg   HostConfig
	paths map[Path]*hostPath
	next  Path
}

var _ Backend = (*HostBackend)(nil)

// NewHostBackend creates a backend over the process's standard streams.
func NewHostBackend(cfg HostConfig) *HostBackend {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.NewWindowCols <= 0 {
		cfg.NewWindowCols = 80
	}
	if cfg.NewWindowRows <= 0 {
		cfg.NewWindowRows = 24
	}
	return &HostBackend{
		cfg: cfg,
		paths: map[Path]*hostPath{
			PathStdin:  {file: os.Stdin},
			PathStdout: {file: os.Stdout},
			PathStderr: {file: os.Stderr},
		},
		next: 3,
	}
}

// Close releases every path the backend opened itself.
func (b *HostBackend) Close() error {
	var firstErr error
	for p, hp := range b.paths {
		if p <= PathStderr {
			continue
		}
		if err := hp.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		if hp.master != nil {
			hp.master.Close()
		}
		delete(b.paths, p)
	}
	return firstErr
}

func (b *HostBackend) lookup(path Path) (*hostPath, error) {
	hp, ok := b.paths[path]
	if !ok || hp.file == nil {
		return nil, fmt.Errorf("path %d not open", path)
	}
	return hp, nil
}

// CurrentPath returns the configured path if it is attached to a terminal.
func (b *HostBackend) CurrentPath() (Path, error) {
	hp, err := b.lookup(b.cfg.CurrentPath)
	if err != nil {
		return 0, &DeviceError{Op: "current-path", Err: err}
	}
	if !term.IsTerminal(int(hp.file.Fd())) {
		return 0, &DeviceError{Op: "current-path", Err: fmt.Errorf("path %d is not a terminal", b.cfg.CurrentPath)}
	}
	return b.cfg.CurrentPath, nil
}

// Status answers screen size from the terminal and everything else from the
// host configuration.
func (b *HostBackend) Status(path Path, code StatusCode) (Regs, error) {
	hp, err := b.lookup(path)
	if err != nil {
		return Regs{}, &DeviceError{Op: "status", Path: path, Code: code, Err: err}
	}
	switch code {
	case StatusScreenSize:
		w, h, err := term.GetSize(int(hp.file.Fd()))
		if err != nil {
			return Regs{}, &DeviceError{Op: "status", Path: path, Code: code, Err: err}
		}
		return Regs{X: uint16(w), Y: uint16(h)}, nil
	case StatusScreenType:
		return Regs{A: uint8(b.cfg.ScreenType)}, nil
	case StatusColors:
		return Regs{A: uint8(b.cfg.Foreground), B: uint8(b.cfg.Background), X: uint16(b.cfg.Border)}, nil
	case StatusDeviceName:
		buf, err := EncodeDeviceName(strings.TrimPrefix(hp.file.Name(), "/"))
		if err != nil {
			return Regs{}, &DeviceError{Op: "status", Path: path, Code: code, Err: err}
		}
		return Regs{Data: buf}, nil
	default:
		return Regs{}, &DeviceError{Op: "status", Path: path, Code: code, Err: fmt.Errorf("unknown service request")}
	}
}

// Write sends b to the path's file.
func (b *HostBackend) Write(path Path, data []byte) (int, error) {
	hp, err := b.lookup(path)
	if err != nil {
		return 0, &DeviceError{Op: "write", Path: path, Err: err}
	}
	n, err := hp.file.Write(data)
	if err != nil {
		return n, &DeviceError{Op: "write", Path: path, Err: err}
	}
	return n, nil
}

// Open opens a device file when name is a filesystem path under /dev, and
// allocates a pseudo-terminal for any logical window name.
func (b *HostBackend) Open(name string, mode OpenMode) (Path, error) {
	var hp *hostPath
	if strings.HasPrefix(name, "/dev/") {
		f, err := os.OpenFile(name, openFlags(mode), 0)
		if err != nil {
			return 0, &DeviceError{Op: "open " + name, Err: err}
		}
		hp = &hostPath{file: f}
	} else {
		master, tty, err := pty.Open()
		if err != nil {
			return 0, &DeviceError{Op: "open " + name, Err: err}
		}
		size := &pty.Winsize{Cols: uint16(b.cfg.NewWindowCols), Rows: uint16(b.cfg.NewWindowRows)}
		if err := pty.Setsize(master, size); err != nil {
			master.Close()
			tty.Close()
			return 0, &DeviceError{Op: "open " + name, Err: err}
		}
		hp = &hostPath{file: tty, master: master}
	}

	for {
		if _, used := b.paths[b.next]; !used {
			break
		}
		b.next++
	}
	path := b.next
	b.paths[path] = hp
	b.next++
	return path, nil
}

func openFlags(mode OpenMode) int {
	switch {
	case mode&ModeRead != 0 && mode&ModeWrite != 0:
		return os.O_RDWR
	case mode&ModeWrite != 0:
		return os.O_WRONLY
	default:
		return os.O_RDONLY
	}
}

// Sleep blocks for ticks at the configured tick rate.
func (b *HostBackend) Sleep(ticks int) error {
	if ticks < 0 {
		return &DeviceError{Op: "sleep", Err: fmt.Errorf("negative tick count %d", ticks)}
	}
	time.Sleep(time.Duration(ticks) * time.Second / time.Duration(b.cfg.TickRate))
	return nil
}

// Fork starts req.Command in its own session with the device as its
// controlling terminal. The child is not waited for.
func (b *HostBackend) Fork(req ForkRequest) error {
	op := "fork " + req.Command
	if req.Device == "" {
		return &DeviceError{Op: op, Err: fmt.Errorf("no device to bind")}
	}
	devPath := filepath.Join("/", req.Device)
	dev, err := os.OpenFile(devPath, os.O_RDWR, 0)
	if err != nil {
		return &DeviceError{Op: op, Err: err}
	}
	defer dev.Close()

	cmd := exec.Command(req.Command, strings.Fields(req.Args)...)
	cmd.Stdin = dev
	cmd.Stdout = dev
	cmd.Stderr = dev
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}
	// Hand the pty master to the child so the window outlives this process.
	for _, hp := range b.paths {
		if hp.master != nil && hp.file.Name() == devPath {
			cmd.ExtraFiles = append(cmd.ExtraFiles, hp.master)
		}
	}
	if err := cmd.Start(); err != nil {
		return &DeviceError{Op: op, Err: err}
	}
	return cmd.Process.Release()
}
