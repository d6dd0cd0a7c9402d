package platform

import (
	"fmt"
	"io"
	"sync"
)

// WindowState is the register view of one window kept by MemoryBackend.
type WindowState struct {
	Width      int
	Height     int
	TypeCode   int
	Foreground int
	Background int
	Border     int
	DeviceName string
}

// WriteRecord captures one Write call.
type WriteRecord struct {
	Path Path
	Data []byte
}

// MemoryBackend is an in-memory display subsystem. It records every call and
// never touches a real device, which makes it the backend for dry runs.
type MemoryBackend struct {
	mu sync.Mutex

	Current Path
	Windows map[Path]WindowState

	// NewWindows is consumed in order by Open.
	NewWindows []WindowState

	// Fail makes the named operation ("current", "status", "write", "open",
	// "sleep", "fork") return the given error.
	Fail map[string]error

	// Trace, when set, receives one line per state-changing call.
	Trace io.Writer

	Calls  []string
	Writes []WriteRecord
	Forks  []ForkRequest
	Slept  []int
	nextID Path
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates a backend whose current window is path 1 with the
// given state.
func NewMemoryBackend(current WindowState) *MemoryBackend {
	return &MemoryBackend{
		Current: PathStdout,
		Windows: map[Path]WindowState{PathStdout: current},
		Fail:    make(map[string]error),
		nextID:  3,
	}
}

func (m *MemoryBackend) record(op string) error {
	m.Calls = append(m.Calls, op)
	if m.Fail != nil {
		if err := m.Fail[op]; err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryBackend) tracef(format string, args ...any) {
	if m.Trace != nil {
		fmt.Fprintf(m.Trace, format, args...)
	}
}

// CurrentPath returns the configured current path.
func (m *MemoryBackend) CurrentPath() (Path, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("current"); err != nil {
		return 0, &DeviceError{Op: "current-path", Err: err}
	}
	return m.Current, nil
}

// Status answers a status query from the window table.
func (m *MemoryBackend) Status(path Path, code StatusCode) (Regs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("status"); err != nil {
		return Regs{}, &DeviceError{Op: "status", Path: path, Code: code, Err: err}
	}
	w, ok := m.Windows[path]
	if !ok {
		return Regs{}, &DeviceError{Op: "status", Path: path, Code: code, Err: fmt.Errorf("path not open")}
	}
	switch code {
	case StatusScreenSize:
		return Regs{X: uint16(w.Width), Y: uint16(w.Height)}, nil
	case StatusScreenType:
		return Regs{A: uint8(w.TypeCode)}, nil
	case StatusColors:
		return Regs{A: uint8(w.Foreground), B: uint8(w.Background), X: uint16(w.Border)}, nil
	case StatusDeviceName:
		buf, err := EncodeDeviceName(w.DeviceName)
		if err != nil {
			return Regs{}, &DeviceError{Op: "status", Path: path, Code: code, Err: err}
		}
		return Regs{Data: buf}, nil
	default:
		return Regs{}, &DeviceError{Op: "status", Path: path, Code: code, Err: fmt.Errorf("unknown service request")}
	}
}

// Write records the bytes written to path.
func (m *MemoryBackend) Write(path Path, b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("write"); err != nil {
		return 0, &DeviceError{Op: "write", Path: path, Err: err}
	}
	if _, ok := m.Windows[path]; !ok {
		return 0, &DeviceError{Op: "write", Path: path, Err: fmt.Errorf("path not open")}
	}
	data := make([]byte, len(b))
	copy(data, b)
	m.Writes = append(m.Writes, WriteRecord{Path: path, Data: data})
	m.tracef("write path=%d: % X\n", path, data)
	return len(b), nil
}

// Open hands out the next entry of NewWindows on a fresh path.
func (m *MemoryBackend) Open(name string, mode OpenMode) (Path, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("open"); err != nil {
		return 0, &DeviceError{Op: "open " + name, Err: err}
	}
	if len(m.NewWindows) == 0 {
		return 0, &DeviceError{Op: "open " + name, Err: fmt.Errorf("no free window")}
	}
	w := m.NewWindows[0]
	m.NewWindows = m.NewWindows[1:]
	for {
		if _, used := m.Windows[m.nextID]; !used {
			break
		}
		m.nextID++
	}
	path := m.nextID
	m.Windows[path] = w
	m.nextID++
	m.tracef("open %s -> path=%d (%s)\n", name, path, w.DeviceName)
	return path, nil
}

// Sleep records the requested tick count without sleeping.
func (m *MemoryBackend) Sleep(ticks int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("sleep"); err != nil {
		return &DeviceError{Op: "sleep", Err: err}
	}
	m.Slept = append(m.Slept, ticks)
	m.tracef("sleep %d ticks\n", ticks)
	return nil
}

// Fork records the request.
func (m *MemoryBackend) Fork(req ForkRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("fork"); err != nil {
		return &DeviceError{Op: "fork " + req.Command, Err: err}
	}
	m.Forks = append(m.Forks, req)
	m.tracef("fork %s %q on /%s\n", req.Command, req.Args, req.Device)
	return nil
}
