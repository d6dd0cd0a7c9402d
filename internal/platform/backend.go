package platform

import "fmt"

// Path is a numeric handle for an open channel to a window device.
type Path uint8

const (
	// PathStdin, PathStdout and PathStderr are inherited by every process.
	PathStdin  Path = 0
	PathStdout Path = 1
	PathStderr Path = 2
)

// StatusCode selects the information a device status query returns.
type StatusCode uint8

const (
	StatusDeviceName StatusCode = 0x0E // name buffer in Regs.Data
	StatusScreenSize StatusCode = 0x26 // width in X, height in Y
	StatusScreenType StatusCode = 0x93 // type code in A
	StatusColors     StatusCode = 0x96 // foreground in A, background in B, border in X
)

func (c StatusCode) String() string {
	switch c {
	case StatusDeviceName:
		return "device-name"
	case StatusScreenSize:
		return "screen-size"
	case StatusScreenType:
		return "screen-type"
	case StatusColors:
		return "colors"
	default:
		return fmt.Sprintf("status-0x%02X", uint8(c))
	}
}

// OpenMode is the access mode requested when opening a device path.
type OpenMode uint8

const (
	ModeRead  OpenMode = 0x01
	ModeWrite OpenMode = 0x02
)

// DeviceNameSize bounds the buffer a device-name query fills.
const DeviceNameSize = 32

// Regs carries the register-like values a status query returns.
type Regs struct {
	A    uint8
	B    uint8
	X    uint16
	Y    uint16
	U    uint16
	Data []byte
}

// ForkRequest describes a process to start on a window device.
type ForkRequest struct {
	Command string
	Args    string
	Device  string
}

// Backend abstracts the display subsystem primitives. Every call returns its
// own result; no state is shared between calls.
type Backend interface {
	CurrentPath() (Path, error)
	Status(path Path, code StatusCode) (Regs, error)
	Write(path Path, b []byte) (int, error)
	Open(name string, mode OpenMode) (Path, error)
	Sleep(ticks int) error
	Fork(req ForkRequest) error
}

// DeviceError reports a failed backend operation.
type DeviceError struct {
	Op   string
	Path Path
	Code StatusCode
	Err  error
}

func (e *DeviceError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Op {
	case "status":
		return fmt.Sprintf("%s %s on path %d: %v", e.Op, e.Code, e.Path, e.Err)
	case "write":
		return fmt.Sprintf("%s to path %d: %v", e.Op, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *DeviceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EncodeDeviceName renders name into a device-name buffer with the top bit
// of the last character set as the terminator.
func EncodeDeviceName(name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("empty device name")
	}
	if len(name) >= DeviceNameSize {
		return nil, fmt.Errorf("device name %q exceeds %d bytes", name, DeviceNameSize-1)
	}
	buf := make([]byte, DeviceNameSize)
	copy(buf, name)
	buf[len(name)-1] |= 0x80
	return buf, nil
}
