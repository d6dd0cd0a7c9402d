package window

import (
	"bytes"

	"github.com/1broseidon/setwin/internal/platform"
)

// DefaultNewWindowDevice is the logical device that hands out a fresh window
// on every open.
const DefaultNewWindowDevice = "/W"

type statusQuerier interface {
	Status(path platform.Path, code platform.StatusCode) (platform.Regs, error)
}

// DeviceOpener is the part of the backend the provisioner needs.
type DeviceOpener interface {
	statusQuerier
	Open(name string, mode platform.OpenMode) (platform.Path, error)
}

// Provisioner picks the path a window definition is written to.
type Provisioner struct {
	Dev    DeviceOpener
	Device string
}

// Provision opens a new window when newWindow is set and otherwise targets
// the current window.
func (p *Provisioner) Provision(newWindow bool, cur *Current) (Target, error) {
	if !newWindow {
		path, err := cur.Path()
		if err != nil {
			return Target{}, err
		}
		return Target{Path: path}, nil
	}

	device := p.Device
	if device == "" {
		device = DefaultNewWindowDevice
	}
	path, err := p.Dev.Open(device, platform.ModeRead|platform.ModeWrite)
	if err != nil {
		return Target{}, err
	}
	name, err := deviceName(p.Dev, path)
	if err != nil {
		return Target{}, err
	}
	return Target{Path: path, Device: name, New: true}, nil
}

func deviceName(dev statusQuerier, path platform.Path) (string, error) {
	regs, err := dev.Status(path, platform.StatusDeviceName)
	if err != nil {
		return "", err
	}
	return CleanDeviceName(regs.Data), nil
}

// CleanDeviceName turns a raw device-name buffer into a printable name. The
// last character of the name has its top bit set; that bit is cleared in
// place and a NUL is written after it.
func CleanDeviceName(buf []byte) string {
	if len(buf) > platform.DeviceNameSize {
		buf = buf[:platform.DeviceNameSize]
	}
	for i, c := range buf {
		if c&0x80 == 0 {
			continue
		}
		buf[i] = c &^ 0x80
		if i+1 < len(buf) {
			buf[i+1] = 0
		}
		return string(bytes.TrimRight(buf[:i+1], "\x00"))
	}
	if n := bytes.IndexByte(buf, 0); n >= 0 {
		return string(buf[:n])
	}
	return string(buf)
}
