//go:build linux || darwin

package platform_test

import (
	"strings"
	"testing"

	"github.com/1broseidon/setwin/internal/platform"
	"github.com/1broseidon/setwin/internal/window"
)

func TestHostBackend_DeviceNameIsPtySlave(t *testing.T) {
	b := platform.NewHostBackend(platform.HostConfig{})
	defer b.Close()
	path, err := b.Open("/W", platform.ModeRead|platform.ModeWrite)
	if err != nil {
		t.Skipf("pseudo-terminals unavailable: %v", err)
	}

	regs, err := b.Status(path, platform.StatusDeviceName)
	if err != nil {
		t.Fatalf("Status(device-name) error: %v", err)
	}
	if len(regs.Data) != platform.DeviceNameSize {
		t.Fatalf("name buffer = %d bytes, want %d", len(regs.Data), platform.DeviceNameSize)
	}
	name := window.CleanDeviceName(regs.Data)
	if !strings.HasPrefix(name, "dev/") || strings.HasPrefix(name, "/") {
		t.Fatalf("CleanDeviceName() = %q, want the slave path without its leading slash", name)
	}
}
