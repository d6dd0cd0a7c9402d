package window

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/setwin/internal/platform"
)

const (
	// DefaultSettleTicks is how long the new-window branch sleeps after
	// spawning the shell. Nothing signals readiness.
	DefaultSettleTicks = 30
)

// Applier writes a window definition to its target and starts a shell there.
type Applier struct {
	Dev         platform.Backend
	ConsolePath platform.Path
	SettleTicks int
	// Shell is the command started on the window; empty skips the spawn.
	Shell string
	// ShellArgs is the argument template; {{dev}} expands to the device name.
	ShellArgs string
	Logger    *slog.Logger
}

// FormatShellArgs expands the {{dev}} placeholder in tmpl.
func FormatShellArgs(tmpl, device string) string {
	return strings.ReplaceAll(tmpl, "{{dev}}", device)
}

func (a *Applier) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

func (a *Applier) write(path platform.Path, b []byte, step string) error {
	a.logger().Debug("write", "step", step, "path", int(path), "bytes", fmt.Sprintf("% X", b))
	n, err := a.Dev.Write(path, b)
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	if n != len(b) {
		return fmt.Errorf("%s: %w", step, &platform.DeviceError{Op: "write", Path: path, Err: fmt.Errorf("short write (%d of %d bytes)", n, len(b))})
	}
	return nil
}

// Apply runs the write sequence for t. A new window gets the definition
// without the end-definition prefix followed by a select. The current window
// is first released to the console path, then redefined and reselected.
//
// Write and sleep failures stop the sequence. A shell that fails to start is
// returned as *SpawnError; the window stays configured.
func (a *Applier) Apply(t Target, seq Sequence) error {
	if t.New {
		return a.applyNew(t, seq)
	}
	return a.applyCurrent(t, seq)
}

func (a *Applier) applyNew(t Target, seq Sequence) error {
	a.logger().Info("defining new window", "path", int(t.Path), "device", t.Device)
	if err := a.write(t.Path, seq.Definition(), "define window"); err != nil {
		return err
	}
	if err := a.write(t.Path, SelectSequence, "select window"); err != nil {
		return err
	}
	spawnErr := a.spawn(t)
	if err := a.Dev.Sleep(a.SettleTicks); err != nil {
		return errors.Join(spawnErr, fmt.Errorf("settle: %w", err))
	}
	return spawnErr
}

func (a *Applier) applyCurrent(t Target, seq Sequence) error {
	a.logger().Info("redefining current window", "path", int(t.Path))
	if err := a.write(a.ConsolePath, SelectSequence, "select console"); err != nil {
		return err
	}
	if err := a.write(t.Path, seq.Full(), "define window"); err != nil {
		return err
	}
	if err := a.write(t.Path, SelectSequence, "select window"); err != nil {
		return err
	}
	return a.spawn(t)
}

func (a *Applier) spawn(t Target) error {
	if a.Shell == "" {
		return nil
	}
	device := t.Device
	if device == "" {
		name, err := deviceName(a.Dev, t.Path)
		if err != nil {
			return &SpawnError{Err: err}
		}
		device = name
	}
	req := platform.ForkRequest{
		Command: a.Shell,
		Args:    FormatShellArgs(a.ShellArgs, device),
		Device:  device,
	}
	a.logger().Debug("fork", "command", req.Command, "args", req.Args, "device", req.Device)
	if err := a.Dev.Fork(req); err != nil {
		return &SpawnError{Device: device, Err: err}
	}
	return nil
}
