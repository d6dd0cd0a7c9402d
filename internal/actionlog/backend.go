package actionlog

import (
	"log/slog"

	"github.com/1broseidon/setwin/internal/platform"
	"github.com/google/uuid"
)

// Backend records every call it forwards to the wrapped backend.
type Backend struct {
	next       platform.Backend
	log        *Logger
	invocation string
}

var _ platform.Backend = (*Backend)(nil)

// Wrap decorates b so each call is written to log under a fresh invocation id.
func Wrap(b platform.Backend, log *Logger) *Backend {
	return &Backend{next: b, log: log, invocation: uuid.NewString()}
}

// Invocation returns the id attached to this run's log lines.
func (b *Backend) Invocation() string {
	return b.invocation
}

func (b *Backend) record(action ActionType, attrs ...slog.Attr) {
	b.log.Log(action, append([]slog.Attr{slog.String("run", b.invocation)}, attrs...)...)
}

func (b *Backend) failed(op string, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("op", op), slog.String("error", err.Error()))
	b.record(ActionFailed, attrs...)
}

func pathAttr(p platform.Path) slog.Attr {
	return slog.Int("path", int(p))
}

// regsAttrs names the registers a status call filled in for code.
func regsAttrs(code platform.StatusCode, regs platform.Regs) []slog.Attr {
	switch code {
	case platform.StatusScreenSize:
		return []slog.Attr{slog.Int("width", int(regs.X)), slog.Int("height", int(regs.Y))}
	case platform.StatusScreenType:
		return []slog.Attr{slog.Int("type", int(regs.A))}
	case platform.StatusColors:
		return []slog.Attr{slog.Int("fg", int(regs.A)), slog.Int("bg", int(regs.B)), slog.Int("border", int(regs.X))}
	case platform.StatusDeviceName:
		return []slog.Attr{slog.Int("name_len", len(regs.Data))}
	}
	return nil
}

func (b *Backend) CurrentPath() (platform.Path, error) {
	p, err := b.next.CurrentPath()
	if err != nil {
		b.failed("current", err)
		return p, err
	}
	b.record(ActionCurrent, pathAttr(p))
	return p, nil
}

func (b *Backend) Status(path platform.Path, code platform.StatusCode) (platform.Regs, error) {
	regs, err := b.next.Status(path, code)
	codeAttr := slog.String("code", code.String())
	if err != nil {
		b.failed("status", err, pathAttr(path), codeAttr)
		return regs, err
	}
	attrs := append([]slog.Attr{pathAttr(path), codeAttr}, regsAttrs(code, regs)...)
	b.record(ActionStatus, attrs...)
	return regs, nil
}

func (b *Backend) Write(path platform.Path, data []byte) (int, error) {
	n, err := b.next.Write(path, data)
	if err != nil {
		b.failed("write", err, pathAttr(path), slog.Int("bytes", n))
		return n, err
	}
	attrs := []slog.Attr{pathAttr(path), slog.Int("bytes", n)}
	if a, ok := b.log.preview(data); ok {
		attrs = append(attrs, a)
	}
	b.record(ActionWrite, attrs...)
	return n, nil
}

func (b *Backend) Open(name string, mode platform.OpenMode) (platform.Path, error) {
	p, err := b.next.Open(name, mode)
	deviceAttr := slog.String("device", name)
	if err != nil {
		b.failed("open", err, deviceAttr)
		return p, err
	}
	b.record(ActionOpen, pathAttr(p), deviceAttr, slog.Int("mode", int(mode)))
	return p, nil
}

func (b *Backend) Sleep(ticks int) error {
	ticksAttr := slog.Int("ticks", ticks)
	if err := b.next.Sleep(ticks); err != nil {
		b.failed("sleep", err, ticksAttr)
		return err
	}
	b.record(ActionSleep, ticksAttr)
	return nil
}

func (b *Backend) Fork(req platform.ForkRequest) error {
	attrs := []slog.Attr{
		slog.String("command", req.Command),
		slog.String("args", req.Args),
		slog.String("device", req.Device),
	}
	if err := b.next.Fork(req); err != nil {
		b.failed("fork", err, attrs...)
		return err
	}
	b.record(ActionFork, attrs...)
	return nil
}
