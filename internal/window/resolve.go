package window

import (
	"log/slog"

	"github.com/1broseidon/setwin/internal/platform"
)

// StatusReader is the part of the backend the resolver needs.
type StatusReader interface {
	CurrentPath() (platform.Path, error)
	Status(path platform.Path, code platform.StatusCode) (platform.Regs, error)
}

// Current queries the caller's active window on demand. Each group of
// values is fetched at most once.
type Current struct {
	dev StatusReader

	path      platform.Path
	havePath  bool
	state     State
	haveSize  bool
	haveColor bool
	haveType  bool
}

// NewCurrent returns a lazy view of the current window behind dev.
func NewCurrent(dev StatusReader) *Current {
	return &Current{dev: dev}
}

// Path returns the current window's path.
func (c *Current) Path() (platform.Path, error) {
	if c.havePath {
		return c.path, nil
	}
	p, err := c.dev.CurrentPath()
	if err != nil {
		return 0, err
	}
	c.path, c.havePath = p, true
	return p, nil
}

func (c *Current) status(code platform.StatusCode) (platform.Regs, error) {
	p, err := c.Path()
	if err != nil {
		return platform.Regs{}, err
	}
	return c.dev.Status(p, code)
}

// Size returns the current window's width and height.
func (c *Current) Size() (width, height int, err error) {
	if !c.haveSize {
		regs, err := c.status(platform.StatusScreenSize)
		if err != nil {
			return 0, 0, err
		}
		c.state.Width, c.state.Height = int(regs.X), int(regs.Y)
		c.haveSize = true
	}
	return c.state.Width, c.state.Height, nil
}

// Colors returns the current foreground, background and border colors.
func (c *Current) Colors() (fg, bg, border int, err error) {
	if !c.haveColor {
		regs, err := c.status(platform.StatusColors)
		if err != nil {
			return 0, 0, 0, err
		}
		c.state.Foreground, c.state.Background, c.state.Border = int(regs.A), int(regs.B), int(regs.X)
		c.haveColor = true
	}
	return c.state.Foreground, c.state.Background, c.state.Border, nil
}

// TypeCode returns the current window's raw screen type code.
func (c *Current) TypeCode() (int, error) {
	if !c.haveType {
		regs, err := c.status(platform.StatusScreenType)
		if err != nil {
			return 0, err
		}
		c.state.TypeCode = int(regs.A)
		c.haveType = true
	}
	return c.state.TypeCode, nil
}

// Resolve fills every undefined field of spec from the current window and
// validates the result. Explicit values always win; the current window is
// only queried for fields the spec leaves open, and cur may be nil when
// spec.Explicit() holds.
func Resolve(spec PartialSpec, cur *Current, logger *slog.Logger) (Descriptor, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if spec.Explicit() {
		d := Descriptor{
			Width:      *spec.Width,
			Height:     *spec.Height,
			Foreground: *spec.Foreground,
			Background: *spec.Background,
			Border:     *spec.Border,
			Kind:       spec.Kind,
			Depth:      spec.Depth,
		}
		return finish(d, logger)
	}
	var d Descriptor

	if spec.Width == nil || spec.Height == nil {
		w, h, err := cur.Size()
		if err != nil {
			return Descriptor{}, err
		}
		d.Width, d.Height = pick(spec.Width, w), pick(spec.Height, h)
	} else {
		d.Width, d.Height = *spec.Width, *spec.Height
	}

	if spec.Foreground == nil || spec.Background == nil || spec.Border == nil {
		fg, bg, border, err := cur.Colors()
		if err != nil {
			return Descriptor{}, err
		}
		d.Foreground, d.Background, d.Border = pick(spec.Foreground, fg), pick(spec.Background, bg), pick(spec.Border, border)
	} else {
		d.Foreground, d.Background, d.Border = *spec.Foreground, *spec.Background, *spec.Border
	}

	d.Kind, d.Depth = spec.Kind, spec.Depth
	if d.Kind == KindUnspecified || (d.Kind == KindGraphics && d.Depth == DepthUnspecified) {
		code, err := cur.TypeCode()
		if err != nil {
			return Descriptor{}, err
		}
		kind, depth, ok := KindForTypeCode(code)
		if !ok {
			return Descriptor{}, &ValidationError{Kind: d.Kind, Width: d.Width, Depth: d.Depth, TypeCode: code, Err: ErrUnknownScreenType}
		}
		logger.Debug("current window type", "code", code, "kind", kind, "depth", int(depth))
		if d.Kind == KindUnspecified {
			d.Kind = kind
		}
		if d.Kind == KindGraphics && d.Depth == DepthUnspecified {
			d.Depth = depth
		}
	}
	return finish(d, logger)
}

func finish(d Descriptor, logger *slog.Logger) (Descriptor, error) {
	if d.Kind == KindText {
		d.Depth = DepthUnspecified
	}
	if err := Validate(d); err != nil {
		return Descriptor{}, err
	}
	logger.Debug("resolved window", "descriptor", d.String())
	return d, nil
}

func pick(explicit *int, current int) int {
	if explicit != nil {
		return *explicit
	}
	return current
}
