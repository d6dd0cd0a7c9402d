package window

import (
	"errors"
	"fmt"

	"github.com/1broseidon/setwin/internal/platform"
)

// PartialSpec holds the window parameters a user asked for. Nil fields are
// taken from the current window.
type PartialSpec struct {
	Width      *int
	Height     *int
	Foreground *int
	Background *int
	Border     *int
	Kind       Kind
	Depth      Depth
	NewWindow  bool
}

// Explicit reports whether resolution can finish without querying the
// current window.
func (s PartialSpec) Explicit() bool {
	if s.Width == nil || s.Height == nil || s.Foreground == nil || s.Background == nil || s.Border == nil {
		return false
	}
	switch s.Kind {
	case KindText:
		return true
	case KindGraphics:
		return s.Depth != DepthUnspecified
	default:
		return false
	}
}

// State is what the current window reports about itself.
type State struct {
	Width      int
	Height     int
	Foreground int
	Background int
	Border     int
	TypeCode   int
}

// Descriptor is a fully resolved window definition.
type Descriptor struct {
	Width      int
	Height     int
	Foreground int
	Background int
	Border     int
	Kind       Kind
	Depth      Depth // graphics only
}

func (d Descriptor) String() string {
	if d.Kind == KindGraphics {
		return fmt.Sprintf("%s/%d %dx%d fg=%d bg=%d border=%d", d.Kind, d.Depth, d.Width, d.Height, d.Foreground, d.Background, d.Border)
	}
	return fmt.Sprintf("%s %dx%d fg=%d bg=%d border=%d", d.Kind, d.Width, d.Height, d.Foreground, d.Background, d.Border)
}

// Target is the window path the definition is applied to.
type Target struct {
	Path   platform.Path
	Device string // empty until known
	New    bool
}

var (
	ErrUnsupportedMode   = errors.New("unsupported parameter combination")
	ErrUnknownScreenType = errors.New("unknown screen type")
)

// ValidationError reports a resolved definition the subsystem cannot show.
type ValidationError struct {
	Kind     Kind
	Width    int
	Depth    Depth
	TypeCode int
	Err      error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if errors.Is(e.Err, ErrUnknownScreenType) {
		return fmt.Sprintf("%v %d on current window", e.Err, e.TypeCode)
	}
	if e.Kind == KindGraphics {
		return fmt.Sprintf("%v: %s, width %d, %d colors", e.Err, e.Kind, e.Width, e.Depth)
	}
	return fmt.Sprintf("%v: %s, width %d", e.Err, e.Kind, e.Width)
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SpawnError reports a shell that could not be started on a window that has
// already been configured.
type SpawnError struct {
	Device string
	Err    error
}

func (e *SpawnError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Device == "" {
		return fmt.Sprintf("shell: %v", e.Err)
	}
	return fmt.Sprintf("shell on /%s: %v", e.Device, e.Err)
}

func (e *SpawnError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
