package window

import "fmt"

// Kind is a window's display mode.
type Kind int

const (
	KindUnspecified Kind = iota
	KindText
	KindGraphics
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindGraphics:
		return "graphics"
	default:
		return "unspecified"
	}
}

// Depth is the number of colors a graphics window displays at once.
type Depth int

const (
	DepthUnspecified Depth = 0
	Depth2           Depth = 2
	Depth4           Depth = 4
	Depth16          Depth = 16
)

// ParseDepth accepts only the color counts the subsystem supports.
func ParseDepth(n int) (Depth, error) {
	switch Depth(n) {
	case Depth2, Depth4, Depth16:
		return Depth(n), nil
	default:
		return DepthUnspecified, fmt.Errorf("invalid color depth %d", n)
	}
}

// screenTypes maps the subsystem's screen type codes onto kind and depth.
var screenTypes = map[int]struct {
	kind  Kind
	depth Depth
}{
	1: {KindText, DepthUnspecified},
	2: {KindText, DepthUnspecified},
	5: {KindGraphics, Depth2},
	6: {KindGraphics, Depth4},
	7: {KindGraphics, Depth4},
	8: {KindGraphics, Depth16},
}

// KindForTypeCode derives kind and depth from a screen type code. ok is false
// for codes outside the table.
func KindForTypeCode(code int) (kind Kind, depth Depth, ok bool) {
	st, ok := screenTypes[code]
	if !ok {
		return KindUnspecified, DepthUnspecified, false
	}
	return st.kind, st.depth, true
}
