package window

// Sequence is the binary command that ends the current window definition
// and defines a new one.
type Sequence [12]byte

const (
	offsetMode       = 4
	offsetWidth      = 7
	offsetHeight     = 8
	offsetForeground = 9
	offsetBackground = 10
	offsetBorder     = 11

	// wideThreshold is the largest width that still counts as narrow.
	wideThreshold = 40
)

var sequencePrefix = [4]byte{0x1B, 0x24, 0x1B, 0x20}

// SelectSequence makes the path it is written to the active window.
var SelectSequence = []byte{0x1B, 0x21}

// Full returns the whole sequence, including the end-definition prefix.
func (s *Sequence) Full() []byte {
	return s[:]
}

// Definition returns the sequence without the end-definition prefix, for
// paths that have no definition yet.
func (s *Sequence) Definition() []byte {
	return s[2:]
}

// ModeCode looks up the subsystem screen mode for a kind, width and depth.
func ModeCode(kind Kind, width int, depth Depth) (byte, bool) {
	wide := width > wideThreshold
	switch kind {
	case KindText:
		if wide {
			return 0x02, true
		}
		return 0x01, true
	case KindGraphics:
		switch {
		case wide && depth == Depth2:
			return 0x05, true
		case wide && depth == Depth4:
			return 0x07, true
		case !wide && depth == Depth4:
			return 0x06, true
		case !wide && depth == Depth16:
			return 0x08, true
		}
	}
	return 0, false
}

// Validate reports whether d maps onto a supported screen mode.
func Validate(d Descriptor) error {
	if _, ok := ModeCode(d.Kind, d.Width, d.Depth); !ok {
		return &ValidationError{Kind: d.Kind, Width: d.Width, Depth: d.Depth, Err: ErrUnsupportedMode}
	}
	return nil
}

// Encode builds the control sequence for d. Numeric fields keep their low
// byte only.
func Encode(d Descriptor) (Sequence, error) {
	mode, ok := ModeCode(d.Kind, d.Width, d.Depth)
	if !ok {
		return Sequence{}, &ValidationError{Kind: d.Kind, Width: d.Width, Depth: d.Depth, Err: ErrUnsupportedMode}
	}
	var s Sequence
	copy(s[:], sequencePrefix[:])
	s[offsetMode] = mode
	s[offsetWidth] = byte(d.Width)
	s[offsetHeight] = byte(d.Height)
	s[offsetForeground] = byte(d.Foreground)
	s[offsetBackground] = byte(d.Background)
	s[offsetBorder] = byte(d.Border)
	return s, nil
}
