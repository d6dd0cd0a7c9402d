// Package cliargs turns setwin's command line into a partial window spec.
//
// The grammar predates getopt conventions: flags are single letters matched
// case-insensitively, the color depth is glued to its flag (-c16), and every
// other token is a positional number.
package cliargs

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/1broseidon/setwin/internal/window"
)

var (
	ErrNotNumber         = errors.New("expected a number")
	ErrColorDepth        = errors.New("number of colors must be 2, 4, or 16")
	ErrUnknownFlag       = errors.New("invalid flag")
	ErrMissingDimensions = errors.New("width and height are required")
)

// InputError reports a command-line token that could not be used.
type InputError struct {
	Token string
	Err   error
}

func (e *InputError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Token == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%q: %v", e.Token, e.Err)
}

func (e *InputError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// positional slots, in command-line order.
const (
	slotWidth = iota
	slotHeight
	slotForeground
	slotBackground
	slotBorder
	slotCount
)

// Parse scans args (without the program name). The last of -t/-g wins;
// positionals after the fifth are ignored.
func Parse(args []string) (window.PartialSpec, error) {
	var spec window.PartialSpec
	slot := 0

	for _, tok := range args {
		if len(tok) > 0 && tok[0] == '-' {
			if err := parseFlag(tok, &spec); err != nil {
				return window.PartialSpec{}, err
			}
			continue
		}

		n, err := leadingNumber(tok)
		if err != nil {
			return window.PartialSpec{}, &InputError{Token: tok, Err: err}
		}
		if slot < slotCount {
			v := n
			switch slot {
			case slotWidth:
				spec.Width = &v
			case slotHeight:
				spec.Height = &v
			case slotForeground:
				spec.Foreground = &v
			case slotBackground:
				spec.Background = &v
			case slotBorder:
				spec.Border = &v
			}
		}
		slot++
	}
	return spec, nil
}

func parseFlag(tok string, spec *window.PartialSpec) error {
	if len(tok) < 2 {
		return &InputError{Token: tok, Err: ErrUnknownFlag}
	}
	switch tok[1] {
	case 't', 'T':
		spec.Kind = window.KindText
	case 'g', 'G':
		spec.Kind = window.KindGraphics
	case 'c', 'C':
		n, err := leadingNumber(tok[2:])
		if err != nil {
			return &InputError{Token: tok, Err: err}
		}
		depth, err := window.ParseDepth(n)
		if err != nil {
			return &InputError{Token: tok, Err: ErrColorDepth}
		}
		spec.Depth = depth
	case 'n', 'N':
		if len(tok) != 2 {
			return &InputError{Token: tok, Err: ErrUnknownFlag}
		}
		spec.NewWindow = true
	default:
		return &InputError{Token: tok, Err: ErrUnknownFlag}
	}
	return nil
}

// leadingNumber parses the decimal digits at the start of s. s must begin
// with a digit; anything after the digits is ignored.
func leadingNumber(s string) (int, error) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, ErrNotNumber
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotNumber, err)
	}
	return n, nil
}

// RequireDimensions rejects a spec without width or height.
func RequireDimensions(spec window.PartialSpec) error {
	if spec.Width == nil || spec.Height == nil {
		return &InputError{Err: ErrMissingDimensions}
	}
	return nil
}
