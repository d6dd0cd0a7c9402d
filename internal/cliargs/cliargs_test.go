package cliargs

import (
	"errors"
	"testing"

	"github.com/1broseidon/setwin/internal/window"
)

func TestParse_Positionals(t *testing.T) {
	spec, err := Parse([]string{"80", "24", "1", "0", "2", "99"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	got := []*int{spec.Width, spec.Height, spec.Foreground, spec.Background, spec.Border}
	want := []int{80, 24, 1, 0, 2}
	for i := range want {
		if got[i] == nil || *got[i] != want[i] {
			t.Fatalf("slot %d = %v, want %d", i, got[i], want[i])
		}
	}
	if err := RequireDimensions(spec); err != nil {
		t.Fatalf("RequireDimensions() error: %v", err)
	}
}

func TestParse_OptionalColorsStayUnset(t *testing.T) {
	spec, err := Parse([]string{"40", "12"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if spec.Foreground != nil || spec.Background != nil || spec.Border != nil {
		t.Fatalf("colors = %v %v %v, want unset", spec.Foreground, spec.Background, spec.Border)
	}
	if spec.Kind != window.KindUnspecified || spec.Depth != window.DepthUnspecified || spec.NewWindow {
		t.Fatalf("flags = %+v, want defaults", spec)
	}
}

func TestParse_Flags(t *testing.T) {
	spec, err := Parse([]string{"-N", "-t", "-G", "-c4", "32", "24"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !spec.NewWindow {
		t.Fatal("NewWindow = false, want true")
	}
	if spec.Kind != window.KindGraphics {
		t.Fatalf("Kind = %s, want graphics (last flag wins)", spec.Kind)
	}
	if spec.Depth != window.Depth4 {
		t.Fatalf("Depth = %d, want 4", spec.Depth)
	}

	spec, err = Parse([]string{"-g", "-text", "80", "24"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if spec.Kind != window.KindText {
		t.Fatalf("Kind = %s, want text", spec.Kind)
	}
}

func TestParse_ColorDepth(t *testing.T) {
	tests := []struct {
		tok   string
		depth window.Depth
		err   error
	}{
		{tok: "-c2", depth: window.Depth2},
		{tok: "-C16", depth: window.Depth16},
		{tok: "-c4colors", depth: window.Depth4},
		{tok: "-c3", err: ErrColorDepth},
		{tok: "-c8", err: ErrColorDepth},
		{tok: "-c", err: ErrNotNumber},
		{tok: "-cx", err: ErrNotNumber},
	}
	for _, tt := range tests {
		spec, err := Parse([]string{tt.tok, "80", "24"})
		if tt.err != nil {
			var ierr *InputError
			if !errors.As(err, &ierr) || !errors.Is(err, tt.err) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.tok, err, tt.err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.tok, err)
		}
		if spec.Depth != tt.depth {
			t.Fatalf("Parse(%q) depth = %d, want %d", tt.tok, spec.Depth, tt.depth)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		args []string
		err  error
	}{
		{args: []string{"-x", "80", "24"}, err: ErrUnknownFlag},
		{args: []string{"-new", "80", "24"}, err: ErrUnknownFlag},
		{args: []string{"-", "80"}, err: ErrUnknownFlag},
		{args: []string{"80", "wide"}, err: ErrNotNumber},
		{args: []string{"+5"}, err: ErrNotNumber},
	}
	for _, tt := range tests {
		_, err := Parse(tt.args)
		if !errors.Is(err, tt.err) {
			t.Fatalf("Parse(%q) error = %v, want %v", tt.args, err, tt.err)
		}
	}
}

func TestParse_TrailingGarbageIgnored(t *testing.T) {
	spec, err := Parse([]string{"80x", "24"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if *spec.Width != 80 {
		t.Fatalf("Width = %d, want 80", *spec.Width)
	}
}

func TestRequireDimensions_Missing(t *testing.T) {
	spec, err := Parse([]string{"-g", "80"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if err := RequireDimensions(spec); !errors.Is(err, ErrMissingDimensions) {
		t.Fatalf("RequireDimensions() error = %v, want ErrMissingDimensions", err)
	}
}
