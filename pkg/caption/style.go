package caption

import (
	"fmt"
	"strconv"
	"strings"
)

// Font size bounds for burned-in cues. Values outside the range are
// clamped to the nearest bound; missing or unparsable input falls back to
// DefaultFontSize.
const (
	MinFontSize     = 16
	MaxFontSize     = 48
	DefaultFontSize = 24
)

// DefaultFontColor is the fallback cue color in RRGGBB hex
const DefaultFontColor = "FFFFFF"

const (
	defaultOutlineColour = "&H00000000" // opaque black
	defaultOutlineWidth  = 2
	defaultShadowDepth   = 1
)

// StyleInput carries raw, untrusted style fields as they arrive on the
// wire. Both fields are optional.
type StyleInput struct {
	FontSize  string
	FontColor string
}

// Style is a resolved caption rendering style. PrimaryColour and
// OutlineColour are in the &H00BBGGRR form the subtitles filter expects.
type Style struct {
	FontSize      int
	PrimaryColour string
	OutlineColour string
	Outline       int
	Shadow        int
}

// ResolveStyle validates and normalizes raw style input. Bad input never
// fails a burn request; it degrades to defaults.
func ResolveStyle(in StyleInput) Style {
	size := DefaultFontSize
	if raw := strings.TrimSpace(in.FontSize); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			size = clampFontSize(n)
		}
	}

	color := DefaultFontColor
	if normalized, ok := NormalizeHexColor(in.FontColor); ok {
		color = normalized
	}

	return Style{
		FontSize:      size,
		PrimaryColour: ASSColour(color),
		OutlineColour: defaultOutlineColour,
		Outline:       defaultOutlineWidth,
		Shadow:        defaultShadowDepth,
	}
}

// ForceStyle renders the style as a force_style override string for the
// subtitles filter.
func (s Style) ForceStyle() string {
	return fmt.Sprintf("FontSize=%d,PrimaryColour=%s,OutlineColour=%s,Outline=%d,Shadow=%d",
		s.FontSize, s.PrimaryColour, s.OutlineColour, s.Outline, s.Shadow)
}

func clampFontSize(n int) int {
	if n < MinFontSize {
		return MinFontSize
	}
	if n > MaxFontSize {
		return MaxFontSize
	}
	return n
}

// NormalizeHexColor accepts "#RRGGBB" or bare "RRGGBB" and returns the
// uppercase six-digit form. Anything else is rejected.
func NormalizeHexColor(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return "", false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return "", false
		}
	}
	return strings.ToUpper(s), true
}

// ASSColour converts an RRGGBB hex color to the &H00BBGGRR byte order used
// by libass, with a fully opaque alpha component.
func ASSColour(rgb string) string {
	rr, gg, bb := rgb[0:2], rgb[2:4], rgb[4:6]
	return "&H00" + bb + gg + rr
}
