// Package color provides validation and normalization for tag colors.
//
// Tag colors are hex RGBA strings, conventionally written with a leading
// '#' marker ("#ff0000ff"). Stored colors are right-padded to a fixed
// width so a short RGB value becomes fully opaque.
package color

import "strings"

const (
	// Default is fully opaque black.
	Default = "#000000ff"

	// Width is the stored length of a color, including the '#' marker.
	Width = 9

	// fill pads short colors; 'f' keeps missing alpha opaque.
	fill = 'f'

	// MaxDigits is the longest accepted color: RRGGBBAA.
	MaxDigits = Width - 1

	swatchDigits = 6
)

// IsHex reports whether s is a hex color. The leading '#' is optional
// unless requireHash is set; one to MaxDigits hex digits must follow it.
func IsHex(s string, requireHash bool) bool {
	digits, hadHash := strings.CutPrefix(s, "#")
	if requireHash && !hadHash {
		return false
	}
	if digits == "" || len(digits) > MaxDigits {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return false
		}
	}
	return true
}

// Pad right-pads s with 'f' to Width characters. Longer values are
// returned unchanged.
func Pad(s string) string {
	if len(s) >= Width {
		return s
	}
	return s + strings.Repeat(string(fill), Width-len(s))
}

// Normalize returns the stored form of a requested color: Default when
// empty, padded otherwise.
func Normalize(s string) string {
	if s == "" {
		return Default
	}
	return Pad(s)
}

// Swatch returns "#rrggbb" built from the first six hex digits of s,
// suitable for an <input type="color"> value. Colors with fewer than six
// digits render as black.
func Swatch(s string) string {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) < swatchDigits {
		return "#000000"
	}
	return "#" + strings.ToLower(digits[:swatchDigits])
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
