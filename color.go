package avatar

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
	"unicode/utf16"

	"golang.org/x/image/colornames"
	"golang.org/x/xerrors"
)

// StringToColor derives a background color from a string. The hash runs over
// UTF-16 code units with 32-bit wraparound, so equal strings always give the
// same #rrggbb color.
func StringToColor(s string) string {
	var hash int32
	for _, c := range utf16.Encode([]rune(s)) {
		hash = int32(c) + ((hash << 5) - hash)
	}
	var b strings.Builder
	b.WriteByte('#')
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, "%02x", (hash>>(uint(i)*8))&0xFF)
	}
	return b.String()
}

// ParseColor understands #rgb, #rgba, #rrggbb, #rrggbbaa, "transparent" and
// the SVG 1.1 color keywords
func ParseColor(s string) (color.NRGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(name, "#") {
		return parseHexColor(name[1:])
	}
	if name == "transparent" {
		return color.NRGBA{}, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return color.NRGBA{}, invalidColorError(s, xerrors.Caller(xErrorsFrameCaller))
}

func parseHexColor(digits string) (color.NRGBA, error) {
	if len(digits) == 3 || len(digits) == 4 {
		var expanded strings.Builder
		for _, d := range digits {
			expanded.WriteRune(d)
			expanded.WriteRune(d)
		}
		digits = expanded.String()
	}
	if len(digits) != 6 && len(digits) != 8 {
		return color.NRGBA{}, invalidColorError("#"+digits, xerrors.Caller(xErrorsFrameCaller+1))
	}
	rgba, err := hex.DecodeString(digits)
	if err != nil {
		return color.NRGBA{}, invalidColorError("#"+digits, xerrors.Caller(xErrorsFrameCaller+1))
	}
	c := color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: 0xFF}
	if len(rgba) == 4 {
		c.A = rgba[3]
	}
	return c, nil
}

func invalidColorError(value string, frame xerrors.Frame) *Error {
	return &Error{
		Reference: value,
		Message:   "Unable to parse color",
		Code:      400,
		Frame:     frame,
	}
}
