package render

import (
	"fmt"

	"github.com/jwulff/nightscoutbar-go/internal/bloodsugar"
	"github.com/jwulff/nightscoutbar-go/internal/diagnostics"
)

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// NewRGB creates a new RGB color.
func NewRGB(r, g, b uint8) RGB {
	return RGB{R: r, G: g, B: b}
}

// Hex returns the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("RGB(%d,%d,%d)", c.R, c.G, c.B)
}

// MarshalText encodes the color as hex so JSON carries "#rrggbb".
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

var (
	ColorGray = NewRGB(128, 128, 128)

	// Glucose colors following the Dexcom scheme.
	ColorGlucoseUrgentLow  = NewRGB(255, 0, 0)
	ColorGlucoseLow        = NewRGB(255, 100, 100)
	ColorGlucoseNormal     = NewRGB(0, 255, 0)
	ColorGlucoseHigh       = NewRGB(255, 255, 0)
	ColorGlucoseUrgentHigh = NewRGB(255, 165, 0)

	// Settings window border.
	ColorStatusOK    = NewRGB(0, 200, 0)
	ColorStatusError = NewRGB(220, 0, 0)
)

// RangeColor returns the color for a classified reading. Unknown is gray.
func RangeColor(r bloodsugar.RangeStatus) RGB {
	switch r {
	case bloodsugar.RangeUrgentLow:
		return ColorGlucoseUrgentLow
	case bloodsugar.RangeLow:
		return ColorGlucoseLow
	case bloodsugar.RangeNormal:
		return ColorGlucoseNormal
	case bloodsugar.RangeHigh:
		return ColorGlucoseHigh
	case bloodsugar.RangeVeryHigh:
		return ColorGlucoseUrgentHigh
	default:
		return ColorGray
	}
}

// StatusColor returns the border color for the last fetch outcome.
func StatusColor(s diagnostics.Status) RGB {
	switch s {
	case diagnostics.StatusOK:
		return ColorStatusOK
	case diagnostics.StatusError:
		return ColorStatusError
	default:
		return ColorGray
	}
}
