package bloodsugar

import "strconv"

// MmolToMgdl is the mmol/L to mg/dL conversion factor. Every conversion in
// the module goes through this value.
const MmolToMgdl = 18.0182

// Convert returns value expressed in the unit the user wants displayed.
// serverInMmol describes the unit of value as reported by the server.
func Convert(value float64, displayInMmol, serverInMmol bool) float64 {
	switch {
	case displayInMmol && !serverInMmol:
		return value / MmolToMgdl
	case !displayInMmol && serverInMmol:
		return value * MmolToMgdl
	default:
		return value
	}
}

// ToMgdl normalizes a raw server value to mg/dL.
func ToMgdl(value float64, serverInMmol bool) float64 {
	return Convert(value, false, serverInMmol)
}

// FormatValue renders a display value: one decimal place (rounded) for
// mmol/L, the whole number (truncated) for mg/dL.
func FormatValue(value float64, mmol bool) string {
	if mmol {
		return strconv.FormatFloat(value, 'f', 1, 64)
	}
	return strconv.FormatInt(int64(value), 10)
}

// UnitLabel returns the short unit name for display.
func UnitLabel(mmol bool) string {
	if mmol {
		return "mmol/L"
	}
	return "mg/dL"
}
