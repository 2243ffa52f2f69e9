package bloodsugar

// FallbackArrow is shown for a missing or unrecognized direction.
const FallbackArrow = "?"

// TrendArrows maps Nightscout direction codes to display glyphs.
// Lookups are exact; "flat" or "Flat " do not match.
var TrendArrows = map[string]string{
	"Flat":          "→",
	"SingleUp":      "↑",
	"DoubleUp":      "↑↑",
	"DoubleDown":    "↓↓",
	"SingleDown":    "↓",
	"FortyFiveDown": "↘",
	"FortyFiveUp":   "↗",
}

// MapTrendArrow converts an optional direction code to a display arrow.
// A nil direction and an unknown one both yield FallbackArrow.
func MapTrendArrow(direction *string) string {
	if direction == nil {
		return FallbackArrow
	}
	if arrow, ok := TrendArrows[*direction]; ok {
		return arrow
	}
	return FallbackArrow
}
