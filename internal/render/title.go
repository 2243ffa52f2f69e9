// Package render turns a DisplayState into what a presentation layer shows.
package render

import (
	"github.com/jwulff/nightscoutbar-go/internal/diagnostics"
	"github.com/jwulff/nightscoutbar-go/internal/state"
)

// PlaceholderTitle is shown until the first reading arrives.
const PlaceholderTitle = "Nightscout"

// Title composes the status-bar text, e.g. "120 →" or "6.7 ↗ [14:02]".
func Title(st state.DisplayState) string {
	if !st.HasReading {
		return PlaceholderTitle
	}
	return st.FormattedValue() + " " + st.TrendGlyph + st.StalenessSuffix
}

// View is a DisplayState with its derived presentation fields.
type View struct {
	state.DisplayState

	FormattedValue string `json:"formattedValue"`
	Title          string `json:"title"`
	RangeColor     RGB    `json:"rangeColor"`
	BorderColor    RGB    `json:"borderColor"`
	DiagnosticText string `json:"diagnosticText"`
}

// NewView derives the presentation fields for st.
func NewView(st state.DisplayState) View {
	return View{
		DisplayState:   st,
		FormattedValue: st.FormattedValue(),
		Title:          Title(st),
		RangeColor:     RangeColor(st.Range),
		BorderColor:    StatusColor(st.Status),
		DiagnosticText: diagnostics.Join(st.Diagnostics),
	}
}
