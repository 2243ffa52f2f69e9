// Package state holds the observable display state shared between the
// poller (sole writer) and presentation adapters (readers).
package state

import (
	"time"

	"github.com/jwulff/nightscoutbar-go/internal/bloodsugar"
	"github.com/jwulff/nightscoutbar-go/internal/diagnostics"
)

// DisplayState is what a presentation layer renders.
type DisplayState struct {
	GlucoseValue    float64                `json:"glucoseValue"`
	DisplayInMmol   bool                   `json:"displayInMmol"`
	TrendGlyph      string                 `json:"trendGlyph"`
	StalenessSuffix string                 `json:"stalenessSuffix"`
	Range           bloodsugar.RangeStatus `json:"range,omitempty"`
	ReadingAt       time.Time              `json:"readingAt,omitzero"`
	HasReading      bool                   `json:"hasReading"`

	Status      diagnostics.Status `json:"status"`
	Diagnostics []string           `json:"diagnostics"`

	AttemptID  string    `json:"attemptId,omitempty"`
	Generation uint64    `json:"generation"`
	UpdatedAt  time.Time `json:"updatedAt,omitzero"`
}

// Initial returns the state before any fetch has completed.
func Initial() DisplayState {
	return DisplayState{
		TrendGlyph:  bloodsugar.FallbackArrow,
		Status:      diagnostics.StatusEmpty,
		Diagnostics: []string{},
	}
}

// FormattedValue renders GlucoseValue in its display unit.
func (s DisplayState) FormattedValue() string {
	return bloodsugar.FormatValue(s.GlucoseValue, s.DisplayInMmol)
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s DisplayState) Clone() DisplayState {
	out := s
	out.Diagnostics = make([]string, len(s.Diagnostics))
	copy(out.Diagnostics, s.Diagnostics)
	return out
}

// Update is the complete outcome of one fetch attempt, applied atomically.
type Update struct {
	Generation  uint64
	AttemptID   string
	At          time.Time
	Status      diagnostics.Status
	Diagnostics []string

	// Reading is nil when the attempt produced no usable reading; the
	// previously displayed value, trend and staleness are then kept.
	Reading *ReadingUpdate
}

// ReadingUpdate carries the converted values from a successful parse.
type ReadingUpdate struct {
	Value         float64
	DisplayInMmol bool
	TrendGlyph    string
	Range         bloodsugar.RangeStatus

	// Timestamp is nil when the server time could not be parsed; the
	// previous staleness suffix is then kept.
	Timestamp *Timestamp
}

// Timestamp is a parsed server time and its derived staleness suffix.
type Timestamp struct {
	At     time.Time
	Suffix string
}

func (s DisplayState) apply(u Update) DisplayState {
	next := s
	next.Status = u.Status
	next.Diagnostics = make([]string, len(u.Diagnostics))
	copy(next.Diagnostics, u.Diagnostics)
	next.AttemptID = u.AttemptID
	next.Generation = u.Generation
	next.UpdatedAt = u.At

	if r := u.Reading; r != nil {
		next.GlucoseValue = r.Value
		next.DisplayInMmol = r.DisplayInMmol
		next.TrendGlyph = r.TrendGlyph
		next.Range = r.Range
		next.HasReading = true
		if r.Timestamp != nil {
			next.ReadingAt = r.Timestamp.At
			next.StalenessSuffix = r.Timestamp.Suffix
		}
	}
	return next
}
