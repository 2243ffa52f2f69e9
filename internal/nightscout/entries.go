package nightscout

import (
	"encoding/json"
	"errors"
)

// Parse errors.
var (
	ErrEmptyBody = errors.New("no data received in response")
	ErrNoEntries = errors.New("no entries found in decoded data")
)

// DecodeError wraps malformed JSON or an unexpected entry shape.
type DecodeError struct {
	Detail string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return "JSON decoding error: " + e.Detail + ": " + e.Err.Error()
	}
	return "JSON decoding error: " + e.Detail
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Reading is the latest entry returned by the server.
type Reading struct {
	Value      float64 // raw sgv in the server's unit
	Direction  *string // nil when absent or null
	DateString string
}

type entry struct {
	SGV        *float64 `json:"sgv"`
	Direction  *string  `json:"direction"`
	DateString *string  `json:"dateString"`
}

// ParseEntries decodes a JSON array of entries and returns the first one.
func ParseEntries(body []byte) (Reading, error) {
	if len(body) == 0 {
		return Reading{}, ErrEmptyBody
	}

	var entries []entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return Reading{}, &DecodeError{Detail: "entries array", Err: err}
	}
	if entries == nil {
		return Reading{}, &DecodeError{Detail: "expected an entries array, got null"}
	}
	if len(entries) == 0 {
		return Reading{}, ErrNoEntries
	}

	first := entries[0]
	if first.SGV == nil {
		return Reading{}, &DecodeError{Detail: `entry is missing "sgv"`}
	}
	if first.DateString == nil || *first.DateString == "" {
		return Reading{}, &DecodeError{Detail: `entry is missing "dateString"`}
	}

	return Reading{
		Value:      *first.SGV,
		Direction:  first.Direction,
		DateString: *first.DateString,
	}, nil
}
