package diagnostics

import "fmt"

// Status classifies the outcome of the most recent fetch attempt.
type Status int

const (
	// StatusEmpty means no fetch has completed yet.
	StatusEmpty Status = iota
	StatusOK
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText encodes the status as its lowercase name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses "empty", "ok" or "error".
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "empty":
		*s = StatusEmpty
	case "ok":
		*s = StatusOK
	case "error":
		*s = StatusError
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}
