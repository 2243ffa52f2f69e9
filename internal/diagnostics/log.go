// Package diagnostics records the human-readable trace of a fetch attempt.
package diagnostics

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Limits on what a single attempt may record.
const (
	DefaultMaxLines    = 32
	DefaultMaxLineSize = 512
)

const truncatedMarker = "…(truncated)"

// Log is an append-only, bounded list of lines for one fetch attempt.
// Once MaxLines is reached the oldest lines are dropped and counted.
// A Log is owned by one goroutine; publish a copy via Lines.
type Log struct {
	maxLines    int
	maxLineSize int
	lines       []string
	dropped     int
}

// NewLog creates a log with the given bounds. Non-positive values use the defaults.
func NewLog(maxLines, maxLineSize int) *Log {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	if maxLineSize <= 0 {
		maxLineSize = DefaultMaxLineSize
	}
	return &Log{
		maxLines:    maxLines,
		maxLineSize: maxLineSize,
		lines:       make([]string, 0, maxLines),
	}
}

// Add appends a line, truncating it to the configured size.
func (l *Log) Add(line string) {
	l.lines = append(l.lines, truncate(line, l.maxLineSize))
	if len(l.lines) > l.maxLines {
		over := len(l.lines) - l.maxLines
		l.lines = l.lines[over:]
		l.dropped += over
	}
}

// Addf appends a formatted line.
func (l *Log) Addf(format string, args ...any) {
	l.Add(fmt.Sprintf(format, args...))
}

// Lines returns a copy of the retained lines.
func (l *Log) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Dropped returns how many lines were discarded to respect MaxLines.
func (l *Log) Dropped() int {
	return l.dropped
}

// Len returns the number of retained lines.
func (l *Log) Len() int {
	return len(l.lines)
}

// String joins the lines the way the settings text box shows them.
func (l *Log) String() string {
	return Join(l.lines)
}

// Join renders lines as newline-terminated text.
func Join(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// No room for the marker: keep a plain prefix.
	if max <= len(truncatedMarker) {
		return s[:runeCut(s, max)]
	}
	return s[:runeCut(s, max-len(truncatedMarker))] + truncatedMarker
}

// runeCut backs n off to a rune boundary of s.
func runeCut(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}
