// Package models defines the shared display enums and the persisted board model.
package models

import (
	"fmt"
	"strings"
)

// Format selects how a timestamp is rendered.
type Format string

const (
	// FormatAuto shows relative text inside the threshold and a date beyond it.
	FormatAuto     Format = "auto"
	FormatRelative Format = "relative"
	FormatDuration Format = "duration"
	FormatElapsed  Format = "elapsed"
	// FormatMicro rounds to a single unit and uses the narrow style ("3d").
	FormatMicro    Format = "micro"
	FormatDatetime Format = "datetime"
)

// IsValid returns true if the format is known.
func (f Format) IsValid() bool {
	switch f {
	case FormatAuto, FormatRelative, FormatDuration, FormatElapsed, FormatMicro, FormatDatetime:
		return true
	}
	return false
}

// IsDuration returns true for formats rendered as duration text.
func (f Format) IsDuration() bool {
	return f == FormatDuration || f == FormatElapsed || f == FormatMicro
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("invalid format %q (valid: auto, relative, duration, elapsed, micro, datetime)", s)
	}
	return f, nil
}

// Tense restricts relative text to one side of now.
type Tense string

const (
	TenseAuto   Tense = "auto"
	TensePast   Tense = "past"
	TenseFuture Tense = "future"
)

// IsValid returns true if the tense is known.
func (t Tense) IsValid() bool {
	switch t {
	case TenseAuto, TensePast, TenseFuture:
		return true
	}
	return false
}

// ParseTense parses a tense name, case-insensitively.
func ParseTense(s string) (Tense, error) {
	t := Tense(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid tense %q (valid: auto, past, future)", s)
	}
	return t, nil
}

// Style is the verbosity of unit names.
type Style string

const (
	StyleLong   Style = "long"
	StyleShort  Style = "short"
	StyleNarrow Style = "narrow"
)

// IsValid returns true if the style is known.
func (s Style) IsValid() bool {
	switch s {
	case StyleLong, StyleShort, StyleNarrow:
		return true
	}
	return false
}

// ParseStyle parses a style name, case-insensitively.
func ParseStyle(s string) (Style, error) {
	st := Style(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("invalid style %q (valid: long, short, narrow)", s)
	}
	return st, nil
}
