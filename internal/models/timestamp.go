package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spetersoncode/reltime/internal/duration"
)

// Timestamp is a named entry on the board: a target datetime plus the
// attributes it is rendered with.
type Timestamp struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Datetime  string            `json:"datetime"`
	Format    Format            `json:"format"`
	Tense     Tense             `json:"tense"`
	Precision duration.Unit     `json:"precision"`
	Threshold duration.Duration `json:"threshold"`
	Style     Style             `json:"style"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// nameRegex validates board names (lowercase slug, 1-64 chars).
var nameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

// ValidateName validates a board name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("name must be 1-64 lowercase letters, digits, '.', '_' or '-', starting with a letter or digit")
	}
	return nil
}

// ApplyDefaults fills empty attributes with their defaults. Precision has no
// empty value and is left alone.
func (t *Timestamp) ApplyDefaults() {
	if t.Format == "" {
		t.Format = FormatAuto
	}
	if t.Tense == "" {
		t.Tense = TenseAuto
	}
	if t.Style == "" {
		t.Style = StyleLong
	}
	if t.Threshold.Blank() {
		t.Threshold = duration.Duration{Days: 30}
	}
}

// Validate validates the timestamp fields.
func (t *Timestamp) Validate() error {
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	if t.Datetime == "" {
		return fmt.Errorf("datetime cannot be empty")
	}
	if !t.Format.IsValid() {
		return fmt.Errorf("invalid format %q", t.Format)
	}
	if !t.Tense.IsValid() {
		return fmt.Errorf("invalid tense %q", t.Tense)
	}
	if !t.Style.IsValid() {
		return fmt.Errorf("invalid style %q", t.Style)
	}
	if !t.Precision.IsValid() {
		return fmt.Errorf("invalid precision %q", t.Precision)
	}
	return nil
}
