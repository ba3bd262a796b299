// Package element implements display subjects: a target datetime plus
// attributes, rendered to text and kept current by an observer.Scheduler.
package element

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spetersoncode/reltime/internal/clock"
	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/models"
	"github.com/spetersoncode/reltime/internal/observer"
)

// ChangeFunc is called with the element ID and its new text whenever a
// refresh changes the text.
type ChangeFunc func(id, text string)

// Option configures an Element.
type Option func(*Element)

// WithID sets the element ID. The default is a random UUID.
func WithID(id string) Option {
	return func(e *Element) {
		e.id = id
	}
}

// WithClock sets the clock used to render.
func WithClock(c clock.Clock) Option {
	return func(e *Element) {
		e.clock = c
	}
}

// OnChange sets the change callback.
func OnChange(fn ChangeFunc) Option {
	return func(e *Element) {
		e.onChange = fn
	}
}

// Element is a display subject. It is safe for concurrent use.
type Element struct {
	id       string
	clock    clock.Clock
	onChange ChangeFunc

	mu       sync.Mutex
	attrs    Attributes
	target   time.Time
	resolved bool
	text     string
}

var _ observer.Subject = (*Element)(nil)

// New creates an element and renders it once.
func New(attrs Attributes, opts ...Option) *Element {
	e := &Element{
		id:    uuid.NewString(),
		clock: clock.Real{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.mu.Lock()
	e.setLocked(attrs)
	e.mu.Unlock()
	_ = e.Refresh()
	return e
}

// ID returns the element ID.
func (e *Element) ID() string {
	return e.id
}

// Target returns the parsed datetime, false when it cannot be resolved.
func (e *Element) Target() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target, e.resolved
}

// Mode reports duration mode for duration and elapsed formats. Micro text is
// a single rounded unit, so it refreshes by distance like relative text.
func (e *Element) Mode() observer.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	if f := e.attrs.Format; f == models.FormatDuration || f == models.FormatElapsed {
		return observer.ModeDuration
	}
	return observer.ModeRelative
}

// Precision returns the precision attribute.
func (e *Element) Precision() duration.Unit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attrs.Precision
}

// Attributes returns a copy of the current attributes.
func (e *Element) Attributes() Attributes {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attrs
}

// Text returns the last rendered text.
func (e *Element) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// Update applies every mutation and then recomputes the text once.
func (e *Element) Update(mutations ...func(*Attributes)) error {
	e.mu.Lock()
	attrs := e.attrs
	for _, m := range mutations {
		m(&attrs)
	}
	e.setLocked(attrs)
	e.mu.Unlock()
	return e.Refresh()
}

// Refresh recomputes the text at the clock's current instant and reports a
// change through the change callback.
func (e *Element) Refresh() error {
	e.mu.Lock()
	var (
		text string
		err  error
	)
	if e.resolved {
		text, err = render(e.attrs, e.target, e.clock.Now())
	} else {
		text = e.attrs.Fallback
	}
	if err != nil {
		e.mu.Unlock()
		return err
	}
	changed := text != e.text
	e.text = text
	e.mu.Unlock()

	if changed && e.onChange != nil {
		e.onChange(e.id, text)
	}
	return nil
}

func (e *Element) setLocked(attrs Attributes) {
	if attrs.TimeZone == nil {
		attrs.TimeZone = time.UTC
	}
	e.attrs = attrs
	e.target, e.resolved = time.Time{}, false
	if t, err := ParseDatetime(attrs.Datetime, attrs.TimeZone); err == nil {
		e.target, e.resolved = t, true
	}
}
