// Package service holds the board operations shared by the CLI and the API.
package service

import (
	"database/sql"
	"errors"
	"time"

	"github.com/spetersoncode/reltime/internal/clock"
	"github.com/spetersoncode/reltime/internal/db"
	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/element"
	apperrors "github.com/spetersoncode/reltime/internal/errors"
	"github.com/spetersoncode/reltime/internal/models"
	"github.com/spetersoncode/reltime/internal/observer"
)

// Defaults are applied to board entries that leave an attribute unset.
type Defaults struct {
	Format    models.Format
	Precision duration.Unit
	Threshold duration.Duration
	Style     models.Style
	TimeZone  *time.Location
}

// DefaultDefaults mirrors the element defaults.
func DefaultDefaults() Defaults {
	a := element.DefaultAttributes()
	return Defaults{
		Format:    a.Format,
		Precision: a.Precision,
		Threshold: a.Threshold,
		Style:     a.Style,
		TimeZone:  a.TimeZone,
	}
}

// Attributes builds render attributes for in. Attributes in leaves unset come
// from d, then from the element defaults.
func (d Defaults) Attributes(in AddInput) element.Attributes {
	a := element.DefaultAttributes()
	a.Datetime = in.Datetime
	a.Fallback = in.Datetime
	if d.TimeZone != nil {
		a.TimeZone = d.TimeZone
	}
	a.Format = pick(in.Format, d.Format, a.Format)
	a.Tense = pick(in.Tense, a.Tense)
	a.Style = pick(in.Style, d.Style, a.Style)
	a.Precision = d.Precision
	if in.Precision != nil {
		a.Precision = *in.Precision
	}
	a.Threshold = d.Threshold
	if !in.Threshold.Blank() {
		a.Threshold = in.Threshold
	} else if d.Threshold.Blank() {
		a.Threshold = element.DefaultAttributes().Threshold
	}
	return a
}

// pick returns the first non-zero value.
func pick[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// BoardService provides the business logic for stored timestamps.
type BoardService struct {
	repo     *db.TimestampRepo
	defaults Defaults
}

// NewBoardService creates a new BoardService.
func NewBoardService(database *sql.DB, defaults Defaults) *BoardService {
	if defaults.TimeZone == nil {
		defaults.TimeZone = time.UTC
	}
	return &BoardService{repo: db.NewTimestampRepo(database), defaults: defaults}
}

// AddInput holds the input for adding a timestamp. Empty attributes use the
// service defaults; Precision is optional.
type AddInput struct {
	Name      string
	Datetime  string
	Format    models.Format
	Tense     models.Tense
	Precision *duration.Unit
	Threshold duration.Duration
	Style     models.Style
}

// Row is one rendered board entry.
type Row struct {
	Name     string        `json:"name"`
	Datetime string        `json:"datetime"`
	Text     string        `json:"text"`
	Format   models.Format `json:"format"`
	// RefreshMS is how soon the text may change, nil when it never will.
	RefreshMS *int64 `json:"refresh_ms"`
}

// Add validates and stores a new timestamp.
func (s *BoardService) Add(input AddInput) (*models.Timestamp, error) {
	ts, err := s.build(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ts); err != nil {
		return nil, repoError(err, input.Name)
	}
	return ts, nil
}

// Get returns the timestamp with the given name.
func (s *BoardService) Get(name string) (*models.Timestamp, error) {
	ts, err := s.repo.GetByName(name)
	if err != nil {
		return nil, apperrors.WrapInternal(err, "failed to load timestamp")
	}
	if ts == nil {
		return nil, apperrors.NotFound("timestamp %q not found", name).
			WithSuggestion("Run 'reltime board list' to see stored timestamps")
	}
	return ts, nil
}

// List returns every stored timestamp ordered by name.
func (s *BoardService) List() ([]*models.Timestamp, error) {
	list, err := s.repo.List()
	if err != nil {
		return nil, apperrors.WrapInternal(err, "failed to list timestamps")
	}
	return list, nil
}

// Remove deletes the timestamp with the given name.
func (s *BoardService) Remove(name string) error {
	if err := s.repo.Delete(name); err != nil {
		return repoError(err, name)
	}
	return nil
}

// Attributes returns the render attributes for ts.
func (s *BoardService) Attributes(ts *models.Timestamp) element.Attributes {
	a := element.FromTimestamp(ts)
	a.TimeZone = s.defaults.TimeZone
	a.Fallback = ts.Datetime
	return a
}

// Render renders every stored timestamp at now.
func (s *BoardService) Render(now time.Time) ([]Row, error) {
	list, err := s.List()
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(list))
	for _, ts := range list {
		row, err := s.renderRow(ts, now)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// RenderOne renders the named timestamp at now.
func (s *BoardService) RenderOne(name string, now time.Time) (*Row, error) {
	ts, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	row, err := s.renderRow(ts, now)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Elements builds one element per stored timestamp, keyed by timestamp ID.
func (s *BoardService) Elements(opts ...element.Option) ([]*element.Element, []*models.Timestamp, error) {
	list, err := s.List()
	if err != nil {
		return nil, nil, err
	}
	elements := make([]*element.Element, 0, len(list))
	for _, ts := range list {
		elOpts := append([]element.Option{element.WithID(ts.ID)}, opts...)
		elements = append(elements, element.New(s.Attributes(ts), elOpts...))
	}
	return elements, list, nil
}

func (s *BoardService) renderRow(ts *models.Timestamp, now time.Time) (Row, error) {
	text, refresh, err := RenderAt(s.Attributes(ts), now)
	if err != nil {
		return Row{}, err
	}
	return Row{Name: ts.Name, Datetime: ts.Datetime, Text: text, Format: ts.Format, RefreshMS: refresh}, nil
}

// RenderAt renders a at now and reports how many milliseconds the text stays
// valid, nil when it never changes.
func RenderAt(a element.Attributes, now time.Time) (string, *int64, error) {
	e := element.New(a, element.WithClock(clock.Fixed(now)))
	if err := e.Refresh(); err != nil {
		return "", nil, apperrors.Classify(err)
	}
	var refresh *int64
	if interval := observer.RefreshInterval(e, now); interval != observer.Never {
		ms := interval.Milliseconds()
		refresh = &ms
	}
	return e.Text(), refresh, nil
}

func (s *BoardService) build(input AddInput) (*models.Timestamp, error) {
	if err := models.ValidateName(input.Name); err != nil {
		return nil, apperrors.InvalidArgs("%s", err.Error())
	}
	if _, err := element.ParseDatetime(input.Datetime, s.defaults.TimeZone); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindUnresolvableInstant, "invalid datetime for %q", input.Name)
	}

	ts := &models.Timestamp{
		Name:      input.Name,
		Datetime:  input.Datetime,
		Format:    input.Format,
		Tense:     input.Tense,
		Precision: s.defaults.Precision,
		Threshold: input.Threshold,
		Style:     input.Style,
	}
	if input.Precision != nil {
		ts.Precision = *input.Precision
	}
	if ts.Format == "" {
		ts.Format = s.defaults.Format
	}
	if ts.Style == "" {
		ts.Style = s.defaults.Style
	}
	if ts.Threshold.Blank() {
		ts.Threshold = s.defaults.Threshold
	}
	ts.ApplyDefaults()
	if err := ts.Validate(); err != nil {
		return nil, apperrors.InvalidArgs("%s", err.Error())
	}
	return ts, nil
}

func repoError(err error, name string) error {
	switch {
	case errors.Is(err, db.ErrDuplicateName):
		return apperrors.Conflict("timestamp %q already exists", name).
			WithSuggestion("Choose another name or remove the existing timestamp first")
	case errors.Is(err, db.ErrNotFound):
		return apperrors.NotFound("timestamp %q not found", name)
	}
	return apperrors.WrapInternal(err, "failed to save timestamp %q", name)
}
