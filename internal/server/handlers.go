package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/element"
	"github.com/spetersoncode/reltime/internal/errors"
	"github.com/spetersoncode/reltime/internal/service"
)

// API Response types

// DurationResponse represents a duration in API responses.
type DurationResponse struct {
	ISO          string `json:"iso"`
	Sign         int    `json:"sign"`
	Years        int    `json:"years"`
	Months       int    `json:"months"`
	Weeks        int    `json:"weeks"`
	Days         int    `json:"days"`
	Hours        int    `json:"hours"`
	Minutes      int    `json:"minutes"`
	Seconds      int    `json:"seconds"`
	Milliseconds int    `json:"milliseconds"`
}

// ParseResponse is returned by the parse endpoint. Text that is not an
// ISO-8601 duration parses to zero and reports valid=false.
type ParseResponse struct {
	Input    string           `json:"input"`
	Valid    bool             `json:"valid"`
	Duration DurationResponse `json:"duration"`
}

// RoundResponse is returned by the round endpoint.
type RoundResponse struct {
	Input   string           `json:"input"`
	Ref     string           `json:"ref"`
	Rounded DurationResponse `json:"rounded"`
	Value   int              `json:"value"`
	Unit    string           `json:"unit"`
}

// CompareResponse is returned by the compare endpoint.
type CompareResponse struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Result int    `json:"result"`
}

// RenderResponse is a one-shot render.
type RenderResponse struct {
	Datetime  string `json:"datetime"`
	Text      string `json:"text"`
	RefreshMS *int64 `json:"refresh_ms"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    status,
		Message: message,
	})
}

// writeSharedError writes an error response using the shared error type.
// It maps the error kind to the matching HTTP status code.
func writeSharedError(w http.ResponseWriter, err error) {
	e := errors.Classify(err)
	writeError(w, e.HTTPStatus(), e.Message)
}

func durationToResponse(d duration.Duration) DurationResponse {
	return DurationResponse{
		ISO:          d.String(),
		Sign:         d.Sign(),
		Years:        d.Years,
		Months:       d.Months,
		Weeks:        d.Weeks,
		Days:         d.Days,
		Hours:        d.Hours,
		Minutes:      d.Minutes,
		Seconds:      d.Seconds,
		Milliseconds: d.Milliseconds,
	}
}

// queryDuration reads a required ISO-8601 duration parameter.
func queryDuration(r *http.Request, name string) (duration.Duration, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return duration.Zero, errors.InvalidArgs("query parameter %q is required", name)
	}
	var d duration.Duration
	if err := d.UnmarshalText([]byte(raw)); err != nil {
		return duration.Zero, errors.Wrap(err, errors.KindInvalidDuration, "invalid duration %q", raw)
	}
	return d, nil
}

// queryInstant reads an optional instant parameter, defaulting to the clock.
func (s *Server) queryInstant(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return s.config.Clock.Now(), nil
	}
	t, err := element.ParseDatetime(raw, s.config.Defaults.TimeZone)
	if err != nil {
		return time.Time{}, errors.Wrap(err, errors.KindUnresolvableInstant, "invalid %s %q", name, raw)
	}
	return t, nil
}

// Duration handlers

func (s *Server) handleParseDuration(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("d")
	if raw == "" {
		writeError(w, http.StatusBadRequest, `query parameter "d" is required`)
		return
	}

	writeJSON(w, http.StatusOK, ParseResponse{
		Input:    raw,
		Valid:    duration.IsDuration(raw),
		Duration: durationToResponse(duration.Parse(raw)),
	})
}

func (s *Server) handleRoundDuration(w http.ResponseWriter, r *http.Request) {
	d, err := queryDuration(r, "d")
	if err != nil {
		writeSharedError(w, err)
		return
	}
	ref, err := s.queryInstant(r, "ref")
	if err != nil {
		writeSharedError(w, err)
		return
	}

	rounded := duration.Round(d, ref)
	value, unit := duration.RelativeTimeUnit(rounded, ref)
	writeJSON(w, http.StatusOK, RoundResponse{
		Input:   r.URL.Query().Get("d"),
		Ref:     ref.Format(time.RFC3339Nano),
		Rounded: durationToResponse(rounded),
		Value:   value,
		Unit:    unit.String(),
	})
}

func (s *Server) handleCompareDurations(w http.ResponseWriter, r *http.Request) {
	a, err := queryDuration(r, "a")
	if err != nil {
		writeSharedError(w, err)
		return
	}
	b, err := queryDuration(r, "b")
	if err != nil {
		writeSharedError(w, err)
		return
	}
	ref, err := s.queryInstant(r, "ref")
	if err != nil {
		writeSharedError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CompareResponse{
		A:      a.String(),
		B:      b.String(),
		Result: duration.CompareAt(a, b, ref),
	})
}

// Render handlers

// renderAttributes builds attributes from the service defaults and the
// request's query parameters.
func (s *Server) renderAttributes(r *http.Request) (element.Attributes, error) {
	q := r.URL.Query()
	entry := service.BoardEntry{
		Datetime:  q.Get("datetime"),
		Format:    q.Get("format"),
		Tense:     q.Get("tense"),
		Precision: q.Get("precision"),
		Threshold: q.Get("threshold"),
		Style:     q.Get("style"),
	}
	if entry.Datetime == "" {
		return element.Attributes{}, errors.InvalidArgs(`query parameter "datetime" is required`)
	}
	if _, err := element.ParseDatetime(entry.Datetime, s.config.Defaults.TimeZone); err != nil {
		return element.Attributes{}, errors.Wrap(err, errors.KindUnresolvableInstant, "invalid datetime %q", entry.Datetime)
	}
	in, err := entry.Input()
	if err != nil {
		return element.Attributes{}, errors.Wrap(err, errors.KindInvalidArgs, "invalid render attributes")
	}

	a := s.config.Defaults.Attributes(in)
	if q.Has("prefix") {
		a.Prefix = q.Get("prefix")
	}
	return a, nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	a, err := s.renderAttributes(r)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	now, err := s.queryInstant(r, "now")
	if err != nil {
		writeSharedError(w, err)
		return
	}

	text, refresh, err := service.RenderAt(a, now)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{Datetime: a.Datetime, Text: text, RefreshMS: refresh})
}
