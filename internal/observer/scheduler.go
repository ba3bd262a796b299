// Package observer keeps any number of display subjects current with at most
// one pending timer.
package observer

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/spetersoncode/reltime/internal/clock"
)

// DefaultMaxInterval caps the delay between two sweeps.
const DefaultMaxInterval = time.Hour

// ErrorHandler receives failures from a subject's Refresh. A panic inside
// Refresh is recovered and delivered here as an error.
type ErrorHandler func(s Subject, err error)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the time source and timer factory.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithErrorHandler sets the handler for refresh failures. The default logs
// them at warn level.
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Scheduler) {
		s.onError = h
	}
}

// WithMaxInterval caps the delay between sweeps.
func WithMaxInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.maxInterval = d
		}
	}
}

// Scheduler tracks observed subjects and refreshes all of them in one sweep,
// scheduling the next sweep for the soonest interval any of them needs.
//
// Observe and Unobserve may be called from inside a subject's Refresh.
type Scheduler struct {
	clock       clock.Clock
	onError     ErrorHandler
	maxInterval time.Duration

	mu       sync.Mutex
	subjects map[string]Subject
	order    []string
	timer    clock.Timer
	next     time.Time // zero when no sweep is scheduled
	gen      uint64
}

// New creates an idle scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:       clock.Real{},
		maxInterval: DefaultMaxInterval,
		subjects:    make(map[string]Subject),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.onError == nil {
		s.onError = logRefreshError
	}
	return s
}

func logRefreshError(sub Subject, err error) {
	log.Warn().Err(err).Str("subject", sub.ID()).Msg("refresh failed")
}

// Observe adds sub. Observing an already observed ID is a no-op. If sub has a
// resolvable target and needs a refresh before the next scheduled sweep, the
// sweep is moved earlier. The delay is capped at the maximum interval.
func (s *Scheduler) Observe(sub Subject) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := sub.ID()
	if _, ok := s.subjects[id]; ok {
		return
	}
	s.subjects[id] = sub
	s.order = append(s.order, id)

	now := s.clock.Now()
	interval := RefreshInterval(sub, now)
	if interval == Never {
		return
	}
	interval = min(interval, s.maxInterval)
	at := now.Add(interval)
	if s.next.IsZero() || at.Before(s.next) {
		s.armLocked(interval, at)
	}
}

// Unobserve removes the subject with the given ID. The schedule is left alone;
// the next sweep recomputes it from the remaining subjects.
func (s *Scheduler) Unobserve(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subjects[id]; !ok {
		return
	}
	delete(s.subjects, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Update cancels the pending sweep, refreshes every observed subject and
// schedules the next sweep at the smallest required interval, capped at the
// maximum interval. With nothing observed the scheduler goes idle until the
// next Observe.
func (s *Scheduler) Update() {
	s.mu.Lock()
	s.cancelLocked()
	if len(s.subjects) == 0 {
		s.mu.Unlock()
		log.Debug().Msg("scheduler idle")
		return
	}
	snapshot := make([]Subject, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, s.subjects[id])
	}
	s.mu.Unlock()

	nearest := Never
	for _, sub := range snapshot {
		nearest = min(nearest, RefreshInterval(sub, s.clock.Now()))
		s.refresh(sub)
	}
	interval := min(nearest, s.maxInterval)

	s.mu.Lock()
	defer s.mu.Unlock()
	at := s.clock.Now().Add(interval)
	// An Observe during the sweep may already have armed an earlier sweep.
	if !s.next.IsZero() && !at.Before(s.next) {
		return
	}
	s.armLocked(interval, at)
	log.Debug().Int("subjects", len(snapshot)).Dur("next", interval).Msg("scheduler sweep")
}

func (s *Scheduler) refresh(sub Subject) {
	defer func() {
		if r := recover(); r != nil {
			s.onError(sub, fmt.Errorf("refresh panicked: %v", r))
		}
	}()
	if err := sub.Refresh(); err != nil {
		s.onError(sub, err)
	}
}

// Len returns the number of observed subjects.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subjects)
}

// Next returns the instant of the next scheduled sweep, false when idle.
func (s *Scheduler) Next() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next, !s.next.IsZero()
}

// Stop cancels the pending sweep and forgets every subject.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	clear(s.subjects)
	s.order = nil
}

// armLocked replaces the pending timer with one firing after d. A timer that
// fires after being replaced sees a newer generation and does nothing.
func (s *Scheduler) armLocked(d time.Duration, at time.Time) {
	s.cancelLocked()
	gen := s.gen
	s.next = at
	s.timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		stale := gen != s.gen
		s.mu.Unlock()
		if !stale {
			s.Update()
		}
	})
}

func (s *Scheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.next = time.Time{}
	s.gen++
}
