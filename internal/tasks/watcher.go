// Package tasks provides background task runners for reltime.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/spetersoncode/reltime/internal/clock"
	"github.com/spetersoncode/reltime/internal/element"
	"github.com/spetersoncode/reltime/internal/observer"
	"github.com/spetersoncode/reltime/internal/service"
)

// Change reports a board entry whose rendered text changed.
type Change struct {
	Name string    `json:"name"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Watcher keeps every board entry's text current with a single scheduler.
type Watcher struct {
	board       *service.BoardService
	clock       clock.Clock
	maxInterval time.Duration
}

// NewWatcher creates a new Watcher. A nil clock uses the wall clock.
func NewWatcher(board *service.BoardService, clk clock.Clock) *Watcher {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Watcher{board: board, clock: clk, maxInterval: observer.DefaultMaxInterval}
}

// WithMaxInterval caps the delay between two sweeps.
func (w *Watcher) WithMaxInterval(d time.Duration) *Watcher {
	w.maxInterval = d
	return w
}

// Run reports the current text of every board entry, then reports each change
// until ctx is done. Entries added to the board after Run starts are not
// picked up.
func (w *Watcher) Run(ctx context.Context, onChange func(Change)) error {
	var (
		mu    sync.Mutex
		names = make(map[string]string)
	)
	emit := func(id, text string) {
		mu.Lock()
		name, ok := names[id]
		mu.Unlock()
		if ok && onChange != nil {
			onChange(Change{Name: name, Text: text, At: w.clock.Now()})
		}
	}

	elements, list, err := w.board.Elements(element.WithClock(w.clock), element.OnChange(emit))
	if err != nil {
		return err
	}

	mu.Lock()
	for i, ts := range list {
		names[elements[i].ID()] = ts.Name
	}
	mu.Unlock()

	sched := observer.New(
		observer.WithClock(w.clock),
		observer.WithMaxInterval(w.maxInterval),
		observer.WithErrorHandler(func(s observer.Subject, err error) {
			log.Warn().Err(err).Str("timestamp", names[s.ID()]).Msg("refresh failed")
		}),
	)
	defer sched.Stop()

	// Run immediately on start
	for _, e := range elements {
		emit(e.ID(), e.Text())
		sched.Observe(e)
	}
	log.Debug().Int("timestamps", len(elements)).Msg("watching board")

	<-ctx.Done()
	for _, e := range elements {
		sched.Unobserve(e.ID())
	}
	return ctx.Err()
}
