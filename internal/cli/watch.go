package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spetersoncode/reltime/internal/clock"
	"github.com/spetersoncode/reltime/internal/observer"
	"github.com/spetersoncode/reltime/internal/tasks"
)

// Watch command flags
var (
	watchMaxInterval time.Duration
)

func init() {
	watchCmd.Flags().DurationVar(&watchMaxInterval, "max-interval", observer.DefaultMaxInterval, "Longest wait between refreshes")

	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the board's text current until interrupted",
	Long: `Render every timestamp on the board and re-render whenever its text can
change: every second for recent instants and running durations, every minute
within the hour and every hour beyond that.

On a terminal the board is redrawn in place. Otherwise each change is printed
on its own line (one JSON object per line with --json).`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

// watchPrinter writes watcher changes in one of three layouts.
type watchPrinter struct {
	mu     sync.Mutex
	out    io.Writer
	json   bool
	redraw bool
	names  []string
	texts  map[string]string
}

func newWatchPrinter(out io.Writer, jsonLines, redraw bool) *watchPrinter {
	return &watchPrinter{out: out, json: jsonLines, redraw: redraw, texts: make(map[string]string)}
}

func (p *watchPrinter) print(c tasks.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.json:
		json.NewEncoder(p.out).Encode(c)
	case p.redraw:
		if _, ok := p.texts[c.Name]; !ok {
			p.names = append(p.names, c.Name)
		}
		p.texts[c.Name] = c.Text
		p.drawLocked()
	default:
		fmt.Fprintf(p.out, "%s  %s: %s\n", c.At.Format(time.TimeOnly), c.Name, c.Text)
	}
}

func (p *watchPrinter) drawLocked() {
	width := len("NAME")
	for _, name := range p.names {
		width = max(width, len(name))
	}
	// Home the cursor and clear the screen.
	fmt.Fprint(p.out, "\033[H\033[2J")
	fmt.Fprintf(p.out, "%-*s  %s\n", width, "NAME", "TEXT")
	for _, name := range p.names {
		fmt.Fprintf(p.out, "%-*s  %s\n", width, name, p.texts[name])
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	database, board, err := openBoard()
	if err != nil {
		return err
	}
	defer database.Close()

	list, err := board.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		OutputLine("No timestamps on the board. Add one with 'reltime board add <name> <datetime>'.")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tty := term.IsTerminal(int(os.Stdout.Fd()))
	printer := newWatchPrinter(os.Stdout, IsJSON(), tty && !IsJSON())

	watcher := tasks.NewWatcher(board, clock.Real{}).WithMaxInterval(watchMaxInterval)
	if err := watcher.Run(ctx, printer.print); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
