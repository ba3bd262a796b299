package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/spetersoncode/reltime/internal/errors"
	"github.com/spetersoncode/reltime/internal/service"
)

// Board command flags
var (
	boardNow string
)

func init() {
	addAttributeFlags(boardAddCmd)
	boardListCmd.Flags().StringVar(&boardNow, "now", "", "Render as of this instant (default now)")

	boardCmd.AddCommand(boardAddCmd)
	boardCmd.AddCommand(boardListCmd)
	boardCmd.AddCommand(boardRemoveCmd)
	boardCmd.AddCommand(boardImportCmd)
	boardCmd.AddCommand(boardExportCmd)
	rootCmd.AddCommand(boardCmd)
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Manage the board of named timestamps",
	Long: `The board is a list of named timestamps stored in the reltime database.
"reltime board list" renders every entry once; "reltime watch" keeps them
current.`,
}

var boardAddCmd = &cobra.Command{
	Use:   "add <name> <datetime>",
	Short: "Add a timestamp to the board",
	Example: `  reltime board add deploy 2024-01-15T10:00:00Z
  reltime board add uptime 2024-01-01T00:00:00Z --format elapsed --style narrow
  reltime board add launch 2025-06-01 --tense future --precision day`,
	Args: cobra.ExactArgs(2),
	Annotations: mutating,
	RunE: runBoardAdd,
}

var boardListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Render every timestamp on the board",
	Args:    cobra.NoArgs,
	RunE:    runBoardList,
}

var boardRemoveCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"remove"},
	Short:   "Remove a timestamp from the board",
	Args:    cobra.ExactArgs(1),
	Annotations: mutating,
	RunE:    runBoardRemove,
}

var boardImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create or update timestamps from a YAML file",
	Long: `Create or update timestamps from a YAML file ("-" reads stdin):

  timestamps:
    - name: deploy
      datetime: "2024-01-15T10:00:00Z"
      format: micro
    - name: launch
      datetime: "2025-06-01"
      tense: future
      precision: day

Every entry is validated before anything is written.`,
	Args: cobra.ExactArgs(1),
	Annotations: mutating,
	RunE: runBoardImport,
}

var boardExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the board as YAML (default stdout)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBoardExport,
}

func runBoardAdd(cmd *cobra.Command, args []string) error {
	in, err := attributeEntry(args[0], args[1]).Input()
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindInvalidArgs, "invalid timestamp attributes")
	}

	database, board, err := openBoard()
	if err != nil {
		return err
	}
	defer database.Close()

	ts, err := board.Add(in)
	if err != nil {
		return err
	}

	if IsJSON() {
		return OutputJSON(ts)
	}
	OutputLine("Added %s (%s)", ts.Name, ts.Datetime)
	return nil
}

func runBoardList(cmd *cobra.Command, args []string) error {
	now, err := parseInstant(boardNow, "now")
	if err != nil {
		return err
	}

	database, board, err := openBoard()
	if err != nil {
		return err
	}
	defer database.Close()

	rows, err := board.Render(now)
	if err != nil {
		return err
	}

	if IsJSON() {
		return OutputJSON(rows)
	}
	if len(rows) == 0 {
		OutputLine("No timestamps on the board. Add one with 'reltime board add <name> <datetime>'.")
		return nil
	}
	printRows(os.Stdout, rows)
	return nil
}

func printRows(w io.Writer, rows []service.Row) {
	width := len("NAME")
	for _, row := range rows {
		width = max(width, len(row.Name))
	}
	fmt.Fprintf(w, "%-*s  %-24s  %s\n", width, "NAME", "TEXT", "DATETIME")
	for _, row := range rows {
		fmt.Fprintf(w, "%-*s  %-24s  %s\n", width, row.Name, row.Text, row.Datetime)
	}
}

func runBoardRemove(cmd *cobra.Command, args []string) error {
	database, board, err := openBoard()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := board.Remove(args[0]); err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return apperrors.Classify(err).WithSuggestion(SuggestListBoard)
		}
		return err
	}

	if IsJSON() {
		return OutputJSON(map[string]any{"name": args[0], "removed": true})
	}
	OutputLine("Removed %s", args[0])
	return nil
}

func runBoardImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return apperrors.Wrap(err, apperrors.KindNotFound, "cannot read %s", args[0])
		}
		defer f.Close()
		r = f
	}

	database, board, err := openBoard()
	if err != nil {
		return err
	}
	defer database.Close()

	result, err := board.Import(r)
	if err != nil {
		return err
	}

	if IsJSON() {
		return OutputJSON(result)
	}
	OutputLine("Imported %d new, %d updated", result.Created, result.Updated)
	return nil
}

func runBoardExport(cmd *cobra.Command, args []string) error {
	database, board, err := openBoard()
	if err != nil {
		return err
	}
	defer database.Close()

	if len(args) == 0 || args[0] == "-" {
		return board.Export(os.Stdout)
	}

	f, err := os.Create(args[0])
	if err != nil {
		return apperrors.WrapInternal(err, "cannot create %s", args[0])
	}
	if err := board.Export(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return apperrors.WrapInternal(err, "cannot write %s", args[0])
	}
	VerboseOutput("Exported board to %s\n", args[0])
	return nil
}
