package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/element"
	apperrors "github.com/spetersoncode/reltime/internal/errors"
	"github.com/spetersoncode/reltime/internal/format"
	"github.com/spetersoncode/reltime/internal/models"
)

// Duration command flags
var (
	durationRef       string
	durationTo        string
	durationNow       string
	durationPrecision string
)

func init() {
	durationRoundCmd.Flags().StringVar(&durationRef, "ref", "", "Reference instant for calendar units (default now)")
	durationCompareCmd.Flags().StringVar(&durationRef, "ref", "", "Reference instant for calendar units (default now)")
	durationApplyCmd.Flags().StringVar(&durationTo, "to", "", "Instant to apply the duration to (default now)")
	durationElapsedCmd.Flags().StringVar(&durationNow, "now", "", "Instant to measure to (default now)")
	durationElapsedCmd.Flags().StringVar(&durationPrecision, "precision", "second", "Smallest unit: year ... millisecond")

	durationCmd.AddCommand(durationParseCmd)
	durationCmd.AddCommand(durationRoundCmd)
	durationCmd.AddCommand(durationApplyCmd)
	durationCmd.AddCommand(durationCompareCmd)
	durationCmd.AddCommand(durationElapsedCmd)
	rootCmd.AddCommand(durationCmd)
}

var durationCmd = &cobra.Command{
	Use:   "duration",
	Short: "Work with ISO-8601 calendar durations",
}

var durationParseCmd = &cobra.Command{
	Use:   "parse <duration>",
	Short: "Parse an ISO-8601 duration",
	Long: `Parse an ISO-8601 duration such as P1Y2M, -PT30M or P1DT2.5S.

Text that is not a duration parses to zero and is reported as invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: runDurationParse,
}

var durationRoundCmd = &cobra.Command{
	Use:   "round <duration>",
	Short: "Round a duration to its single largest unit",
	Long: `Round a duration to one unit, carrying into larger units the way a
reader would: 55 seconds is a minute, 10 days is a week, 400 days is a year.

Months and years are measured against --ref.`,
	Example: `  reltime duration round P10D           # P1W
  reltime duration round PT1H40M        # PT2H`,
	Args: cobra.ExactArgs(1),
	RunE: runDurationRound,
}

var durationApplyCmd = &cobra.Command{
	Use:   "apply <duration>",
	Short: "Add a duration to an instant",
	Args:  cobra.ExactArgs(1),
	RunE:  runDurationApply,
}

var durationCompareCmd = &cobra.Command{
	Use:   "compare <a> <b>",
	Short: "Compare the magnitude of two durations",
	Long: `Compare the magnitude of two durations, ignoring sign.

Prints 1 when a is shorter than b, -1 when a is longer and 0 when they are
equal.`,
	Args: cobra.ExactArgs(2),
	RunE: runDurationCompare,
}

var durationElapsedCmd = &cobra.Command{
	Use:   "elapsed <datetime>",
	Short: "Show the calendar duration from now to an instant",
	Long: `Show the calendar duration from now to an instant, truncated at
--precision. Instants in the past give negative durations.`,
	Args: cobra.ExactArgs(1),
	RunE: runDurationElapsed,
}

type durationOutput struct {
	Input string `json:"input,omitempty"`
	Valid bool   `json:"valid"`
	ISO   string `json:"iso"`
	Sign  int    `json:"sign"`
	Text  string `json:"text"`
}

func newDurationOutput(input string, d duration.Duration) durationOutput {
	text := format.DurationText(d, models.StyleLong)
	if d.Blank() {
		text = format.DurationZero(duration.Second, models.StyleLong)
	}
	return durationOutput{
		Input: input,
		Valid: input == "" || duration.IsDuration(input),
		ISO:   d.String(),
		Sign:  d.Sign(),
		Text:  text,
	}
}

func printDuration(out durationOutput) error {
	if IsJSON() {
		return OutputJSON(out)
	}
	if !out.Valid {
		OutputLine("%s (not an ISO-8601 duration)", out.ISO)
		return nil
	}
	OutputLine("%s\t%s", out.ISO, out.Text)
	return nil
}

// parseDurationArg parses a strict ISO-8601 duration argument.
func parseDurationArg(s string) (duration.Duration, error) {
	var d duration.Duration
	if err := d.UnmarshalText([]byte(s)); err != nil {
		return duration.Zero, apperrors.Wrap(err, apperrors.KindInvalidDuration, "invalid duration %q", s).
			WithSuggestion(SuggestISODuration)
	}
	return d, nil
}

func runDurationParse(cmd *cobra.Command, args []string) error {
	return printDuration(newDurationOutput(args[0], duration.Parse(args[0])))
}

func runDurationRound(cmd *cobra.Command, args []string) error {
	d, err := parseDurationArg(args[0])
	if err != nil {
		return err
	}
	ref, err := parseInstant(durationRef, "ref")
	if err != nil {
		return err
	}
	return printDuration(newDurationOutput("", duration.Round(d, ref)))
}

func runDurationApply(cmd *cobra.Command, args []string) error {
	d, err := parseDurationArg(args[0])
	if err != nil {
		return err
	}
	from, err := parseInstant(durationTo, "to")
	if err != nil {
		return err
	}

	result := duration.Apply(from, d)
	if IsJSON() {
		return OutputJSON(map[string]string{
			"from":     from.UTC().Format(time.RFC3339Nano),
			"duration": d.String(),
			"result":   result.Format(time.RFC3339Nano),
		})
	}
	OutputLine("%s", result.Format(time.RFC3339Nano))
	return nil
}

func runDurationCompare(cmd *cobra.Command, args []string) error {
	a, err := parseDurationArg(args[0])
	if err != nil {
		return err
	}
	b, err := parseDurationArg(args[1])
	if err != nil {
		return err
	}
	ref, err := parseInstant(durationRef, "ref")
	if err != nil {
		return err
	}

	result := duration.CompareAt(a, b, ref)
	if IsJSON() {
		return OutputJSON(map[string]any{"a": a.String(), "b": b.String(), "result": result})
	}
	var relation string
	switch result {
	case 1:
		relation = "shorter than"
	case -1:
		relation = "longer than"
	default:
		relation = "as long as"
	}
	OutputLine("%d\t%s is %s %s", result, a, relation, b)
	return nil
}

func runDurationElapsed(cmd *cobra.Command, args []string) error {
	precision, err := duration.ParseUnit(durationPrecision)
	if err != nil {
		return invalidFlag(err, "precision")
	}
	now, err := parseInstant(durationNow, "now")
	if err != nil {
		return err
	}
	loc, err := GetConfig().Location()
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindInvalidArgs, "invalid configuration")
	}
	target, err := element.ParseDatetime(args[0], loc)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindUnresolvableInstant, "invalid datetime %q", args[0])
	}

	out := newDurationOutput("", duration.Elapsed(target, precision, now))
	if !IsJSON() {
		VerboseOutput("from %s to %s\n", now.Format(time.RFC3339), target.Format(time.RFC3339))
	}
	return printDuration(out)
}
