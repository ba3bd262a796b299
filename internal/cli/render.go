package cli

import (
	"github.com/spf13/cobra"

	"github.com/spetersoncode/reltime/internal/element"
	apperrors "github.com/spetersoncode/reltime/internal/errors"
	"github.com/spetersoncode/reltime/internal/service"
)

// Attribute flags shared by render and board add
var (
	attrFormat    string
	attrTense     string
	attrPrecision string
	attrThreshold string
	attrStyle     string
	renderPrefix  string
	renderNow     string
)

func addAttributeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&attrFormat, "format", "f", "", "Format: auto, relative, duration, elapsed, micro, datetime")
	cmd.Flags().StringVar(&attrTense, "tense", "", "Tense: auto, past, future")
	cmd.Flags().StringVarP(&attrPrecision, "precision", "p", "", "Smallest unit: year ... millisecond")
	cmd.Flags().StringVar(&attrThreshold, "threshold", "", "Keep relative text within this ISO-8601 duration of now")
	cmd.Flags().StringVarP(&attrStyle, "style", "s", "", "Unit style: long, short, narrow")
}

func init() {
	addAttributeFlags(renderCmd)
	renderCmd.Flags().StringVar(&renderPrefix, "prefix", "on", "Text before absolute dates in auto and relative formats")
	renderCmd.Flags().StringVar(&renderNow, "now", "", "Render as of this instant (default now)")

	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render <datetime>",
	Short: "Render an instant as text",
	Long: `Render an instant as human text.

The auto format shows relative text ("3 minutes ago") while the instant is
within --threshold of now and an absolute date ("on Jan 2") beyond it. The
duration formats show the time between now and the instant ("4 hours,
2 minutes"); micro rounds it to one unit ("4h").`,
	Example: `  reltime render 2024-01-15T10:00:00Z
  reltime render 2024-01-15T10:00:00Z --format micro
  reltime render 2025-12-25 --tense future --precision day`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

type renderResult struct {
	Datetime  string `json:"datetime"`
	Text      string `json:"text"`
	RefreshMS *int64 `json:"refresh_ms"`
}

// attributeEntry collects the attribute flags.
func attributeEntry(name, datetime string) service.BoardEntry {
	return service.BoardEntry{
		Name:      name,
		Datetime:  datetime,
		Format:    attrFormat,
		Tense:     attrTense,
		Precision: attrPrecision,
		Threshold: attrThreshold,
		Style:     attrStyle,
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	defaults, err := boardDefaults()
	if err != nil {
		return err
	}
	in, err := attributeEntry("", args[0]).Input()
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindInvalidArgs, "invalid render attributes")
	}
	if _, err := element.ParseDatetime(in.Datetime, defaults.TimeZone); err != nil {
		return apperrors.Wrap(err, apperrors.KindUnresolvableInstant, "invalid datetime %q", in.Datetime)
	}
	now, err := parseInstant(renderNow, "now")
	if err != nil {
		return err
	}

	a := defaults.Attributes(in)
	a.Prefix = renderPrefix
	text, refresh, err := service.RenderAt(a, now)
	if err != nil {
		return err
	}

	if IsJSON() {
		return OutputJSON(renderResult{Datetime: in.Datetime, Text: text, RefreshMS: refresh})
	}
	OutputLine("%s", text)
	if refresh != nil {
		VerboseOutput("refresh in %dms\n", *refresh)
	}
	return nil
}
