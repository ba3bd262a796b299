package cli

import (
	"strings"

	apperrors "github.com/spetersoncode/reltime/internal/errors"
)

// ExitCode returns the exit code for any error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return apperrors.GetCLIExitCode(err)
}

// FormatErrorMessage returns formatted error with suggestion if available.
func FormatErrorMessage(err error) string {
	e := apperrors.Classify(err)
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.Error())
	if e.Suggestion != "" {
		b.WriteString("\n\nSuggestion: ")
		b.WriteString(e.Suggestion)
	}
	return b.String()
}

// invalidFlag reports a flag value that could not be parsed.
func invalidFlag(err error, flag string) error {
	return apperrors.Wrap(err, apperrors.KindInvalidArgs, "invalid --%s", flag)
}

// Common suggestions
const (
	SuggestRunInit     = "Run 'reltime init' to create a new database."
	SuggestListBoard   = "Run 'reltime board list' to see stored timestamps."
	SuggestISODuration = "Durations use ISO-8601, for example P1DT2H or -PT30M."
)
