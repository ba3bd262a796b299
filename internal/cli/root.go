package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spetersoncode/reltime/internal/backup"
	"github.com/spetersoncode/reltime/internal/config"
	"github.com/spetersoncode/reltime/internal/db"
	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/element"
	apperrors "github.com/spetersoncode/reltime/internal/errors"
	"github.com/spetersoncode/reltime/internal/logging"
	"github.com/spetersoncode/reltime/internal/service"
)

// Version information (set at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global flags
var (
	dbPath   string
	jsonOut  bool
	quiet    bool
	verbose  bool
	noColor  bool
	logLevel string
)

// Global configuration (loaded once at startup)
var globalConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "reltime",
	Short: "Relative time text that stays current",
	Long: `reltime renders instants as human text ("3 minutes ago", "in 2 days",
"4h 2m"), works with ISO-8601 calendar durations, and keeps a board of named
timestamps whose text is refreshed only as often as it can change.

Use "reltime render 2024-01-15T10:00:00Z" for a one-off render.
Use "reltime board add" and "reltime watch" to track timestamps.
Use "reltime --help" to see all available commands.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		runAutoBackup(cmd)
		return nil
	},
}

// backupAnnotation marks commands that change the board. They take an
// automatic backup first when one is due.
const backupAnnotation = "reltime/backup"

var mutating = map[string]string{backupAnnotation: "true"}

func init() {
	// Load global configuration at startup
	var err error
	globalConfig, err = config.Load()
	if err != nil {
		// If config file is invalid, print warning but continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: failed to load config file: %v\n", err)
		globalConfig = config.DefaultConfig()
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (default ~/.reltime/reltime.db)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (implies --log-level debug)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored log output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	// Set version template for --version flag
	rootCmd.SetVersionTemplate(fmt.Sprintf("reltime %s (%s, %s)\n", Version, shortCommit(), shortDate()))

	rootCmd.AddCommand(versionCmd)
}

// shortCommit returns the first 7 characters of the git commit hash
func shortCommit() string {
	if len(GitCommit) >= 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

// shortDate returns just the date portion of BuildDate (YYYY-MM-DD)
func shortDate() string {
	if len(BuildDate) >= 10 {
		return BuildDate[:10]
	}
	return BuildDate
}

// Execute runs the root command
func Execute() error {
	return executeArgs(os.Args[1:])
}

func executeArgs(args []string) error {
	rootCmd.SetArgs(protectNegativeDurations(rootCmd, args))
	return rootCmd.Execute()
}

// protectNegativeDurations moves the positional arguments of the target
// command behind "--" when one of them is a negative ISO-8601 duration such as
// -PT5M, which flag parsing would otherwise read as a cluster of shorthand
// flags. Command names, flags and flag values keep their places, and the
// positional arguments keep their order.
func protectNegativeDurations(root *cobra.Command, args []string) []string {
	cmd, _, err := root.Find(args)
	if err != nil || cmd == root {
		return args
	}
	names := len(strings.Fields(cmd.CommandPath())) - 1

	var front, positional []string
	found := false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case strings.HasPrefix(arg, "-P") && duration.IsDuration(arg):
			positional = append(positional, arg)
			found = true
		case len(arg) > 1 && arg[0] == '-':
			front = append(front, arg)
			if flagTakesValue(cmd, arg) && i+1 < len(args) {
				i++
				front = append(front, args[i])
			}
		case names > 0:
			front = append(front, arg)
			names--
		default:
			positional = append(positional, arg)
		}
	}
	if !found {
		return args
	}
	return append(append(front, "--"), positional...)
}

// flagTakesValue reports whether arg names a flag of cmd, local or inherited,
// that consumes the next argument.
func flagTakesValue(cmd *cobra.Command, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	long := strings.HasPrefix(arg, "--")
	name := strings.TrimLeft(arg, "-")
	for _, flags := range []*pflag.FlagSet{cmd.Flags(), cmd.InheritedFlags()} {
		var f *pflag.Flag
		switch {
		case long:
			f = flags.Lookup(name)
		case len(name) == 1:
			f = flags.ShorthandLookup(name)
		}
		if f != nil {
			return f.NoOptDefVal == ""
		}
	}
	return false
}

// setupLogging configures the global logger.
// Priority: --log-level > --verbose > env > config file > default
func setupLogging() {
	cfg := GetConfig()
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	if logLevel != "" {
		level = logLevel
	}
	logging.Setup(logging.Options{
		Level:   level,
		JSON:    cfg.LogJSON,
		NoColor: noColor,
	})
}

// GetDBPath returns the database path from flags, config, or default.
// Priority: flag > env > config file > default
func GetDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return GetConfig().GetDB()
}

// GetConfig returns the global configuration.
func GetConfig() *config.Config {
	if globalConfig != nil {
		return globalConfig
	}
	return config.DefaultConfig()
}

// boardDefaults converts the configured defaults for the board service.
func boardDefaults() (service.Defaults, error) {
	cfg := GetConfig()
	loc, err := cfg.Location()
	if err != nil {
		return service.Defaults{}, apperrors.Wrap(err, apperrors.KindInvalidArgs, "invalid configuration")
	}
	return service.Defaults{
		Format:    cfg.DefaultFormat,
		Precision: cfg.DefaultPrecision,
		Threshold: cfg.DefaultThreshold,
		Style:     cfg.DefaultStyle,
		TimeZone:  loc,
	}, nil
}

// openBoard opens and migrates the board database.
func openBoard() (*db.DB, *service.BoardService, error) {
	defaults, err := boardDefaults()
	if err != nil {
		return nil, nil, err
	}
	database, err := db.Open(GetDBPath())
	if err != nil {
		return nil, nil, apperrors.WrapInternal(err, "failed to open database").
			WithSuggestion(SuggestRunInit)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, nil, apperrors.WrapInternal(err, "failed to run migrations")
	}
	log.Debug().Str("path", database.Path()).Msg("opened board")
	return database, service.NewBoardService(database.DB, defaults), nil
}

// runAutoBackup copies the database before a board-changing command when the
// newest backup is older than the configured interval. Failures only warn.
func runAutoBackup(cmd *cobra.Command) {
	if cmd.Annotations[backupAnnotation] != "true" {
		return
	}
	mgr := backup.NewManager(db.ResolvePath(GetDBPath()), GetConfig().Backup, nil)
	path, err := mgr.BackupIfNeeded()
	if err != nil {
		log.Warn().Err(err).Str("dir", mgr.Dir()).Msg("automatic backup failed")
		return
	}
	if path != "" {
		log.Debug().Str("path", path).Msg("created backup")
		VerboseOutput("Created backup: %s\n", path)
	}
}

// parseInstant resolves an instant flag value, defaulting to the wall clock.
func parseInstant(value, flag string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	loc, err := GetConfig().Location()
	if err != nil {
		return time.Time{}, apperrors.Wrap(err, apperrors.KindInvalidArgs, "invalid configuration")
	}
	t, err := element.ParseDatetime(value, loc)
	if err != nil {
		return time.Time{}, apperrors.Wrap(err, apperrors.KindUnresolvableInstant, "invalid --%s %q", flag, value)
	}
	return t, nil
}

// IsJSON returns whether JSON output is requested
func IsJSON() bool {
	return jsonOut
}

// IsQuiet returns whether quiet mode is enabled
func IsQuiet() bool {
	return quiet
}

// IsVerbose returns whether verbose mode is enabled
func IsVerbose() bool {
	return verbose
}

// Output prints to stdout unless quiet mode is enabled
func Output(format string, args ...any) {
	if !quiet {
		fmt.Printf(format, args...)
	}
}

// OutputLine prints a line to stdout unless quiet mode is enabled
func OutputLine(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// VerboseOutput prints to stdout only in verbose mode
func VerboseOutput(format string, args ...any) {
	if verbose && !quiet {
		fmt.Printf(format, args...)
	}
}

// ErrorOutput prints to stderr
func ErrorOutput(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

// OutputJSON prints v as indented JSON.
func OutputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.WrapInternal(err, "failed to marshal output")
	}
	fmt.Println(string(data))
	return nil
}
