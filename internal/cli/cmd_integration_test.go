package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/reltime/internal/config"
	"github.com/spetersoncode/reltime/internal/observer"
	"github.com/spetersoncode/reltime/internal/service"
	"github.com/spetersoncode/reltime/internal/tasks"
)

// =============================================================================
// Test Helpers for CLI Command Execution
// =============================================================================

// captureOutput captures stdout and stderr during function execution
func captureOutput(fn func()) (string, string) {
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()

	os.Stdout = wOut
	os.Stderr = wErr

	// Drain both pipes while fn runs so large output cannot block it
	var wg sync.WaitGroup
	var stdout, stderr string
	wg.Add(2)
	go func() {
		defer wg.Done()
		out, _ := io.ReadAll(rOut)
		stdout = string(out)
	}()
	go func() {
		defer wg.Done()
		out, _ := io.ReadAll(rErr)
		stderr = string(out)
	}()

	fn()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	wg.Wait()

	return stdout, stderr
}

// resetGlobalFlags resets all global CLI flags to their default values.
// This is necessary because cobra keeps state between test runs.
// Default values must match the flag defaults defined in the init() functions.
func resetGlobalFlags() {
	// Root command flags
	dbPath = ""
	jsonOut = false
	quiet = false
	verbose = false
	noColor = false
	logLevel = ""
	globalConfig = config.DefaultConfig()

	// Attribute flags
	attrFormat = ""
	attrTense = ""
	attrPrecision = ""
	attrThreshold = ""
	attrStyle = ""
	renderPrefix = "on"
	renderNow = ""

	// Duration command flags
	durationRef = ""
	durationTo = ""
	durationNow = ""
	durationPrecision = "second"

	// Board, watch and init flags
	boardNow = ""
	watchMaxInterval = observer.DefaultMaxInterval
	initForce = false
	initConfigPath = ""
	backupList = false
}

// runCmd executes a command with the given args and returns output and error.
// It resets flags before running and uses the provided database path.
func runCmd(t *testing.T, testDBPath string, args ...string) (string, error) {
	t.Helper()
	resetGlobalFlags()

	fullArgs := append([]string{"--db", testDBPath}, args...)

	var execErr error
	stdout, _ := captureOutput(func() {
		execErr = executeArgs(fullArgs)
	})

	return stdout, execErr
}

// runCmdJSON executes a command with --json flag and parses the result
func runCmdJSON(t *testing.T, testDBPath string, result any, args ...string) error {
	t.Helper()
	out, err := runCmd(t, testDBPath, append([]string{"--json"}, args...)...)
	if err != nil {
		return err
	}
	if result != nil && out != "" {
		return json.Unmarshal([]byte(out), result)
	}
	return nil
}

// testDBPath returns a database path in an isolated temp directory.
func testDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

// =============================================================================
// Version and Init Command Tests
// =============================================================================

func TestCmdVersion(t *testing.T) {
	output, err := runCmd(t, testDBPath(t), "version")
	require.NoError(t, err)
	assert.Contains(t, output, "reltime")
	assert.Contains(t, output, "not initialized")
}

func TestCmdVersionJSON(t *testing.T) {
	var result map[string]any
	err := runCmdJSON(t, testDBPath(t), &result, "version")
	require.NoError(t, err)
	assert.Contains(t, result, "version")
	assert.Contains(t, result, "go_version")
}

func TestCmdInit(t *testing.T) {
	path := testDBPath(t)
	configPath := filepath.Join(t.TempDir(), "config.toml")

	var result initResult
	require.NoError(t, runCmdJSON(t, path, &result, "init", "--config", configPath))
	assert.True(t, result.Created)
	assert.Positive(t, result.Schema)
	assert.True(t, result.ConfigCreated)
	assert.FileExists(t, configPath)

	_, err := runCmd(t, path, "init", "--config", configPath)
	require.Error(t, err)
	assert.Equal(t, 6, ExitCode(err))

	out, err := runCmd(t, path, "init", "--force", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized reltime database")
	assert.NotContains(t, out, "Wrote sample config")
}

// =============================================================================
// Duration Command Tests
// =============================================================================

func TestCmdDuration(t *testing.T) {
	path := testDBPath(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"parse", []string{"duration", "parse", "P1DT2H"}, "P1DT2H\t1 day, 2 hours\n"},
		{"parse invalid", []string{"duration", "parse", "soon"}, "PT0S (not an ISO-8601 duration)\n"},
		{"round", []string{"duration", "round", "P10D", "--ref", "2024-01-15T10:00:00Z"}, "P1W\t1 week\n"},
		{"apply", []string{"duration", "apply", "PT90M", "--to", "2024-01-15T10:00:00Z"}, "2024-01-15T11:30:00Z\n"},
		{"compare", []string{"duration", "compare", "P1D", "PT1H"}, "-1\tP1D is longer than PT1H\n"},
		{"compare equal", []string{"duration", "compare", "P1D", "PT24H", "--ref", "2024-01-15"}, "0\tP1D is as long as PT24H\n"},
		{"parse negative", []string{"duration", "parse", "-P3MT5M"}, "-P3MT5M\t3 months, 5 minutes\n"},
		{"round negative", []string{"duration", "round", "-P10D", "--ref", "2024-01-15T10:00:00Z"}, "-P1W\t1 week\n"},
		{"round negative after flag", []string{"duration", "round", "--ref", "2024-01-15T10:00:00Z", "-PT58M"}, "-PT1H\t1 hour\n"},
		{"apply negative", []string{"duration", "apply", "-P1M", "--to", "2024-03-15T10:00:00Z"}, "2024-02-15T10:00:00Z\n"},
		{"compare negative first", []string{"duration", "compare", "-PT5M", "P1D"}, "1\t-PT5M is shorter than P1D\n"},
		{"compare negative second", []string{"duration", "compare", "P1D", "-PT5M", "--ref", "2024-01-15"}, "-1\tP1D is longer than -PT5M\n"},
		{"explicit terminator", []string{"duration", "parse", "--", "-PT5M"}, "-PT5M\t5 minutes\n"},
		{"elapsed", []string{"duration", "elapsed", "2024-01-15T05:58:00Z", "--now", "2024-01-15T10:00:00Z"}, "-PT4H2M\t4 hours, 2 minutes\n"},
		{"elapsed at hour precision", []string{"duration", "elapsed", "2024-01-15T05:58:00Z", "--now", "2024-01-15T10:00:00Z", "--precision", "hour"}, "-PT4H\t4 hours\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, path, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCmdDurationJSON(t *testing.T) {
	var result durationOutput
	require.NoError(t, runCmdJSON(t, testDBPath(t), &result, "duration", "parse", "-PT5M"))
	assert.True(t, result.Valid)
	assert.Equal(t, "-PT5M", result.ISO)
	assert.Equal(t, -1, result.Sign)
	assert.Equal(t, "5 minutes", result.Text)
}

func TestProtectNegativeDurations(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			"positionals move behind the terminator in order",
			[]string{"--db", "x.db", "duration", "compare", "-PT5M", "P1D", "--ref", "2024-01-15"},
			[]string{"--db", "x.db", "duration", "compare", "--ref", "2024-01-15", "--", "-PT5M", "P1D"},
		},
		{
			"boolean flags keep no value",
			[]string{"duration", "round", "--json", "-P1D"},
			[]string{"duration", "round", "--json", "--", "-P1D"},
		},
		{
			"flag value that looks negative stays with its flag",
			[]string{"board", "add", "later", "2024-02-01", "--threshold", "-P1D"},
			[]string{"board", "add", "later", "2024-02-01", "--threshold", "-P1D"},
		},
		{
			"no negative duration",
			[]string{"duration", "round", "P10D", "--ref", "2024-01-15"},
			[]string{"duration", "round", "P10D", "--ref", "2024-01-15"},
		},
		{
			"not a duration",
			[]string{"duration", "parse", "-Pxyz"},
			[]string{"duration", "parse", "-Pxyz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, protectNegativeDurations(rootCmd, tt.args))
		})
	}
}

func TestCmdDurationErrors(t *testing.T) {
	path := testDBPath(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"round invalid duration", []string{"duration", "round", "soon"}, 2},
		{"compare invalid duration", []string{"duration", "compare", "P1D", "P1X"}, 2},
		{"apply invalid instant", []string{"duration", "apply", "P1D", "--to", "someday"}, 4},
		{"elapsed invalid precision", []string{"duration", "elapsed", "2024-01-15", "--precision", "fortnight"}, 2},
		{"elapsed invalid datetime", []string{"duration", "elapsed", "someday"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, path, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, ExitCode(err))
		})
	}
}

// =============================================================================
// Render Command Tests
// =============================================================================

func TestCmdRender(t *testing.T) {
	path := testDBPath(t)
	now := "2024-01-15T10:00:00Z"

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"relative", []string{"2024-01-15T09:57:00Z"}, "3 minutes ago"},
		{"future", []string{"2024-01-17T10:00:00Z"}, "in 2 days"},
		{"absolute beyond threshold", []string{"2023-11-01"}, "on Nov 1, 2023"},
		{"custom prefix", []string{"2023-11-01", "--prefix", "since"}, "since Nov 1, 2023"},
		{"micro", []string{"2024-01-15T05:58:00Z", "--format", "micro"}, "4h"},
		{"duration short", []string{"2024-01-15T05:58:00Z", "--format", "duration", "--style", "short"}, "4 hr, 2 min"},
		{"future tense clamps past", []string{"2024-01-15T09:00:00Z", "--tense", "future"}, "now"},
		{"short style", []string{"2023-01-15T10:00:00Z", "--threshold", "P2Y", "--style", "short"}, "last yr."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"render", "--now", now}, tt.args...)
			out, err := runCmd(t, path, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestCmdRenderJSON(t *testing.T) {
	var result renderResult
	err := runCmdJSON(t, testDBPath(t), &result, "render", "2024-01-15T09:57:00Z", "--now", "2024-01-15T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "3 minutes ago", result.Text)
	require.NotNil(t, result.RefreshMS)
	assert.Equal(t, int64(60_000), *result.RefreshMS)
}

func TestCmdRenderErrors(t *testing.T) {
	path := testDBPath(t)

	_, err := runCmd(t, path, "render", "someday")
	require.Error(t, err)
	assert.Equal(t, 4, ExitCode(err))

	_, err = runCmd(t, path, "render", "2024-01-15", "--format", "fuzzy")
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
	assert.Contains(t, FormatErrorMessage(err), "invalid format")
}

// =============================================================================
// Board Command Tests
// =============================================================================

func TestCmdBoard(t *testing.T) {
	path := testDBPath(t)
	now := "2024-01-15T10:00:00Z"

	out, err := runCmd(t, path, "board", "list", "--now", now)
	require.NoError(t, err)
	assert.Contains(t, out, "No timestamps on the board")

	out, err = runCmd(t, path, "board", "add", "deploy", "2024-01-15T09:57:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "Added deploy")

	_, err = runCmd(t, path, "board", "add", "uptime", "2024-01-15T05:58:00Z", "--format", "elapsed", "--style", "narrow")
	require.NoError(t, err)

	t.Run("duplicate", func(t *testing.T) {
		_, err := runCmd(t, path, "board", "add", "deploy", "2024-02-01")
		require.Error(t, err)
		assert.Equal(t, 6, ExitCode(err))
	})

	t.Run("invalid attributes", func(t *testing.T) {
		_, err := runCmd(t, path, "board", "add", "later", "2024-02-01", "--threshold", "soon")
		require.Error(t, err)
		assert.Equal(t, 2, ExitCode(err))
	})

	t.Run("list", func(t *testing.T) {
		out, err := runCmd(t, path, "board", "list", "--now", now)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "NAME"))
		assert.Contains(t, lines[1], "deploy")
		assert.Contains(t, lines[1], "3 minutes ago")
		assert.Contains(t, lines[2], "4h 2m")
	})

	t.Run("list json", func(t *testing.T) {
		var rows []service.Row
		require.NoError(t, runCmdJSON(t, path, &rows, "board", "list", "--now", now))
		require.Len(t, rows, 2)
		assert.Equal(t, "uptime", rows[1].Name)
		require.NotNil(t, rows[1].RefreshMS)
		assert.Equal(t, int64(1000), *rows[1].RefreshMS)
	})

	t.Run("remove", func(t *testing.T) {
		out, err := runCmd(t, path, "board", "rm", "deploy")
		require.NoError(t, err)
		assert.Contains(t, out, "Removed deploy")

		_, err = runCmd(t, path, "board", "rm", "deploy")
		require.Error(t, err)
		assert.Equal(t, 3, ExitCode(err))
		assert.Contains(t, FormatErrorMessage(err), "Suggestion:")
	})
}

func TestCmdBoardImportExport(t *testing.T) {
	path := testDBPath(t)
	dir := t.TempDir()

	boardFile := filepath.Join(dir, "board.yaml")
	require.NoError(t, os.WriteFile(boardFile, []byte(`timestamps:
  - name: launch
    datetime: "2025-06-01"
    tense: future
    precision: day
  - name: deploy
    datetime: "2024-01-15T09:57:00Z"
    format: micro
`), 0644))

	out, err := runCmd(t, path, "board", "import", boardFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 new, 0 updated")

	exported := filepath.Join(dir, "export.yaml")
	_, err = runCmd(t, path, "board", "export", exported)
	require.NoError(t, err)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: launch")
	assert.Contains(t, string(data), "precision: day")
	assert.Contains(t, string(data), "format: micro")

	other := testDBPath(t)
	var result service.ImportResult
	require.NoError(t, runCmdJSON(t, other, &result, "board", "import", exported))
	assert.Equal(t, service.ImportResult{Created: 2}, result)

	t.Run("missing file", func(t *testing.T) {
		_, err := runCmd(t, path, "board", "import", filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
		assert.Equal(t, 3, ExitCode(err))
	})

	t.Run("invalid file", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("timestamps:\n  - name: x\n    datetime: whenever\n"), 0644))
		_, err := runCmd(t, path, "board", "import", bad)
		require.Error(t, err)
		assert.Equal(t, 2, ExitCode(err))
	})
}

func TestCmdBackup(t *testing.T) {
	path := testDBPath(t)

	_, err := runCmd(t, path, "backup")
	require.Error(t, err)
	assert.Equal(t, 3, ExitCode(err))

	// The first add creates the database; the second finds it with no backups.
	_, err = runCmd(t, path, "board", "add", "deploy", "2024-01-15T09:57:00Z")
	require.NoError(t, err)
	assert.NoFileExists(t, path+".bak.1")
	_, err = runCmd(t, path, "board", "add", "launch", "2024-06-01")
	require.NoError(t, err)
	assert.FileExists(t, path+".bak.1")

	var result backupResult
	require.NoError(t, runCmdJSON(t, path, &result, "backup", "--list"))
	assert.Empty(t, result.Created)
	require.Len(t, result.Backups, 1)
	assert.Equal(t, path+".bak.1", result.Backups[0].Path)
	assert.Equal(t, "just now", result.Backups[0].Age)

	require.NoError(t, runCmdJSON(t, path, &result, "backup"))
	assert.Equal(t, path+".bak.1", result.Created)
	require.Len(t, result.Backups, 2)
	assert.Equal(t, path+".bak.1", result.Backups[0].Path)
	assert.Equal(t, path+".bak.2", result.Backups[1].Path)

	t.Run("list shows age", func(t *testing.T) {
		old := time.Now().Add(-3 * time.Hour)
		require.NoError(t, os.Chtimes(path+".bak.2", old, old))

		out, err := runCmd(t, path, "backup", "--list")
		require.NoError(t, err)
		assert.Contains(t, out, path+".bak.1\tjust now\n")
		assert.Contains(t, out, path+".bak.2\t3 hours ago\n")
	})

	t.Run("disabled", func(t *testing.T) {
		path := testDBPath(t)
		_, err := runCmd(t, path, "board", "add", "deploy", "2024-01-15T09:57:00Z")
		require.NoError(t, err)

		resetGlobalFlags()
		globalConfig.Backup.Enabled = false
		rootCmd.SetArgs([]string{"--db", path, "board", "rm", "deploy"})
		captureOutput(func() { err = rootCmd.Execute() })
		require.NoError(t, err)
		assert.NoFileExists(t, path+".bak.1")
	})
}

func TestCmdWatchEmptyBoard(t *testing.T) {
	out, err := runCmd(t, testDBPath(t), "watch")
	require.NoError(t, err)
	assert.Contains(t, out, "No timestamps on the board")
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestGetDBPath_WithConfig(t *testing.T) {
	origConfig := globalConfig
	defer func() { globalConfig = origConfig }()

	globalConfig = &config.Config{DB: "/config/path.db"}
	dbPath = ""
	assert.Equal(t, "/config/path.db", GetDBPath())

	dbPath = "/flag/path.db"
	assert.Equal(t, "/flag/path.db", GetDBPath())

	dbPath = ""
}

func TestBoardDefaults_FromConfig(t *testing.T) {
	origConfig := globalConfig
	defer func() { globalConfig = origConfig }()

	globalConfig = config.DefaultConfig()
	globalConfig.TimeZone = "America/New_York"
	globalConfig.DefaultStyle = "narrow"

	defaults, err := boardDefaults()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", defaults.TimeZone.String())
	assert.Equal(t, "narrow", string(defaults.Style))

	globalConfig.TimeZone = "Mars/Olympus"
	_, err = boardDefaults()
	assert.Error(t, err)
}

func TestWatchPrinter(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	changes := []tasks.Change{
		{Name: "deploy", Text: "3 minutes ago", At: at},
		{Name: "uptime", Text: "4h 2m", At: at},
		{Name: "deploy", Text: "4 minutes ago", At: at.Add(time.Minute)},
	}

	t.Run("lines", func(t *testing.T) {
		var buf bytes.Buffer
		p := newWatchPrinter(&buf, false, false)
		for _, c := range changes {
			p.print(c)
		}
		assert.Equal(t, "10:00:00  deploy: 3 minutes ago\n10:00:00  uptime: 4h 2m\n10:01:00  deploy: 4 minutes ago\n", buf.String())
	})

	t.Run("json lines", func(t *testing.T) {
		var buf bytes.Buffer
		p := newWatchPrinter(&buf, true, false)
		for _, c := range changes {
			p.print(c)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		var last tasks.Change
		require.NoError(t, json.Unmarshal([]byte(lines[2]), &last))
		assert.Equal(t, "4 minutes ago", last.Text)
	})

	t.Run("redraw", func(t *testing.T) {
		var buf bytes.Buffer
		p := newWatchPrinter(&buf, false, true)
		for _, c := range changes {
			p.print(c)
		}
		screens := strings.Split(buf.String(), "\033[H\033[2J")
		last := screens[len(screens)-1]
		assert.Equal(t, "NAME    TEXT\ndeploy  4 minutes ago\nuptime  4h 2m\n", last)
	})
}
