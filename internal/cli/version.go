package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/reltime/internal/backup"
	"github.com/spetersoncode/reltime/internal/db"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of reltime, build date, Go version, and database information.`,
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Database  string `json:"database,omitempty"`
	Schema    int64  `json:"schema_version,omitempty"`
	Backups   int    `json:"backups"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := versionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	// Report the schema version only for an existing database
	path := db.ResolvePath(GetDBPath())
	if db.Exists(path) {
		info.Database = path
		if database, err := db.Open(path); err == nil {
			defer database.Close()
			if version, err := database.MigrationStatus(); err == nil {
				info.Schema = version
			}
		}
		if backups, err := backup.NewManager(path, GetConfig().Backup, nil).List(); err == nil {
			info.Backups = len(backups)
		}
	}

	if IsJSON() {
		return OutputJSON(info)
	}

	// Compact format matching --version: reltime v0.1.0 (9f61316, 2026-02-02)
	fmt.Printf("reltime %s (%s, %s)\n", info.Version, shortCommit(), shortDate())
	fmt.Printf("Go: %s\n", info.GoVersion)
	fmt.Printf("Platform: %s\n", info.Platform)

	if info.Database != "" {
		fmt.Printf("Database: %s (schema v%d, %d backups)\n", info.Database, info.Schema, info.Backups)
	} else {
		fmt.Println("Database: not initialized (run 'reltime init')")
	}

	return nil
}
