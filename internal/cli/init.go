package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/reltime/internal/config"
	"github.com/spetersoncode/reltime/internal/db"
	apperrors "github.com/spetersoncode/reltime/internal/errors"
)

var (
	initForce      bool
	initConfigPath string
)

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing database")
	initCmd.Flags().StringVar(&initConfigPath, "config", config.DefaultConfigPath(), "Where to write the sample config file")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize reltime for first-time use",
	Long: `Initialize reltime by creating the ~/.reltime/ directory and database.

This command:
- Creates ~/.reltime/ directory if it doesn't exist
- Creates reltime.db with the board schema
- Writes a commented sample config.toml if none exists

Use --force to overwrite an existing database.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

type initResult struct {
	Database      string `json:"database"`
	Created       bool   `json:"created"`
	Schema        int64  `json:"schema_version,omitempty"`
	Config        string `json:"config,omitempty"`
	ConfigCreated bool   `json:"config_created"`
}

func runInit(cmd *cobra.Command, args []string) error {
	path := db.ResolvePath(GetDBPath())
	result := initResult{Database: path}

	if db.Exists(path) && !initForce {
		if IsJSON() {
			return OutputJSON(result)
		}
		return apperrors.Conflict("database already exists at %s", path).
			WithSuggestion("Use --force to overwrite it.")
	}

	// Delete existing database if force is set
	if initForce && db.Exists(path) {
		VerboseOutput("Removing existing database...\n")
		if err := db.Delete(path); err != nil {
			return apperrors.WrapInternal(err, "failed to remove existing database")
		}
	}

	VerboseOutput("Creating database...\n")
	database, err := db.Open(path)
	if err != nil {
		return apperrors.WrapInternal(err, "failed to create database")
	}
	defer database.Close()

	VerboseOutput("Running migrations...\n")
	if err := database.Migrate(); err != nil {
		return apperrors.WrapInternal(err, "failed to run migrations")
	}
	version, err := database.MigrationStatus()
	if err != nil {
		return apperrors.WrapInternal(err, "failed to get migration status")
	}
	result.Created = true
	result.Schema = version

	if initConfigPath != "" {
		result.Config = initConfigPath
		if _, err := os.Stat(initConfigPath); os.IsNotExist(err) {
			if err := config.WriteConfigFile(initConfigPath); err != nil {
				return apperrors.WrapInternal(err, "failed to write config file")
			}
			result.ConfigCreated = true
		}
	}

	if IsJSON() {
		return OutputJSON(result)
	}

	OutputLine("Initialized reltime database at %s", database.Path())
	OutputLine("Schema version: %d", version)
	if result.ConfigCreated {
		OutputLine("Wrote sample config to %s", result.Config)
	}
	return nil
}
