package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/reltime/internal/backup"
	"github.com/spetersoncode/reltime/internal/db"
	apperrors "github.com/spetersoncode/reltime/internal/errors"
	"github.com/spetersoncode/reltime/internal/format"
)

var backupList bool

func init() {
	backupCmd.Flags().BoolVar(&backupList, "list", false, "List existing backups instead of creating one")
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the board database",
	Long: `Copy the board database to <db>.bak.1, shifting older copies up and
deleting those beyond backup.max_count.

Board-changing commands do this automatically when the newest backup is
older than backup.interval (an ISO-8601 duration such as P1D or P1W).`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

type backupResult struct {
	Dir     string        `json:"dir"`
	Created string        `json:"created,omitempty"`
	Backups []backupEntry `json:"backups"`
}

type backupEntry struct {
	Path    string    `json:"path"`
	ModTime time.Time `json:"modified"`
	Age     string    `json:"age"`
}

// backupEntries stats each backup and describes its age relative to now.
func backupEntries(paths []string, now time.Time) ([]backupEntry, error) {
	entries := make([]backupEntry, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		entries = append(entries, backupEntry{
			Path:    p,
			ModTime: info.ModTime().UTC(),
			Age:     format.Ago(info.ModTime(), now),
		})
	}
	return entries, nil
}

func runBackup(cmd *cobra.Command, args []string) error {
	path := db.ResolvePath(GetDBPath())
	mgr := backup.NewManager(path, GetConfig().Backup, nil)

	result := backupResult{Dir: mgr.Dir()}
	if !backupList {
		if !db.Exists(path) {
			return apperrors.NotFound("database not found at %s", path).WithSuggestion(SuggestRunInit)
		}
		created, err := mgr.Backup()
		if err != nil {
			return apperrors.WrapInternal(err, "backup failed")
		}
		result.Created = created
	}

	paths, err := mgr.List()
	if err != nil {
		return apperrors.WrapInternal(err, "failed to list backups")
	}
	result.Backups, err = backupEntries(paths, time.Now())
	if err != nil {
		return apperrors.WrapInternal(err, "failed to read backups")
	}

	if IsJSON() {
		return OutputJSON(result)
	}
	if result.Created != "" {
		OutputLine("Created backup: %s", result.Created)
		return nil
	}
	if len(result.Backups) == 0 {
		OutputLine("No backups in %s", result.Dir)
		return nil
	}
	for _, b := range result.Backups {
		OutputLine("%s\t%s", b.Path, b.Age)
	}
	return nil
}
