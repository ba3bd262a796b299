package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/reltime/internal/clock"
	"github.com/spetersoncode/reltime/internal/config"
	"github.com/spetersoncode/reltime/internal/duration"
)

var now = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func defaultTestConfig() config.BackupConfig {
	return config.BackupConfig{
		Enabled:  true,
		Interval: duration.Duration{Days: 1},
		MaxCount: 5,
	}
}

// setup writes a database file and returns its path and a manager on a fake
// clock at now.
func setup(t *testing.T, cfg config.BackupConfig) (string, string, *Manager) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "reltime.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("current data"), 0644))
	return dir, dbPath, NewManager(dbPath, cfg, clock.NewFake(now))
}

// writeBackup writes backup number n with the given mtime.
func writeBackup(t *testing.T, dir string, n int, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, fmt.Sprintf("reltime.db.bak.%d", n))
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("backup %d", n)), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewManager(t *testing.T) {
	t.Run("uses custom backup path when specified", func(t *testing.T) {
		cfg := defaultTestConfig()
		cfg.Path = "/custom/backup/path"
		assert.Equal(t, "/custom/backup/path", NewManager("/data/reltime.db", cfg, nil).Dir())
	})

	t.Run("uses db directory when backup path not specified", func(t *testing.T) {
		assert.Equal(t, "/data", NewManager("/data/reltime.db", defaultTestConfig(), nil).Dir())
	})
}

func TestBackupIfNeeded_Skips(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := defaultTestConfig()
		cfg.Enabled = false
		_, _, m := setup(t, cfg)

		path, err := m.BackupIfNeeded()
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("no database", func(t *testing.T) {
		m := NewManager(filepath.Join(t.TempDir(), "missing.db"), defaultTestConfig(), clock.NewFake(now))

		path, err := m.BackupIfNeeded()
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("recent backup", func(t *testing.T) {
		dir, _, m := setup(t, defaultTestConfig())
		writeBackup(t, dir, 1, now.Add(-23*time.Hour))

		path, err := m.BackupIfNeeded()
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, "backup 1", readFile(t, filepath.Join(dir, "reltime.db.bak.1")))
	})
}

func TestBackupIfNeeded_FirstBackup(t *testing.T) {
	dir, _, m := setup(t, defaultTestConfig())

	path, err := m.BackupIfNeeded()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reltime.db.bak.1"), path)
	assert.Equal(t, "current data", readFile(t, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.WithinDuration(t, now, info.ModTime(), time.Second, "backups are stamped with the clock")

	path, err = m.BackupIfNeeded()
	require.NoError(t, err)
	assert.Empty(t, path, "a fresh backup is not repeated")
}

func TestBackupIfNeeded_StaleBackup(t *testing.T) {
	dir, _, m := setup(t, defaultTestConfig())
	writeBackup(t, dir, 1, now.Add(-24*time.Hour))

	path, err := m.BackupIfNeeded()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reltime.db.bak.1"), path)
	assert.Equal(t, "current data", readFile(t, path))
	assert.Equal(t, "backup 1", readFile(t, filepath.Join(dir, "reltime.db.bak.2")))
}

func TestNextDue_CalendarInterval(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Interval = duration.Duration{Months: 1}
	dir, _, m := setup(t, cfg)

	next, err := m.NextDue()
	require.NoError(t, err)
	assert.True(t, next.IsZero(), "due when there are no backups")

	writeBackup(t, dir, 1, now.AddDate(0, 0, -20))
	next, err = m.NextDue()
	require.NoError(t, err)
	assert.True(t, next.Equal(time.Date(2024, 1, 26, 10, 0, 0, 0, time.UTC)), next.String())

	writeBackup(t, dir, 1, time.Date(2023, 12, 15, 10, 0, 0, 0, time.UTC))
	next, err = m.NextDue()
	require.NoError(t, err)
	assert.True(t, next.IsZero(), "one calendar month has passed")
}

func TestBackupRotation(t *testing.T) {
	dir, _, m := setup(t, defaultTestConfig())
	for i := 1; i <= 3; i++ {
		writeBackup(t, dir, i, now.Add(-time.Duration(25+i)*time.Hour))
	}

	_, err := m.BackupIfNeeded()
	require.NoError(t, err)

	backups, err := m.List()
	require.NoError(t, err)
	assert.Len(t, backups, 4)
	assert.Equal(t, "current data", readFile(t, filepath.Join(dir, "reltime.db.bak.1")))
	assert.Equal(t, "backup 1", readFile(t, filepath.Join(dir, "reltime.db.bak.2")))
	assert.Equal(t, "backup 3", readFile(t, filepath.Join(dir, "reltime.db.bak.4")))
}

func TestBackupRotation_ExceedsMaxCount(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.MaxCount = 3
	dir, _, m := setup(t, cfg)
	for i := 1; i <= 3; i++ {
		writeBackup(t, dir, i, now.Add(-time.Duration(25+i)*time.Hour))
	}

	_, err := m.Backup()
	require.NoError(t, err)

	backups, err := m.List()
	require.NoError(t, err)
	assert.Len(t, backups, 3, "should only keep MaxCount backups")
	assert.NoFileExists(t, filepath.Join(dir, "reltime.db.bak.4"))
	assert.Equal(t, "backup 2", readFile(t, filepath.Join(dir, "reltime.db.bak.3")))
}

func TestList(t *testing.T) {
	dir, _, m := setup(t, defaultTestConfig())

	backups, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, backups)

	for _, n := range []int{3, 1, 2} {
		writeBackup(t, dir, n, now)
	}
	for _, name := range []string{"reltime.db.bak.x", "reltime.db.bak.0", "other.db.bak.1"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	backups, err = m.List()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "reltime.db.bak.1"),
		filepath.Join(dir, "reltime.db.bak.2"),
		filepath.Join(dir, "reltime.db.bak.3"),
	}, backups)
}
