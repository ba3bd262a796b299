// Package backup keeps rotating copies of the board database.
//
// Copies live next to the database (or in the configured directory) and are
// named <db>.bak.1, <db>.bak.2, ..., where 1 is the most recent. Commands that
// change the board take a copy first when the newest one is older than the
// configured interval.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spetersoncode/reltime/internal/clock"
	"github.com/spetersoncode/reltime/internal/config"
	"github.com/spetersoncode/reltime/internal/duration"
)

// Manager handles database backup operations.
type Manager struct {
	dbPath    string
	backupDir string
	prefix    string
	cfg       config.BackupConfig
	clock     clock.Clock
}

// NewManager creates a new backup manager for the database at dbPath.
// A nil clock uses the wall clock.
func NewManager(dbPath string, cfg config.BackupConfig, clk clock.Clock) *Manager {
	backupDir := cfg.Path
	if backupDir == "" {
		backupDir = filepath.Dir(dbPath)
	}
	if clk == nil {
		clk = clock.Real{}
	}

	return &Manager{
		dbPath:    dbPath,
		backupDir: backupDir,
		prefix:    filepath.Base(dbPath) + ".bak.",
		cfg:       cfg,
		clock:     clk,
	}
}

// BackupIfNeeded creates a backup when backups are enabled, the database
// exists and the newest backup is at least one interval old. It returns the
// new backup's path, empty when none was needed.
func (m *Manager) BackupIfNeeded() (string, error) {
	if !m.cfg.Enabled {
		return "", nil
	}
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", nil
	}

	next, err := m.NextDue()
	if err != nil {
		return "", fmt.Errorf("checking if backup needed: %w", err)
	}
	if !next.IsZero() {
		return "", nil
	}

	return m.Backup()
}

// Backup rotates existing backups and copies the database to <db>.bak.1.
func (m *Manager) Backup() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	if err := m.rotate(); err != nil {
		return "", fmt.Errorf("rotating backups: %w", err)
	}

	backupPath := filepath.Join(m.backupDir, m.prefix+"1")
	if err := copyFile(m.dbPath, backupPath); err != nil {
		return "", fmt.Errorf("copying database: %w", err)
	}
	// The interval is measured from the backup's own mtime.
	now := m.clock.Now()
	if err := os.Chtimes(backupPath, now, now); err != nil {
		return "", fmt.Errorf("stamping backup: %w", err)
	}
	return backupPath, nil
}

type backupFile struct {
	path   string
	number int
}

// list returns existing backups, newest first.
func (m *Manager) list() ([]backupFile, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []backupFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, m.prefix) {
			continue
		}
		num, err := strconv.Atoi(strings.TrimPrefix(name, m.prefix))
		if err != nil || num < 1 {
			continue
		}
		backups = append(backups, backupFile{path: filepath.Join(m.backupDir, name), number: num})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].number < backups[j].number
	})
	return backups, nil
}

// rotate renames bak.N to bak.N+1, oldest first, and deletes whatever would
// exceed MaxCount.
func (m *Manager) rotate() error {
	backups, err := m.list()
	if err != nil {
		return err
	}

	for i := len(backups) - 1; i >= 0; i-- {
		b := backups[i]
		if b.number+1 > m.cfg.MaxCount {
			if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("deleting old backup %s: %w", b.path, err)
			}
			continue
		}
		newPath := filepath.Join(m.backupDir, fmt.Sprintf("%s%d", m.prefix, b.number+1))
		if err := os.Rename(b.path, newPath); err != nil {
			return fmt.Errorf("renaming backup %s to %s: %w", b.path, newPath, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return dstFile.Sync()
}

// List returns the paths to all existing backup files, newest first.
func (m *Manager) List() ([]string, error) {
	backups, err := m.list()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(backups))
	for i, b := range backups {
		paths[i] = b.path
	}
	return paths, nil
}

// Dir returns the directory where backups are stored.
func (m *Manager) Dir() string {
	return m.backupDir
}

// NextDue returns when the next automatic backup becomes due, the zero time
// when one is due now. The interval is a calendar duration, so P1M means the
// same day next month.
func (m *Manager) NextDue() (time.Time, error) {
	backups, err := m.list()
	if err != nil || len(backups) == 0 {
		return time.Time{}, err
	}
	info, err := os.Stat(backups[0].path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat backup file: %w", err)
	}
	next := duration.Apply(info.ModTime(), m.cfg.Interval.Abs())
	if !m.clock.Now().Before(next) {
		return time.Time{}, nil
	}
	return next, nil
}
