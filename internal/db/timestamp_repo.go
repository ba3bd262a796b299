package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/models"
)

var (
	// ErrNotFound is returned when no timestamp matches.
	ErrNotFound = errors.New("timestamp not found")
	// ErrDuplicateName is returned when a timestamp name is already taken.
	ErrDuplicateName = errors.New("timestamp name already exists")
)

const timestampColumns = `id, name, datetime, format, tense, precision, threshold, style, created_at, updated_at`

// TimestampRepo provides database operations for board timestamps.
type TimestampRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewTimestampRepo creates a new TimestampRepo.
func NewTimestampRepo(db *sql.DB) *TimestampRepo {
	return &TimestampRepo{db: db, now: time.Now}
}

// Create inserts ts, assigning its ID and timestamps.
func (r *TimestampRepo) Create(ts *models.Timestamp) error {
	ts.ApplyDefaults()
	if err := ts.Validate(); err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}

	query := `
		INSERT INTO timestamps (` + timestampColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id := uuid.NewString()
	now := r.now()
	nowStr := FormatTime(now)
	_, err := r.db.Exec(query, id, ts.Name, ts.Datetime, ts.Format, ts.Tense,
		ts.Precision.String(), ts.Threshold.String(), ts.Style, nowStr, nowStr)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateName, ts.Name)
		}
		return fmt.Errorf("failed to create timestamp: %w", err)
	}

	ts.ID = id
	ts.CreatedAt = now
	ts.UpdatedAt = now
	return nil
}

// GetByName retrieves a timestamp by name. It returns nil when none exists.
func (r *TimestampRepo) GetByName(name string) (*models.Timestamp, error) {
	query := `SELECT ` + timestampColumns + ` FROM timestamps WHERE name = ?`
	return r.scanOne(r.db.QueryRow(query, name))
}

// List retrieves every timestamp ordered by name.
func (r *TimestampRepo) List() ([]*models.Timestamp, error) {
	query := `SELECT ` + timestampColumns + ` FROM timestamps ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list timestamps: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// Update rewrites the attributes of the timestamp with ts.Name.
func (r *TimestampRepo) Update(ts *models.Timestamp) error {
	ts.ApplyDefaults()
	if err := ts.Validate(); err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}

	query := `
		UPDATE timestamps
		SET datetime = ?, format = ?, tense = ?, precision = ?, threshold = ?, style = ?, updated_at = ?
		WHERE name = ?
	`
	now := r.now()
	result, err := r.db.Exec(query, ts.Datetime, ts.Format, ts.Tense,
		ts.Precision.String(), ts.Threshold.String(), ts.Style, FormatTime(now), ts.Name)
	if err != nil {
		return fmt.Errorf("failed to update timestamp: %w", err)
	}
	if err := requireRow(result, ts.Name); err != nil {
		return err
	}
	ts.UpdatedAt = now
	return nil
}

// Upsert creates ts or updates the existing timestamp with the same name.
// It reports whether a new row was created.
func (r *TimestampRepo) Upsert(ts *models.Timestamp) (bool, error) {
	existing, err := r.GetByName(ts.Name)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return true, r.Create(ts)
	}
	if err := r.Update(ts); err != nil {
		return false, err
	}
	ts.ID = existing.ID
	ts.CreatedAt = existing.CreatedAt
	return false, nil
}

// Delete deletes a timestamp by name.
func (r *TimestampRepo) Delete(name string) error {
	result, err := r.db.Exec(`DELETE FROM timestamps WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete timestamp: %w", err)
	}
	return requireRow(result, name)
}

func requireRow(result sql.Result, name string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTimestamp(row rowScanner) (*models.Timestamp, error) {
	var (
		ts                   models.Timestamp
		precision, threshold string
		createdAt, updatedAt string
	)
	err := row.Scan(&ts.ID, &ts.Name, &ts.Datetime, &ts.Format, &ts.Tense,
		&precision, &threshold, &ts.Style, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if ts.Precision, err = duration.ParseUnit(precision); err != nil {
		return nil, fmt.Errorf("timestamp %s: %w", ts.Name, err)
	}
	if err := ts.Threshold.UnmarshalText([]byte(threshold)); err != nil {
		return nil, fmt.Errorf("timestamp %s: %w", ts.Name, err)
	}
	if ts.CreatedAt, err = ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("timestamp %s: created_at: %w", ts.Name, err)
	}
	if ts.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("timestamp %s: updated_at: %w", ts.Name, err)
	}
	return &ts, nil
}

func (r *TimestampRepo) scanOne(row *sql.Row) (*models.Timestamp, error) {
	ts, err := scanTimestamp(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan timestamp: %w", err)
	}
	return ts, nil
}

func (r *TimestampRepo) scanMany(rows *sql.Rows) ([]*models.Timestamp, error) {
	var timestamps []*models.Timestamp
	for rows.Next() {
		ts, err := scanTimestamp(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timestamp: %w", err)
		}
		timestamps = append(timestamps, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timestamps: %w", err)
	}
	return timestamps, nil
}
