package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/models"
)

func newTestRepo(t *testing.T) *TimestampRepo {
	t.Helper()
	repo := NewTimestampRepo(NewTestDB(t).DB)
	clock := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo
}

func TestTimestampRepo_Create(t *testing.T) {
	repo := newTestRepo(t)

	t.Run("creates with defaults", func(t *testing.T) {
		ts := &models.Timestamp{Name: "launch", Datetime: "2024-06-01T09:00:00Z", Precision: duration.Minute}
		require.NoError(t, repo.Create(ts))

		assert.NotEmpty(t, ts.ID)
		assert.Equal(t, models.FormatAuto, ts.Format)
		assert.False(t, ts.CreatedAt.IsZero())

		got, err := repo.GetByName("launch")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, ts.ID, got.ID)
		assert.Equal(t, "2024-06-01T09:00:00Z", got.Datetime)
		assert.Equal(t, models.FormatAuto, got.Format)
		assert.Equal(t, models.TenseAuto, got.Tense)
		assert.Equal(t, duration.Minute, got.Precision)
		assert.Equal(t, duration.Duration{Days: 30}, got.Threshold)
		assert.Equal(t, models.StyleLong, got.Style)
		assert.True(t, ts.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("keeps explicit attributes", func(t *testing.T) {
		ts := &models.Timestamp{
			Name:      "standup",
			Datetime:  "2024-01-16",
			Format:    models.FormatMicro,
			Tense:     models.TenseFuture,
			Precision: duration.Hour,
			Threshold: duration.Duration{Hours: -90},
			Style:     models.StyleNarrow,
		}
		require.NoError(t, repo.Create(ts))

		got, err := repo.GetByName("standup")
		require.NoError(t, err)
		assert.Equal(t, models.FormatMicro, got.Format)
		assert.Equal(t, models.TenseFuture, got.Tense)
		assert.Equal(t, duration.Hour, got.Precision)
		assert.Equal(t, duration.Duration{Hours: -90}, got.Threshold)
		assert.Equal(t, models.StyleNarrow, got.Style)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		err := repo.Create(&models.Timestamp{Name: "launch", Datetime: "2024-07-01"})
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("rejects invalid timestamps", func(t *testing.T) {
		err := repo.Create(&models.Timestamp{Name: "Bad Name", Datetime: "2024-07-01"})
		assert.ErrorContains(t, err, "invalid timestamp")
	})
}

func TestTimestampRepo_GetByName_Missing(t *testing.T) {
	repo := newTestRepo(t)
	got, err := repo.GetByName("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTimestampRepo_List(t *testing.T) {
	repo := newTestRepo(t)

	list, err := repo.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, repo.Create(&models.Timestamp{Name: name, Datetime: "2024-01-01"}))
	}

	list, err = repo.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "mid", list[1].Name)
	assert.Equal(t, "zeta", list[2].Name)
}

func TestTimestampRepo_Update(t *testing.T) {
	repo := newTestRepo(t)
	ts := &models.Timestamp{Name: "launch", Datetime: "2024-06-01"}
	require.NoError(t, repo.Create(ts))
	created := ts.UpdatedAt

	ts.Datetime = "2024-07-01"
	ts.Format = models.FormatDatetime
	require.NoError(t, repo.Update(ts))
	assert.True(t, ts.UpdatedAt.After(created))

	got, err := repo.GetByName("launch")
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", got.Datetime)
	assert.Equal(t, models.FormatDatetime, got.Format)

	err = repo.Update(&models.Timestamp{Name: "missing", Datetime: "2024-01-01"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTimestampRepo_Upsert(t *testing.T) {
	repo := newTestRepo(t)

	created, err := repo.Upsert(&models.Timestamp{Name: "launch", Datetime: "2024-06-01"})
	require.NoError(t, err)
	assert.True(t, created)
	first, err := repo.GetByName("launch")
	require.NoError(t, err)

	again := &models.Timestamp{Name: "launch", Datetime: "2024-08-01", Style: models.StyleShort}
	created, err = repo.Upsert(again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	got, err := repo.GetByName("launch")
	require.NoError(t, err)
	assert.Equal(t, "2024-08-01", got.Datetime)
	assert.Equal(t, models.StyleShort, got.Style)
	assert.Equal(t, first.ID, got.ID)
}

func TestTimestampRepo_Delete(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Create(&models.Timestamp{Name: "launch", Datetime: "2024-06-01"}))

	require.NoError(t, repo.Delete("launch"))
	got, err := repo.GetByName("launch")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, repo.Delete("launch"), ErrNotFound)
}

func TestMigrationStatus(t *testing.T) {
	d := NewTestDB(t)
	version, err := d.MigrationStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/tmp/board.db", ResolvePath("/tmp/board.db"))
	assert.NotContains(t, ResolvePath(""), "~")
	assert.Contains(t, ResolvePath(""), "reltime.db")
}

func TestOpen_File(t *testing.T) {
	path := t.TempDir() + "/nested/board.db"
	assert.False(t, Exists(path))

	d, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, d.Migrate())
	assert.Equal(t, path, d.Path())
	require.NoError(t, d.Close())

	assert.True(t, Exists(path))
	require.NoError(t, Delete(path))
	assert.False(t, Exists(path))
}
