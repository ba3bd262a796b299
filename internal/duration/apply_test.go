package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d, h, mi, s int) time.Time {
	return time.Date(y, m, d, h, mi, s, 0, time.UTC)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		base time.Time
		d    string
		want time.Time
	}{
		{"hours and minutes", date(2024, 1, 1, 0, 0, 0), "PT1H30M", date(2024, 1, 1, 1, 30, 0)},
		{"weeks count as seven days", date(2024, 1, 1, 0, 0, 0), "P2W1D", date(2024, 1, 16, 0, 0, 0)},
		{"year from leap day", date(2024, 2, 29, 12, 0, 0), "P1Y", date(2025, 3, 1, 12, 0, 0)},
		{"negative applies smallest first", date(2024, 3, 1, 0, 0, 0), "-P1DT1H", date(2024, 2, 28, 23, 0, 0)},
		{"negative year", date(2024, 6, 15, 8, 0, 0), "-P1Y", date(2023, 6, 15, 8, 0, 0)},
		{"zero", date(2024, 6, 15, 8, 0, 0), "PT0S", date(2024, 6, 15, 8, 0, 0)},
		{"fractional seconds", date(2024, 6, 15, 8, 0, 0), "PT0.5S", date(2024, 6, 15, 8, 0, 0).Add(500 * time.Millisecond)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.base, Parse(tt.d))
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestApply_MonthOverflowIsNotReversible(t *testing.T) {
	jan31 := date(2023, 1, 31, 0, 0, 0)

	forward := Apply(jan31, Parse("P1M"))
	assert.Equal(t, date(2023, 3, 3, 0, 0, 0), forward, "February 31 normalizes into March")

	back := Apply(forward, Parse("-P1M"))
	assert.Equal(t, date(2023, 2, 3, 0, 0, 0), back, "subtracting the month does not return to January 31")
}

func TestApply_ReturnsUTC(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	base := time.Date(2024, 1, 1, 1, 0, 0, 0, zone)

	got := Apply(base, Parse("PT1H"))
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, date(2024, 1, 1, 0, 0, 0), got)
}

func TestCompareAt(t *testing.T) {
	now := date(2024, 5, 10, 12, 0, 0)

	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"day is larger than hour", "P1D", "PT1H", -1},
		{"hour is smaller than day", "PT1H", "P1D", 1},
		{"equal magnitude", "P1D", "PT24H", 0},
		{"sign is ignored", "-P1D", "P1D", 0},
		{"within threshold", "-PT3M", "P30D", 1},
		{"past threshold", "-P45D", "P30D", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareAt(Parse(tt.a), Parse(tt.b), now))
		})
	}
}

func TestCompareLike(t *testing.T) {
	got, err := CompareLike("P1D", map[string]int{"hours": 1})
	assert.NoError(t, err)
	assert.Equal(t, -1, got)

	_, err = CompareLike(1, "P1D")
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = CompareLike("P1D", true)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}
