package commission_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multicota/commission-engine/commission"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// ADD MONTHS
// =============================================================================

func TestAddMonths_ClampsToEndOfMonth(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"leap february", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"two months keeps day 31", date(2024, time.January, 31), 2, date(2024, time.March, 31)},
		{"common february", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"thirty day month", date(2024, time.March, 31), 1, date(2024, time.April, 30)},
		{"mid month", date(2024, time.March, 15), 1, date(2024, time.April, 15)},
		{"year rollover", date(2024, time.December, 15), 1, date(2025, time.January, 15)},
		{"backwards", date(2024, time.March, 31), -1, date(2024, time.February, 29)},
		{"zero", date(2024, time.May, 31), 0, date(2024, time.May, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := commission.AddMonths(tt.from, tt.n)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestAddMonths_NeverOverflowsPastTargetMonth(t *testing.T) {
	// GIVEN: the last day of every month over several years
	// WHEN: adding 0..24 months
	// THEN: the result is always in exactly the target month
	for year := 2023; year <= 2025; year++ {
		for month := time.January; month <= time.December; month++ {
			last := date(year, month, commission.DaysIn(year, month))
			for n := 0; n <= 24; n++ {
				got := commission.AddMonths(last, n)
				target := date(year, month+time.Month(n), 1)
				require.Equal(t, target.Year(), got.Year(), "from %s +%d", last, n)
				require.Equal(t, target.Month(), got.Month(), "from %s +%d", last, n)
				require.LessOrEqual(t, got.Day(), last.Day())
			}
		}
	}
}

func TestAddMonths_PreservesTimeOfDay(t *testing.T) {
	from := time.Date(2024, time.January, 31, 13, 45, 10, 0, time.UTC)

	got := commission.AddMonths(from, 1)

	assert.Equal(t, time.Date(2024, time.February, 29, 13, 45, 10, 0, time.UTC), got)
}

func TestAddMonths_NormalizesToUTC(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	from := time.Date(2024, time.March, 15, 22, 0, 0, 0, saoPaulo) // 2024-03-16T01:00Z

	got := commission.AddMonths(from, 1)

	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 16, got.Day())
}

// =============================================================================
// DUE MONTH
// =============================================================================

func TestDueMonth_IsPrefixOfISOForm(t *testing.T) {
	for _, d := range []time.Time{
		date(2024, time.February, 29),
		date(2025, time.December, 31),
		time.Date(2024, time.April, 30, 23, 59, 59, 0, time.UTC),
	} {
		assert.Equal(t, d.Format(time.RFC3339)[:7], commission.DueMonth(d))
	}
}

// =============================================================================
// PARSING
// =============================================================================

func TestParseDate(t *testing.T) {
	d, err := commission.ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 15), d)

	d, err = commission.ParseDate("2024-03-15T10:00:00-03:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 15, 13, 0, 0, 0, time.UTC), d)

	_, err = commission.ParseDate("15/03/2024")
	assert.Error(t, err)
}

func TestParseMonth(t *testing.T) {
	m, err := commission.ParseMonth("2024-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-05", m)

	_, err = commission.ParseMonth("2024-13")
	assert.Error(t, err)
}
