package types

import (
	"testing"
	"time"

	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Month
		wantErr bool
	}{
		{name: "valid", input: "2024-05", want: Month{Year: 2024, Month: time.May}},
		{name: "surrounding_space", input: " 2024-12 ", want: Month{Year: 2024, Month: time.December}},
		{name: "month_out_of_range", input: "2024-13", wantErr: true},
		{name: "single_digit_month", input: "2024-5", wantErr: true},
		{name: "full_date", input: "2024-05-01", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestMonthBounds(t *testing.T) {
	feb := Month{Year: 2024, Month: time.February}

	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), feb.Start())
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), feb.End())
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), feb.LastDay())
	assert.Equal(t, "February 2024", feb.Label())

	assert.True(t, feb.Contains(time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC)))
	assert.False(t, feb.Contains(feb.End()))

	// instants are evaluated in UTC regardless of their zone
	ist := time.FixedZone("IST", 5*3600+1800)
	assert.True(t, feb.Contains(time.Date(2024, time.March, 1, 2, 0, 0, 0, ist)))
	assert.False(t, feb.Contains(time.Date(2024, time.March, 1, 6, 0, 0, 0, ist)))
}

func TestTrailingMonths(t *testing.T) {
	now := time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC)

	months := TrailingMonths(now, 3)
	require.Len(t, months, 3)
	assert.Equal(t, "2024-02", months[0].String())
	assert.Equal(t, "2024-01", months[1].String())
	assert.Equal(t, "2023-12", months[2].String())

	assert.Len(t, TrailingMonths(now, 12), 12)
	assert.Equal(t, "2023-03", TrailingMonths(now, 12)[11].String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("  ")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("31/05/2024")
	assert.True(t, ierr.IsValidation(err))
}
