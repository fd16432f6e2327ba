package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeToDaySameCalendarDay(t *testing.T) {
	morning := time.Date(2024, 3, 10, 0, 5, 0, 0, time.UTC)
	night := time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)

	assert.Equal(t, NormalizeToDay(morning, time.UTC), NormalizeToDay(night, time.UTC))
	assert.Equal(t, "2024-03-10", NormalizeToDay(night, nil).String())
}

func TestNormalizeToDayUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	instant := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, NewDay(2024, 3, 10), NormalizeToDay(instant, time.UTC))
	assert.Equal(t, NewDay(2024, 3, 11), NormalizeToDay(instant, tokyo))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.February, d.Month())
	assert.Equal(t, 29, d.DayOfMonth())

	_, err = ParseDay("2024-02-30")
	assert.Error(t, err)
	_, err = ParseDay("yesterday")
	assert.Error(t, err)
}

func TestDayArithmetic(t *testing.T) {
	d := NewDay(2024, 3, 1)

	assert.Equal(t, NewDay(2024, 2, 29), d.AddDays(-1))
	assert.Equal(t, NewDay(2024, 2, 23), d.AddDays(-7))
	assert.Equal(t, 7, d.DaysSince(d.AddDays(-7)))
	assert.Equal(t, -1, d.AddDays(-1).DaysSince(d))
	assert.True(t, d.AddDays(-1).Before(d))
	assert.True(t, d.After(d.AddDays(-1)))

	// Month subtraction overflows like time.AddDate: March 31 - 1 month = March 2 (Feb 31).
	assert.Equal(t, NewDay(2024, 3, 2), NewDay(2024, 3, 31).AddDate(0, -1, 0))
}

func TestDayAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	before := NormalizeToDay(time.Date(2024, 3, 9, 12, 0, 0, 0, ny), ny)
	after := NormalizeToDay(time.Date(2024, 3, 10, 12, 0, 0, 0, ny), ny)

	assert.Equal(t, 1, after.DaysSince(before))
}

func TestDayText(t *testing.T) {
	var d Day
	require.NoError(t, d.UnmarshalText([]byte("2023-12-31")))
	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", string(b))

	var zero Day
	assert.True(t, zero.IsZero())
	assert.Equal(t, "", zero.String())
}
