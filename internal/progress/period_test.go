package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"habitledger/internal/calendar"
)

func TestParsePeriod(t *testing.T) {
	assert.Equal(t, PeriodWeek, ParsePeriod("week"))
	assert.Equal(t, PeriodMonth, ParsePeriod("month"))
	assert.Equal(t, PeriodYear, ParsePeriod("year"))
	assert.Equal(t, PeriodWeek, ParsePeriod("decade"))
	assert.Equal(t, PeriodWeek, ParsePeriod(""))
	assert.Equal(t, PeriodWeek, ParsePeriod("Month"))
	assert.Equal(t, PeriodWeek, ParsePeriod(" year "))
}

func TestWindow(t *testing.T) {
	anchor := calendar.NewDay(2024, 3, 31)

	assert.Equal(t, calendar.NewDay(2024, 3, 24), PeriodWeek.WindowStart(anchor))
	assert.Equal(t, 7, PeriodWeek.DaysIn(anchor))

	// March 31 minus a month overflows to March 2 in a leap year
	assert.Equal(t, calendar.NewDay(2024, 3, 2), PeriodMonth.WindowStart(anchor))
	assert.Equal(t, 29, PeriodMonth.DaysIn(anchor))

	assert.Equal(t, calendar.NewDay(2023, 3, 31), PeriodYear.WindowStart(anchor))
	assert.Equal(t, 366, PeriodYear.DaysIn(anchor))

	assert.Equal(t, PeriodWeek.WindowStart(anchor), Period("decade").WindowStart(anchor))
}
