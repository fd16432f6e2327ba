package progress

import (
	"habitledger/internal/calendar"
)

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func (p Period) IsValid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return true
	default:
		return false
	}
}

// ParsePeriod never fails: anything other than the exact lowercase names,
// including "" and "Month", is a week.
func ParsePeriod(input string) Period {
	p := Period(input)
	if !p.IsValid() {
		return PeriodWeek
	}
	return p
}

// WindowStart is the first day included in the look-back window anchored at anchor.
func (p Period) WindowStart(anchor calendar.Day) calendar.Day {
	switch p {
	case PeriodMonth:
		return anchor.AddDate(0, -1, 0)
	case PeriodYear:
		return anchor.AddDate(-1, 0, 0)
	default:
		return anchor.AddDays(-7)
	}
}

// DaysIn is the number of days between the window start and the anchor.
func (p Period) DaysIn(anchor calendar.Day) int {
	n := anchor.DaysSince(p.WindowStart(anchor))
	if n < 0 {
		return 0
	}
	return n
}
