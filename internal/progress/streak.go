package progress

import "habitledger/internal/calendar"

// MaxStreakLookback bounds how far back a streak scan goes, so no streak exceeds it.
const MaxStreakLookback = 365

// Streak counts consecutive days with a completion ending at anchor.
// The anchor day itself may be empty (the day is still open) without
// breaking the streak; any other empty day ends the scan.
func Streak(hasCompletion func(calendar.Day) bool, anchor calendar.Day) int {
	streak := 0
	for i := 0; i < MaxStreakLookback; i++ {
		if hasCompletion(anchor.AddDays(-i)) {
			streak++
			continue
		}
		if i > 0 {
			break
		}
	}
	return streak
}

// DaySet counts completions per day.
type DaySet map[calendar.Day]int

func (s DaySet) Add(d calendar.Day) { s[d]++ }

// Has reports whether at least one completion fell on d.
func (s DaySet) Has(d calendar.Day) bool { return s[d] > 0 }

func (s DaySet) Count(d calendar.Day) int { return s[d] }
