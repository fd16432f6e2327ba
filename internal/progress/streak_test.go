package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"habitledger/internal/calendar"
)

var today = calendar.NewDay(2024, 6, 15)

func daysAgo(offsets ...int) DaySet {
	s := DaySet{}
	for _, o := range offsets {
		s.Add(today.AddDays(-o))
	}
	return s
}

func TestStreak(t *testing.T) {
	cases := []struct {
		name string
		set  DaySet
		want int
	}{
		{"today still open keeps prior streak", daysAgo(1, 2, 3), 3},
		{"only yesterday", daysAgo(1), 1},
		{"today and two prior", daysAgo(0, 1, 2), 3},
		{"gap at yesterday ends after today", daysAgo(0, 2), 1},
		{"today and yesterday empty", daysAgo(2, 3), 0},
		{"nothing", daysAgo(), 0},
		{"only today", daysAgo(0), 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Streak(c.set.Has, today))
		})
	}
}

func TestStreakCappedByLookback(t *testing.T) {
	set := DaySet{}
	for i := 0; i < 500; i++ {
		set.Add(today.AddDays(-i))
	}
	assert.Equal(t, MaxStreakLookback, Streak(set.Has, today))

	// with today open the scan still stops at the same bound
	delete(set, today)
	assert.Equal(t, MaxStreakLookback-1, Streak(set.Has, today))
}

func TestDaySetCounts(t *testing.T) {
	s := DaySet{}
	s.Add(today)
	s.Add(today)
	assert.Equal(t, 2, s.Count(today))
	assert.True(t, s.Has(today))
	assert.False(t, s.Has(today.AddDays(-1)))
}
