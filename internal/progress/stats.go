package progress

import (
	"math"

	"habitledger/internal/calendar"
	"habitledger/internal/model"
)

// DailyWindow is the width of the activity series, independent of the period.
const DailyWindow = 7

type DailyCount struct {
	Date  calendar.Day `json:"date"`
	Count int          `json:"count"`
}

type HabitStat struct {
	HabitID    string `json:"habitId"`
	Name       string `json:"name"`
	Emoji      string `json:"emoji"`
	Streak     int    `json:"streak"`
	Percentage int    `json:"percentage"`
}

// Stats is the progress summary for one user over one period.
type Stats struct {
	CurrentStreak       int          `json:"currentStreak"`
	SuccessRate         int          `json:"successRate"`
	CompletedThisPeriod int          `json:"completedThisPeriod"`
	DailyCompletions    []DailyCount `json:"dailyCompletions"`
	HabitStats          []HabitStat  `json:"habitStats"`
}

// Aggregate computes Stats from the active habits and the user's completions.
// Completions outside the active set or before the window start are ignored,
// so callers may pass an unfiltered range query.
func Aggregate(anchor calendar.Day, period Period, habits []model.Habit, completions []model.HabitCompletion) *Stats {
	start := period.WindowStart(anchor)
	days := period.DaysIn(anchor)

	active := make(map[string]struct{}, len(habits))
	for _, h := range habits {
		active[h.ID] = struct{}{}
	}

	all := make(DaySet)
	perHabit := make(map[string]DaySet, len(habits))
	perHabitCount := make(map[string]int, len(habits))
	total := 0
	for _, c := range completions {
		if _, ok := active[c.HabitID]; !ok {
			continue
		}
		if c.Day.Before(start) {
			continue
		}
		total++
		all.Add(c.Day)
		if perHabit[c.HabitID] == nil {
			perHabit[c.HabitID] = make(DaySet)
		}
		perHabit[c.HabitID].Add(c.Day)
		perHabitCount[c.HabitID]++
	}

	stats := &Stats{
		CurrentStreak:       Streak(all.Has, anchor),
		SuccessRate:         percent(total, len(habits)*days),
		CompletedThisPeriod: total,
		DailyCompletions:    make([]DailyCount, 0, DailyWindow),
		HabitStats:          make([]HabitStat, 0, len(habits)),
	}

	for i := DailyWindow - 1; i >= 0; i-- {
		d := anchor.AddDays(-i)
		stats.DailyCompletions = append(stats.DailyCompletions, DailyCount{Date: d, Count: all.Count(d)})
	}

	for _, h := range habits {
		set := perHabit[h.ID]
		if set == nil {
			set = DaySet{}
		}
		stats.HabitStats = append(stats.HabitStats, HabitStat{
			HabitID:    h.ID,
			Name:       h.Name,
			Emoji:      h.Emoji,
			Streak:     Streak(set.Has, anchor),
			Percentage: percent(perHabitCount[h.ID], days),
		})
	}

	return stats
}

// percent is round(100*n/of) capped at 100, and 0 when of is 0.
func percent(n, of int) int {
	if of <= 0 {
		return 0
	}
	p := int(math.Round(float64(n) * 100 / float64(of)))
	if p > 100 {
		return 100
	}
	return p
}
