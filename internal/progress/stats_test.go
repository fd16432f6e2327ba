package progress

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitledger/internal/calendar"
	"habitledger/internal/model"
)

func habits(ids ...string) []model.Habit {
	out := make([]model.Habit, 0, len(ids))
	for i, id := range ids {
		out = append(out, model.Habit{ID: id, Name: "habit " + id, Emoji: "✅", Position: i})
	}
	return out
}

func done(habitID string, day calendar.Day) model.HabitCompletion {
	return model.HabitCompletion{HabitID: habitID, UserID: "u1", Day: day}
}

func TestAggregateEmptyState(t *testing.T) {
	stats := Aggregate(today, PeriodMonth, nil, nil)

	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 0, stats.SuccessRate)
	assert.Equal(t, 0, stats.CompletedThisPeriod)
	require.Len(t, stats.DailyCompletions, DailyWindow)
	for _, d := range stats.DailyCompletions {
		assert.Equal(t, 0, d.Count)
	}
	assert.NotNil(t, stats.HabitStats)
	assert.Empty(t, stats.HabitStats)

	b, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"habitStats":[]`)
}

func TestAggregateSuccessRateIsClamped(t *testing.T) {
	var completions []model.HabitCompletion
	for i := 0; i < 10; i++ {
		completions = append(completions, done("a", today.AddDays(-(i%7))), done("b", today.AddDays(-(i%7))))
	}
	require.Len(t, completions, 20)

	stats := Aggregate(today, PeriodWeek, habits("a", "b"), completions)

	assert.Equal(t, 20, stats.CompletedThisPeriod)
	assert.Equal(t, 100, stats.SuccessRate)
	for _, hs := range stats.HabitStats {
		assert.Equal(t, 100, hs.Percentage)
	}
}

func TestAggregateDailySeriesIsAlwaysSevenDays(t *testing.T) {
	completions := []model.HabitCompletion{
		done("a", today),
		done("b", today),
		done("a", today.AddDays(-6)),
		done("a", today.AddDays(-30)), // inside the year window, outside the series
	}

	stats := Aggregate(today, PeriodYear, habits("a", "b"), completions)

	require.Len(t, stats.DailyCompletions, DailyWindow)
	assert.Equal(t, today.AddDays(-6), stats.DailyCompletions[0].Date)
	assert.Equal(t, 1, stats.DailyCompletions[0].Count)
	assert.Equal(t, today, stats.DailyCompletions[6].Date)
	assert.Equal(t, 2, stats.DailyCompletions[6].Count)
	assert.Equal(t, 4, stats.CompletedThisPeriod)
}

func TestAggregatePerHabit(t *testing.T) {
	var completions []model.HabitCompletion
	for i := 1; i <= 3; i++ {
		completions = append(completions, done("a", today.AddDays(-i)))
	}
	completions = append(completions, done("b", today), done("b", today.AddDays(-2)))

	stats := Aggregate(today, PeriodWeek, habits("a", "b"), completions)

	require.Len(t, stats.HabitStats, 2)
	a, b := stats.HabitStats[0], stats.HabitStats[1]
	assert.Equal(t, "a", a.HabitID)
	assert.Equal(t, 3, a.Streak)
	assert.Equal(t, 43, a.Percentage) // round(300/7)
	assert.Equal(t, "b", b.HabitID)
	assert.Equal(t, 1, b.Streak)
	assert.Equal(t, 29, b.Percentage)

	// union of days: 0,-1,-2,-3
	assert.Equal(t, 4, stats.CurrentStreak)
	assert.Equal(t, 36, stats.SuccessRate) // round(500/14)
}

func TestAggregateIgnoresInactiveAndOutOfWindow(t *testing.T) {
	completions := []model.HabitCompletion{
		done("a", today),
		done("gone", today),
		done("a", today.AddDays(-8)),
	}

	stats := Aggregate(today, PeriodWeek, habits("a"), completions)

	assert.Equal(t, 1, stats.CompletedThisPeriod)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 1, stats.DailyCompletions[6].Count)
}

func TestAggregateUnknownPeriodIsWeek(t *testing.T) {
	completions := []model.HabitCompletion{done("a", today), done("a", today.AddDays(-7)), done("a", today.AddDays(-20))}

	assert.Equal(t,
		Aggregate(today, PeriodWeek, habits("a"), completions),
		Aggregate(today, Period("decade"), habits("a"), completions),
	)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, percent(5, 0))
	assert.Equal(t, 50, percent(1, 2))
	assert.Equal(t, 67, percent(2, 3))
	assert.Equal(t, 100, percent(9, 3))
}
