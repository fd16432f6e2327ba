package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitledger/internal/calendar"
	"habitledger/internal/model"
	"habitledger/internal/progress"
)

func TestLedgerUniqueness(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	day := calendar.NewDay(2024, 5, 1)

	require.NoError(t, l.Create(ctx, "h1", "u1", day))
	err := l.Create(ctx, "h1", "u1", day)
	assert.ErrorIs(t, err, progress.ErrDuplicate)
	assert.Equal(t, 1, l.Len())

	ok, err := l.Exists(ctx, "h1", "u1", day)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Delete(ctx, "h1", "u1", day))
	assert.ErrorIs(t, l.Delete(ctx, "h1", "u1", day), progress.ErrNotFound)
	assert.Equal(t, 0, l.Len())
}

func TestLedgerQueryRange(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	d := calendar.NewDay(2024, 5, 10)

	require.NoError(t, l.Create(ctx, "h1", "u1", d))
	require.NoError(t, l.Create(ctx, "h2", "u1", d.AddDays(-1)))
	require.NoError(t, l.Create(ctx, "h1", "u1", d.AddDays(-5)))
	require.NoError(t, l.Create(ctx, "h1", "u2", d))

	got, err := l.QueryRange(ctx, "u1", nil, d.AddDays(-2))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, d, got[0].Day)
	assert.Equal(t, d.AddDays(-1), got[1].Day)

	got, err = l.QueryRange(ctx, "u1", []string{"h1"}, d.AddDays(-30))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = l.QueryRange(ctx, "u1", []string{}, d.AddDays(-30))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLedgerCompletedOn(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	d := calendar.NewDay(2024, 5, 10)

	require.NoError(t, l.Create(ctx, "h2", "u1", d))
	require.NoError(t, l.Create(ctx, "h1", "u1", d))
	require.NoError(t, l.Create(ctx, "h3", "u1", d.AddDays(1)))
	require.NoError(t, l.Create(ctx, "h4", "u2", d))

	ids, err := l.CompletedOn(ctx, "u1", d)
	require.NoError(t, err)
	assert.Equal(t, []string{"h1", "h2"}, ids)

	ids, err = l.CompletedOn(ctx, "u1", d.AddDays(-1))
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestDirectoryOnlyActiveRoutines(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory()
	now := time.Now()

	dir.PutRoutine(model.Routine{
		ID: "r1", UserID: "u1", IsActive: true, CreatedAt: now,
		Habits: []model.Habit{
			{ID: "h2", Name: "Read", Position: 2},
			{ID: "h1", Name: "Run", Position: 1},
		},
	})
	dir.PutRoutine(model.Routine{
		ID: "r2", UserID: "u1", IsActive: false, CreatedAt: now,
		Habits: []model.Habit{{ID: "h3", Name: "Meditate"}},
	})
	dir.PutRoutine(model.Routine{
		ID: "r3", UserID: "u2", IsActive: true, CreatedAt: now,
		Habits: []model.Habit{{ID: "h4", Name: "Swim"}},
	})

	habits, err := dir.ActiveHabitsFor(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, habits, 2)
	assert.Equal(t, "h1", habits[0].ID)
	assert.Equal(t, "r1", habits[0].RoutineID)

	dir.SetActive("r2", true)
	habits, err = dir.ActiveHabitsFor(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, habits, 3)

	habits, err = dir.ActiveHabitsFor(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, habits)
	assert.Empty(t, habits)
}
