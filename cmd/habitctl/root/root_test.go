package root

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitledger/internal/calendar"
	"habitledger/internal/model"
	"habitledger/internal/progress"
)

func TestParseHabit(t *testing.T) {
	h := parseHabit("📚: Read", 2)
	assert.Equal(t, "📚", h.Emoji)
	assert.Equal(t, "Read", h.Name)
	assert.Equal(t, 2, h.Position)

	h = parseHabit("Drink water", 0)
	assert.Equal(t, "", h.Emoji)
	assert.Equal(t, "Drink water", h.Name)
}

func TestPrintStats(t *testing.T) {
	anchor := calendar.NewDay(2024, 6, 15)
	stats := progress.Aggregate(anchor, progress.PeriodWeek, nil, nil)

	var buf bytes.Buffer
	printStats(&buf, progress.PeriodWeek, stats)

	out := buf.String()
	assert.Contains(t, out, "Progress (week)")
	assert.Contains(t, out, "2024-06-15 Sat")
	assert.Contains(t, out, "No active habits.")
}

type fakeRoutines struct {
	owners map[string]string
	active map[string]bool
}

func (f *fakeRoutines) CreateRoutine(_ context.Context, r *model.Routine) error {
	r.ID = "r-new"
	f.owners[r.ID] = r.UserID
	f.active[r.ID] = r.IsActive
	return nil
}

func (f *fakeRoutines) SetActive(_ context.Context, routineID string, active bool) (string, error) {
	owner, ok := f.owners[routineID]
	if !ok {
		return "", errors.New("routine not found")
	}
	f.active[routineID] = active
	return owner, nil
}

type recordingInvalidator struct{ users []string }

func (r *recordingInvalidator) InvalidateStats(_ context.Context, userID string) {
	r.users = append(r.users, userID)
}

func TestRoutineWritesInvalidateOwnerStats(t *testing.T) {
	ctx := context.Background()
	store := &fakeRoutines{owners: map[string]string{"r1": "u1"}, active: map[string]bool{"r1": true}}
	inv := &recordingInvalidator{}

	require.NoError(t, setRoutineActive(ctx, store, inv, "r1", false))
	assert.False(t, store.active["r1"])
	assert.Equal(t, []string{"u1"}, inv.users)

	require.NoError(t, createRoutine(ctx, store, inv, &model.Routine{UserID: "u2", IsActive: true}))
	assert.Equal(t, []string{"u1", "u2"}, inv.users)

	assert.Error(t, setRoutineActive(ctx, store, inv, "missing", true))
	assert.Len(t, inv.users, 2)
}
