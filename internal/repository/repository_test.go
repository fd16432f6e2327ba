package repository

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"habitledger/internal/calendar"
	"habitledger/internal/model"
	"habitledger/internal/progress"
	"habitledger/pkg/outbox"
)

// openTestDB connects to HABITLEDGER_TEST_DATABASE_URL or skips.
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("HABITLEDGER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("HABITLEDGER_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, EnsureSchema(ctx, pool))
	return pool
}

func seedRoutine(t *testing.T, repo *RoutineRepository, userID string, active bool) *model.Routine {
	t.Helper()
	r := &model.Routine{
		UserID:   userID,
		Name:     "Morning",
		IsActive: active,
		Habits: []model.Habit{
			{Name: "Stretch", Emoji: "🧘", Position: 1},
			{Name: "Water", Emoji: "💧", Position: 0},
		},
	}
	require.NoError(t, repo.CreateRoutine(context.Background(), r))
	return r
}

func TestCompletionRepository(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	log := zap.NewNop()

	routines := NewRoutineRepository(pool, log)
	outboxRepo := outbox.NewRepository(pool)
	ledger := NewCompletionRepository(pool, outboxRepo, log)

	userID := uuid.NewString()
	routine := seedRoutine(t, routines, userID, true)
	habitID := routine.Habits[0].ID
	day := calendar.NewDay(2024, 2, 29)

	ok, err := ledger.Exists(ctx, habitID, userID, day)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ledger.Create(ctx, habitID, userID, day))
	assert.ErrorIs(t, ledger.Create(ctx, habitID, userID, day), progress.ErrDuplicate)

	ok, err = ledger.Exists(ctx, habitID, userID, day)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := ledger.QueryRange(ctx, userID, nil, day.AddDays(-1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, day, got[0].Day)
	assert.Equal(t, habitID, got[0].HabitID)

	got, err = ledger.QueryRange(ctx, userID, []string{"other"}, day.AddDays(-1))
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, ledger.Create(ctx, habitID, userID, day.AddDays(3)))
	ids, err := ledger.CompletedOn(ctx, userID, day)
	require.NoError(t, err)
	assert.Equal(t, []string{habitID}, ids)
	require.NoError(t, ledger.Delete(ctx, habitID, userID, day.AddDays(3)))

	require.NoError(t, ledger.Delete(ctx, habitID, userID, day))
	assert.ErrorIs(t, ledger.Delete(ctx, habitID, userID, day), progress.ErrNotFound)
}

func TestCompletionRepositoryConcurrentToggles(t *testing.T) {
	pool := openTestDB(t)
	log := zap.NewNop()

	userID := uuid.NewString()
	routine := seedRoutine(t, NewRoutineRepository(pool, log), userID, true)
	habitID := routine.Habits[0].ID
	day := calendar.NewDay(2024, 3, 1)

	// no app-level lock: the unique index plus race recovery must keep one fact
	svc := progress.NewService(NewCompletionRepository(pool, outbox.NewRepository(pool), log), NewRoutineRepository(pool, log), log).
		WithLocker(noLock{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Toggle(context.Background(), habitID, userID, day)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var n int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM habit_completions WHERE habit_id = $1 AND user_id = $2`, habitID, userID).Scan(&n))
	assert.LessOrEqual(t, n, 1)
}

type noLock struct{}

func (noLock) Lock(context.Context, string) (func(), error) { return func() {}, nil }

func TestRoutineRepositoryActiveHabits(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	repo := NewRoutineRepository(pool, zap.NewNop())

	userID := uuid.NewString()
	active := seedRoutine(t, repo, userID, true)
	inactive := seedRoutine(t, repo, userID, false)

	habits, err := repo.ActiveHabitsFor(ctx, userID)
	require.NoError(t, err)
	require.Len(t, habits, 2)
	assert.Equal(t, "Water", habits[0].Name)
	assert.Equal(t, active.ID, habits[0].RoutineID)

	owner, err := repo.SetActive(ctx, inactive.ID, true)
	require.NoError(t, err)
	assert.Equal(t, userID, owner)
	habits, err = repo.ActiveHabitsFor(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, habits, 4)

	_, err = repo.SetActive(ctx, uuid.NewString(), false)
	assert.Error(t, err)
}

func TestToggleWritesOutboxEvent(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	log := zap.NewNop()

	userID := uuid.NewString()
	routine := seedRoutine(t, NewRoutineRepository(pool, log), userID, true)
	ledger := NewCompletionRepository(pool, outbox.NewRepository(pool), log)
	day := calendar.NewDay(2024, 4, 2)

	require.NoError(t, ledger.Create(ctx, routine.Habits[0].ID, userID, day))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM outbox_events
		WHERE aggregate_type = $1 AND payload->>'user_id' = $2 AND (payload->>'completed')::boolean
	`, outbox.AggregateCompletion, userID).Scan(&count))
	assert.Equal(t, 1, count)
}
