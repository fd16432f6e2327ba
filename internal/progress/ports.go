package progress

import (
	"context"
	"time"

	"habitledger/internal/calendar"
	"habitledger/internal/model"
)

// Ledger stores one completion fact per (habit, user, day).
// Create must fail with an error wrapping ErrDuplicate when the fact exists;
// Delete must fail with an error wrapping ErrNotFound when it does not.
type Ledger interface {
	Exists(ctx context.Context, habitID, userID string, day calendar.Day) (bool, error)
	Create(ctx context.Context, habitID, userID string, day calendar.Day) error
	Delete(ctx context.Context, habitID, userID string, day calendar.Day) error
	// QueryRange returns the user's completions on or after from.
	// A nil habitIDs means every habit of the user.
	QueryRange(ctx context.Context, userID string, habitIDs []string, from calendar.Day) ([]model.HabitCompletion, error)
	// CompletedOn returns the ids of the habits the user completed on day.
	CompletedOn(ctx context.Context, userID string, day calendar.Day) ([]string, error)
}

// Directory is the read-only view of the routine-management collaborator.
type Directory interface {
	// ActiveHabitsFor flattens the habits of every active routine of the user.
	ActiveHabitsFor(ctx context.Context, userID string) ([]model.Habit, error)
}

// Locker provides mutual exclusion per key across concurrent toggles.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// StatsCache stores computed stats. Failures are never fatal to callers.
// Entries live under a per-user version: read Version before loading data
// and pass the same value to Set, so a concurrent Invalidate orphans the
// write instead of letting it land under the new version.
type StatsCache interface {
	Version(ctx context.Context, userID string) (int64, error)
	Get(ctx context.Context, userID string, version int64, period Period, anchor calendar.Day) (*Stats, bool, error)
	Set(ctx context.Context, userID string, version int64, period Period, anchor calendar.Day, stats *Stats) error
	Invalidate(ctx context.Context, userID string) error
}

// Clock supplies "now"; the engine never reads the system clock directly.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads time.Now.
var SystemClock Clock = ClockFunc(time.Now)
