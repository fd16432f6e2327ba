package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"habitledger/internal/calendar"
	"habitledger/internal/model"
	"habitledger/internal/progress"
)

type completionKey struct {
	habitID string
	userID  string
	day     calendar.Day
}

// Ledger keeps completions in memory. The map key enforces the
// one-fact-per-(habit, user, day) constraint the same way a unique index would.
type Ledger struct {
	mu          sync.RWMutex
	completions map[completionKey]model.HabitCompletion
	now         func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{
		completions: make(map[completionKey]model.HabitCompletion),
		now:         time.Now,
	}
}

func (l *Ledger) Exists(_ context.Context, habitID, userID string, day calendar.Day) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.completions[completionKey{habitID, userID, day}]
	return ok, nil
}

func (l *Ledger) Create(_ context.Context, habitID, userID string, day calendar.Day) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := completionKey{habitID, userID, day}
	if _, ok := l.completions[key]; ok {
		return fmt.Errorf("create %s/%s/%s: %w", userID, habitID, day, progress.ErrDuplicate)
	}
	l.completions[key] = model.HabitCompletion{
		ID:        uuid.NewString(),
		HabitID:   habitID,
		UserID:    userID,
		Day:       day,
		CreatedAt: l.now(),
	}
	return nil
}

func (l *Ledger) Delete(_ context.Context, habitID, userID string, day calendar.Day) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := completionKey{habitID, userID, day}
	if _, ok := l.completions[key]; !ok {
		return fmt.Errorf("delete %s/%s/%s: %w", userID, habitID, day, progress.ErrNotFound)
	}
	delete(l.completions, key)
	return nil
}

// QueryRange returns completions newest first, like the SQL ledger.
func (l *Ledger) QueryRange(_ context.Context, userID string, habitIDs []string, from calendar.Day) ([]model.HabitCompletion, error) {
	var filter map[string]struct{}
	if habitIDs != nil {
		filter = make(map[string]struct{}, len(habitIDs))
		for _, id := range habitIDs {
			filter[id] = struct{}{}
		}
	}

	l.mu.RLock()
	out := make([]model.HabitCompletion, 0)
	for k, c := range l.completions {
		if k.userID != userID || k.day.Before(from) {
			continue
		}
		if filter != nil {
			if _, ok := filter[k.habitID]; !ok {
				continue
			}
		}
		out = append(out, c)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day.After(out[j].Day)
		}
		return out[i].HabitID < out[j].HabitID
	})
	return out, nil
}

// CompletedOn returns habit ids in id order.
func (l *Ledger) CompletedOn(_ context.Context, userID string, day calendar.Day) ([]string, error) {
	l.mu.RLock()
	ids := make([]string, 0)
	for k := range l.completions {
		if k.userID == userID && k.day == day {
			ids = append(ids, k.habitID)
		}
	}
	l.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}

// Len is the total number of stored completions.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.completions)
}
