package memstore

import (
	"context"
	"sort"
	"sync"

	"habitledger/internal/model"
)

// Directory is an in-memory routine/habit directory.
type Directory struct {
	mu       sync.RWMutex
	routines map[string]model.Routine
}

func NewDirectory() *Directory {
	return &Directory{routines: make(map[string]model.Routine)}
}

// PutRoutine inserts or replaces a routine with its habits.
func (d *Directory) PutRoutine(r model.Routine) {
	d.mu.Lock()
	defer d.mu.Unlock()
	habits := make([]model.Habit, len(r.Habits))
	copy(habits, r.Habits)
	for i := range habits {
		habits[i].RoutineID = r.ID
	}
	r.Habits = habits
	d.routines[r.ID] = r
}

// SetActive flips a routine's active flag; unknown ids are ignored.
func (d *Directory) SetActive(routineID string, active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.routines[routineID]; ok {
		r.IsActive = active
		d.routines[routineID] = r
	}
}

func (d *Directory) ActiveHabitsFor(_ context.Context, userID string) ([]model.Habit, error) {
	d.mu.RLock()
	routines := make([]model.Routine, 0)
	for _, r := range d.routines {
		if r.UserID == userID && r.IsActive {
			routines = append(routines, r)
		}
	}
	d.mu.RUnlock()

	sort.Slice(routines, func(i, j int) bool {
		if !routines[i].CreatedAt.Equal(routines[j].CreatedAt) {
			return routines[i].CreatedAt.After(routines[j].CreatedAt)
		}
		return routines[i].ID < routines[j].ID
	})

	habits := make([]model.Habit, 0)
	for _, r := range routines {
		hs := make([]model.Habit, len(r.Habits))
		copy(hs, r.Habits)
		sort.SliceStable(hs, func(i, j int) bool { return hs[i].Position < hs[j].Position })
		habits = append(habits, hs...)
	}
	return habits, nil
}
