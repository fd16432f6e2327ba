package repository

import (
	"context"
	"errors"

	"habitledger/internal/calendar"
	"habitledger/internal/model"
	"habitledger/internal/progress"
	"habitledger/pkg/circuitbreaker"
)

// GuardedLedger fails fast through a circuit breaker when the database is
// unhealthy. Duplicate and not-found results are answers, not failures,
// and never trip the breaker.
type GuardedLedger struct {
	inner   progress.Ledger
	breaker *circuitbreaker.CircuitBreaker
}

func NewGuardedLedger(inner progress.Ledger, breaker *circuitbreaker.CircuitBreaker) *GuardedLedger {
	return &GuardedLedger{inner: inner, breaker: breaker}
}

// guard runs fn through the breaker; errors matching any of expected pass
// through without counting as failures.
func guard(cb *circuitbreaker.CircuitBreaker, fn func() error, expected ...error) error {
	var passthrough error
	err := cb.Execute(func() error {
		err := fn()
		for _, e := range expected {
			if errors.Is(err, e) {
				passthrough = err
				return nil
			}
		}
		return err
	})
	if passthrough != nil {
		return passthrough
	}
	return err
}

func (g *GuardedLedger) Exists(ctx context.Context, habitID, userID string, day calendar.Day) (bool, error) {
	var ok bool
	err := guard(g.breaker, func() error {
		var err error
		ok, err = g.inner.Exists(ctx, habitID, userID, day)
		return err
	})
	return ok, err
}

func (g *GuardedLedger) Create(ctx context.Context, habitID, userID string, day calendar.Day) error {
	return guard(g.breaker, func() error {
		return g.inner.Create(ctx, habitID, userID, day)
	}, progress.ErrDuplicate)
}

func (g *GuardedLedger) Delete(ctx context.Context, habitID, userID string, day calendar.Day) error {
	return guard(g.breaker, func() error {
		return g.inner.Delete(ctx, habitID, userID, day)
	}, progress.ErrNotFound)
}

func (g *GuardedLedger) QueryRange(ctx context.Context, userID string, habitIDs []string, from calendar.Day) ([]model.HabitCompletion, error) {
	var out []model.HabitCompletion
	err := guard(g.breaker, func() error {
		var err error
		out, err = g.inner.QueryRange(ctx, userID, habitIDs, from)
		return err
	})
	return out, err
}

func (g *GuardedLedger) CompletedOn(ctx context.Context, userID string, day calendar.Day) ([]string, error) {
	var out []string
	err := guard(g.breaker, func() error {
		var err error
		out, err = g.inner.CompletedOn(ctx, userID, day)
		return err
	})
	return out, err
}

// GuardedDirectory shares the ledger's breaker; both read the same database.
type GuardedDirectory struct {
	inner   progress.Directory
	breaker *circuitbreaker.CircuitBreaker
}

func NewGuardedDirectory(inner progress.Directory, breaker *circuitbreaker.CircuitBreaker) *GuardedDirectory {
	return &GuardedDirectory{inner: inner, breaker: breaker}
}

func (g *GuardedDirectory) ActiveHabitsFor(ctx context.Context, userID string) ([]model.Habit, error) {
	var out []model.Habit
	err := guard(g.breaker, func() error {
		var err error
		out, err = g.inner.ActiveHabitsFor(ctx, userID)
		return err
	})
	return out, err
}
