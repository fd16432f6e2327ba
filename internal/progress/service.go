package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"habitledger/internal/calendar"
	"habitledger/internal/model"
	"habitledger/pkg/lock"
	"habitledger/pkg/logger"
	"habitledger/pkg/metrics"
)

// ToggleResult is the completion state after a toggle.
type ToggleResult struct {
	Completed bool `json:"completed"`
}

// Service toggles completions and derives progress stats.
// All state lives in the Ledger; Service holds no mutable state of its own.
type Service struct {
	ledger    Ledger
	directory Directory
	locker    Locker
	cache     StatsCache
	clock     Clock
	location  *time.Location
	logger    *zap.Logger
}

func NewService(ledger Ledger, directory Directory, logger *zap.Logger) *Service {
	return &Service{
		ledger:    ledger,
		directory: directory,
		locker:    lock.NewKeyedMutex(),
		clock:     SystemClock,
		location:  time.UTC,
		logger:    logger,
	}
}

// WithLocker replaces the in-process lock, e.g. with a Redis lock shared by replicas.
func (s *Service) WithLocker(locker Locker) *Service {
	s.locker = locker
	return s
}

func (s *Service) WithCache(cache StatsCache) *Service {
	s.cache = cache
	return s
}

func (s *Service) WithClock(clock Clock) *Service {
	s.clock = clock
	return s
}

// WithLocation sets the zone in which instants are cut into calendar days.
func (s *Service) WithLocation(loc *time.Location) *Service {
	if loc != nil {
		s.location = loc
	}
	return s
}

// Today is the anchor day for requests that don't name one.
func (s *Service) Today() calendar.Day {
	return calendar.NormalizeToDay(s.clock.Now(), s.location)
}

// DayOf cuts an instant into a calendar day using the configured zone.
func (s *Service) DayOf(t time.Time) calendar.Day {
	return calendar.NormalizeToDay(t, s.location)
}

func lockKey(habitID, userID string, day calendar.Day) string {
	return fmt.Sprintf("completion:%s:%s:%s", userID, habitID, day)
}

// Toggle flips the completion fact for (habitID, userID, day).
// No check is made that habitID belongs to userID; callers own that boundary.
func (s *Service) Toggle(ctx context.Context, habitID, userID string, day calendar.Day) (ToggleResult, error) {
	const op = "progress.Toggle"

	habitID = strings.TrimSpace(habitID)
	userID = strings.TrimSpace(userID)
	if habitID == "" {
		return ToggleResult{}, validationError(op, "habit id is required")
	}
	if userID == "" {
		return ToggleResult{}, validationError(op, "user id is required")
	}
	if day.IsZero() {
		return ToggleResult{}, validationError(op, "day is required")
	}

	log := logger.WithTrace(ctx, s.logger).With(
		zap.String("habit_id", habitID),
		zap.String("user_id", userID),
		zap.Stringer("day", day),
	)

	unlock, err := s.locker.Lock(ctx, lockKey(habitID, userID, day))
	if err != nil {
		log.Error("Failed to acquire completion lock", zap.Error(err))
		metrics.IncrementToggle("error")
		return ToggleResult{}, dependencyError(op, err)
	}
	defer unlock()

	exists, err := s.ledger.Exists(ctx, habitID, userID, day)
	if err != nil {
		log.Error("Failed to check completion", zap.Error(err))
		metrics.IncrementToggle("error")
		return ToggleResult{}, dependencyError(op, err)
	}

	var result ToggleResult
	if exists {
		err = s.ledger.Delete(ctx, habitID, userID, day)
		result.Completed = false
	} else {
		err = s.ledger.Create(ctx, habitID, userID, day)
		result.Completed = true
	}

	if err != nil {
		kind := KindUnknown
		switch {
		case errors.Is(err, ErrDuplicate):
			kind = KindConflict
		case errors.Is(err, ErrNotFound):
			kind = KindNotFound
		default:
			log.Error("Failed to write completion", zap.Bool("completed", result.Completed), zap.Error(err))
			metrics.IncrementToggle("error")
			return ToggleResult{}, dependencyError(op, err)
		}

		// someone else toggled between our read and write; report what is stored now
		current, rerr := s.ledger.Exists(ctx, habitID, userID, day)
		if rerr != nil {
			log.Error("Failed to re-read completion after race", zap.Error(rerr))
			metrics.IncrementToggle("error")
			return ToggleResult{}, dependencyError(op, rerr)
		}
		log.Warn("Recovered concurrent toggle",
			zap.Stringer("kind", kind),
			zap.Bool("completed", current),
		)
		metrics.IncrementToggle("recovered_" + kind.String())
		result.Completed = current
	} else if result.Completed {
		metrics.IncrementToggle("completed")
	} else {
		metrics.IncrementToggle("uncompleted")
	}

	s.invalidate(ctx, log, userID)

	log.Info("Habit completion toggled", zap.Bool("completed", result.Completed))
	return result, nil
}

// InvalidateStats drops the user's cached stats. Callers that change which
// routines are active must call it; toggles do so on their own.
func (s *Service) InvalidateStats(ctx context.Context, userID string) {
	s.invalidate(ctx, logger.WithTrace(ctx, s.logger).With(zap.String("user_id", userID)), userID)
}

func (s *Service) invalidate(ctx context.Context, log *zap.Logger, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Warn("Failed to invalidate stats cache", zap.Error(err))
	}
}

// CompletionsOnDay lists the habit ids the user completed on day.
func (s *Service) CompletionsOnDay(ctx context.Context, userID string, day calendar.Day) ([]string, error) {
	const op = "progress.CompletionsOnDay"

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, validationError(op, "user id is required")
	}
	if day.IsZero() {
		return nil, validationError(op, "day is required")
	}

	completed, err := s.ledger.CompletedOn(ctx, userID, day)
	if err != nil {
		logger.WithTrace(ctx, s.logger).Error("Failed to query completions",
			zap.String("user_id", userID),
			zap.Stringer("day", day),
			zap.Error(err),
		)
		return nil, dependencyError(op, err)
	}

	seen := make(map[string]struct{}, len(completed))
	ids := make([]string, 0, len(completed))
	for _, id := range completed {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// Stats computes progress for the user over period, anchored at anchor.
// Both reads must succeed; no partial stats are returned.
func (s *Service) Stats(ctx context.Context, userID string, period Period, anchor calendar.Day) (*Stats, error) {
	const op = "progress.Stats"

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, validationError(op, "user id is required")
	}
	if anchor.IsZero() {
		return nil, validationError(op, "anchor day is required")
	}
	if !period.IsValid() {
		period = PeriodWeek
	}

	log := logger.WithTrace(ctx, s.logger).With(
		zap.String("user_id", userID),
		zap.String("period", string(period)),
		zap.Stringer("anchor", anchor),
	)
	start := time.Now()

	// pinned before the reads; a toggle in between orphans our Set
	var (
		version   int64
		cacheable bool
	)
	if s.cache != nil {
		v, err := s.cache.Version(ctx, userID)
		if err != nil {
			log.Warn("Stats cache version read failed", zap.Error(err))
			metrics.IncrementStatsCache("error")
		} else {
			version, cacheable = v, true
			cached, ok, err := s.cache.Get(ctx, userID, version, period, anchor)
			switch {
			case err != nil:
				log.Warn("Stats cache read failed", zap.Error(err))
				metrics.IncrementStatsCache("error")
			case ok:
				metrics.IncrementStatsCache("hit")
				return cached, nil
			default:
				metrics.IncrementStatsCache("miss")
			}
		}
	}

	var (
		habits      []model.Habit
		completions []model.HabitCompletion
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		habits, err = s.directory.ActiveHabitsFor(gctx, userID)
		if err != nil {
			return fmt.Errorf("list active habits: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		completions, err = s.ledger.QueryRange(gctx, userID, nil, period.WindowStart(anchor))
		if err != nil {
			return fmt.Errorf("query completions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("Failed to load progress data", zap.Error(err))
		return nil, dependencyError(op, err)
	}

	stats := Aggregate(anchor, period, habits, completions)
	metrics.RecordStatsDuration(string(period), time.Since(start))

	log.Debug("Computed progress stats",
		zap.Int("active_habits", len(habits)),
		zap.Int("completed", stats.CompletedThisPeriod),
		zap.Int("current_streak", stats.CurrentStreak),
	)

	if cacheable {
		if err := s.cache.Set(ctx, userID, version, period, anchor, stats); err != nil {
			log.Warn("Stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}
