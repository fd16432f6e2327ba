package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	contracts "habitledger/contracts/mq"
	"habitledger/internal/calendar"
	"habitledger/internal/model"
	"habitledger/internal/progress"
	"habitledger/pkg/logger"
	"habitledger/pkg/outbox"
	"habitledger/pkg/trace"
	"habitledger/pkg/util"
)

// CompletionRepository is the PostgreSQL ledger. Every create/delete also
// enqueues a habit.completion.toggled outbox event in the same transaction.
type CompletionRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewCompletionRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *CompletionRepository {
	return &CompletionRepository{db: db, outbox: outboxRepo, logger: logger}
}

func (r *CompletionRepository) Exists(ctx context.Context, habitID, userID string, day calendar.Day) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM habit_completions
			WHERE habit_id = $1 AND user_id = $2 AND date = $3::date
		)
	`, habitID, userID, day.String()).Scan(&exists)
	if err != nil {
		return false, r.fail(ctx, "exists", err)
	}
	return exists, nil
}

func (r *CompletionRepository) Create(ctx context.Context, habitID, userID string, day calendar.Day) error {
	err := WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO habit_completions (id, habit_id, user_id, date)
			VALUES ($1, $2, $3, $4::date)
		`, uuid.NewString(), habitID, userID, day.String())
		if err != nil {
			if util.IsUniqueViolation(err) {
				return fmt.Errorf("completion insert: %w", progress.ErrDuplicate)
			}
			return fmt.Errorf("completion insert: %w", err)
		}
		return r.enqueue(ctx, tx, habitID, userID, day, true)
	})
	if err != nil {
		return r.fail(ctx, "create", err)
	}
	return nil
}

func (r *CompletionRepository) Delete(ctx context.Context, habitID, userID string, day calendar.Day) error {
	err := WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM habit_completions
			WHERE habit_id = $1 AND user_id = $2 AND date = $3::date
		`, habitID, userID, day.String())
		if err != nil {
			return fmt.Errorf("completion delete: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("completion delete: %w", progress.ErrNotFound)
		}
		return r.enqueue(ctx, tx, habitID, userID, day, false)
	})
	if err != nil {
		return r.fail(ctx, "delete", err)
	}
	return nil
}

// QueryRange returns completions newest first.
func (r *CompletionRepository) QueryRange(ctx context.Context, userID string, habitIDs []string, from calendar.Day) ([]model.HabitCompletion, error) {
	query := `
		SELECT id, habit_id, user_id, date, created_at
		FROM habit_completions
		WHERE user_id = $1 AND date >= $2::date
	`
	args := []any{userID, from.String()}
	if habitIDs != nil {
		query += ` AND habit_id = ANY($3)`
		args = append(args, habitIDs)
	}
	query += ` ORDER BY date DESC, habit_id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.fail(ctx, "query_range", err)
	}
	defer rows.Close()

	out := make([]model.HabitCompletion, 0)
	for rows.Next() {
		var (
			c    model.HabitCompletion
			date time.Time
		)
		if err := rows.Scan(&c.ID, &c.HabitID, &c.UserID, &date, &c.CreatedAt); err != nil {
			return nil, r.fail(ctx, "query_range", fmt.Errorf("completion scan: %w", err))
		}
		c.Day = calendar.FromDate(date)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, "query_range", err)
	}
	return out, nil
}

// CompletedOn lists the habits completed on a single day, oldest completion first.
func (r *CompletionRepository) CompletedOn(ctx context.Context, userID string, day calendar.Day) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT habit_id
		FROM habit_completions
		WHERE user_id = $1 AND date = $2::date
		ORDER BY created_at, habit_id
	`, userID, day.String())
	if err != nil {
		return nil, r.fail(ctx, "completed_on", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, r.fail(ctx, "completed_on", fmt.Errorf("completion scan: %w", err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, "completed_on", err)
	}
	return ids, nil
}

func (r *CompletionRepository) enqueue(ctx context.Context, tx pgx.Tx, habitID, userID string, day calendar.Day, completed bool) error {
	payload := contracts.HabitCompletionToggledPayload{
		HabitID:   habitID,
		UserID:    userID,
		Date:      day.String(),
		Completed: completed,
		TraceID:   trace.FromContext(ctx),
	}
	if err := outbox.EnqueueCompletionToggled(ctx, tx, r.outbox, payload); err != nil {
		return fmt.Errorf("enqueue toggle event: %w", err)
	}
	return nil
}

// fail logs unexpected database errors. Duplicate and not-found are part of
// the toggle protocol and only logged at debug.
func (r *CompletionRepository) fail(ctx context.Context, op string, err error) error {
	log := logger.WithTrace(ctx, r.logger).With(zap.String("op", op))
	if errors.Is(err, progress.ErrDuplicate) || errors.Is(err, progress.ErrNotFound) {
		log.Debug("Completion ledger conflict", zap.Error(err))
		return err
	}
	retryable, errType := util.ClassifyError(err)
	log.Error("Completion ledger query failed",
		zap.String("error_type", errType),
		zap.Bool("retryable", retryable),
		zap.Error(err),
	)
	return err
}
