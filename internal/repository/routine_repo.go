package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"habitledger/internal/model"
	"habitledger/pkg/logger"
)

// RoutineRepository is the read side of routine management plus the
// minimal writes needed to seed routines (CLI, tests).
type RoutineRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRoutineRepository(db *pgxpool.Pool, logger *zap.Logger) *RoutineRepository {
	return &RoutineRepository{db: db, logger: logger}
}

// ActiveHabitsFor flattens the habits of the user's active routines,
// newest routine first, habits in position order.
func (r *RoutineRepository) ActiveHabitsFor(ctx context.Context, userID string) ([]model.Habit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT h.id, h.routine_id, h.name, h.emoji, h.category, h.time, h.position, h.created_at
		FROM habits h
		JOIN routines r ON r.id = h.routine_id
		WHERE r.user_id = $1 AND r.is_active
		ORDER BY r.created_at DESC, r.id, h.position ASC
	`, userID)
	if err != nil {
		logger.WithTrace(ctx, r.logger).Error("Failed to query active habits",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("active habits: %w", err)
	}
	defer rows.Close()

	habits := make([]model.Habit, 0)
	for rows.Next() {
		var h model.Habit
		if err := rows.Scan(&h.ID, &h.RoutineID, &h.Name, &h.Emoji, &h.Category, &h.Time, &h.Position, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("active habits scan: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("active habits rows: %w", err)
	}
	return habits, nil
}

// CreateRoutine inserts a routine and its habits. Empty ids are generated.
func (r *RoutineRepository) CreateRoutine(ctx context.Context, routine *model.Routine) error {
	if routine.ID == "" {
		routine.ID = uuid.NewString()
	}
	if routine.Categories == nil {
		routine.Categories = []string{}
	}
	return WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO routines (id, user_id, name, is_active, categories)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at
		`, routine.ID, routine.UserID, routine.Name, routine.IsActive, routine.Categories).Scan(&routine.CreatedAt)
		if err != nil {
			return fmt.Errorf("routine insert: %w", err)
		}

		for i := range routine.Habits {
			h := &routine.Habits[i]
			if h.ID == "" {
				h.ID = uuid.NewString()
			}
			h.RoutineID = routine.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO habits (id, routine_id, name, emoji, category, time, position)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING created_at
			`, h.ID, h.RoutineID, h.Name, h.Emoji, h.Category, h.Time, h.Position).Scan(&h.CreatedAt)
			if err != nil {
				return fmt.Errorf("habit insert: %w", err)
			}
		}
		return nil
	})
}

// SetActive toggles whether a routine participates in stats and returns
// the owner, whose cached stats are now stale.
func (r *RoutineRepository) SetActive(ctx context.Context, routineID string, active bool) (string, error) {
	var userID string
	err := r.db.QueryRow(ctx, `
		UPDATE routines SET is_active = $2 WHERE id = $1
		RETURNING user_id
	`, routineID, active).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("routine %s not found", routineID)
	}
	if err != nil {
		return "", fmt.Errorf("routine set active: %w", err)
	}
	return userID, nil
}
