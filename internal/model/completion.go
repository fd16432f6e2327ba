package model

import (
	"time"

	"habitledger/internal/calendar"
)

// HabitCompletion is the ledger fact "habit was completed by user on day".
// At most one exists per (HabitID, UserID, Day).
type HabitCompletion struct {
	ID        string       `json:"id"`
	HabitID   string       `json:"habit_id"`
	UserID    string       `json:"user_id"`
	Day       calendar.Day `json:"date"`
	CreatedAt time.Time    `json:"created_at"`
}
