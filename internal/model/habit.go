package model

import "time"

type Habit struct {
	ID        string    `json:"id"`
	RoutineID string    `json:"routine_id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	Category  string    `json:"category"`
	Time      *string   `json:"time,omitempty"` // scheduled time of day, free form ("07:30")
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
