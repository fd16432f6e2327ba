package model

import "time"

// Routine 用户的一组习惯；只有 IsActive 的 routine 参与统计
type Routine struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	IsActive   bool      `json:"is_active"`
	Categories []string  `json:"categories"`
	Habits     []Habit   `json:"habits"`
	CreatedAt  time.Time `json:"created_at"`
}
