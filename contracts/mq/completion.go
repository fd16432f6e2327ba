package mq

// RoutingKeyCompletionToggled 打卡状态变化事件
const RoutingKeyCompletionToggled = "habit.completion.toggled"

type HabitCompletionToggledPayload struct {
	HabitID   string `json:"habit_id"`
	UserID    string `json:"user_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Completed bool   `json:"completed"`
	TraceID   string `json:"trace_id,omitempty"`
}
