package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	contracts "habitledger/contracts/mq"
)

// AggregateCompletion 打卡事实的聚合类型
const AggregateCompletion = "habit_completion"

// CompletionAggregateID 同一 (user, habit, date) 的事件共用一个聚合 id
func CompletionAggregateID(p contracts.HabitCompletionToggledPayload) string {
	return fmt.Sprintf("%s:%s:%s", p.UserID, p.HabitID, p.Date)
}

func completionEvent(p contracts.HabitCompletionToggledPayload) (*Event, error) {
	if p.HabitID == "" || p.UserID == "" || p.Date == "" {
		return nil, fmt.Errorf("toggle event needs habit, user and date: %+v", p)
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode toggle event: %w", err)
	}
	return &Event{
		AggregateType: AggregateCompletion,
		AggregateID:   CompletionAggregateID(p),
		RoutingKey:    contracts.RoutingKeyCompletionToggled,
		Payload:       body,
		Status:        StatusPending,
	}, nil
}

// EnqueueCompletionToggled 在写入打卡的同一事务中登记 habit.completion.toggled 事件；
// 事务回滚时事件一起消失
func EnqueueCompletionToggled(ctx context.Context, tx pgx.Tx, repo *Repository, p contracts.HabitCompletionToggledPayload) error {
	event, err := completionEvent(p)
	if err != nil {
		return err
	}
	return repo.InsertEvent(ctx, tx, event)
}
