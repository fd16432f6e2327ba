package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	cases := []struct {
		sql   string
		op    string
		table string
	}{
		{"SELECT 1 FROM habit_completions WHERE user_id = $1", "select", "habit_completions"},
		{"\n\tINSERT INTO habit_completions (id) VALUES ($1)", "insert", "habit_completions"},
		{"UPDATE outbox_events SET status = 'sent'", "update", "outbox_events"},
		{"DELETE FROM habit_completions WHERE id = $1", "delete", "habit_completions"},
		{"CREATE TABLE IF NOT EXISTS routines (id TEXT)", "create", "routines"},
		{"", "unknown", "unknown"},
	}
	for _, c := range cases {
		op, table := describe(c.sql)
		assert.Equal(t, c.op, op, c.sql)
		assert.Equal(t, c.table, table, c.sql)
	}
}
