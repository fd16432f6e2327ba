package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"habitledger/internal/model"
)

func newRoutineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routine",
		Short: "Seed and (de)activate routines",
	}
	cmd.AddCommand(newRoutineAddCmd(), newRoutineActiveCmd("activate", true), newRoutineActiveCmd("deactivate", false))
	return cmd
}

type routineWriter interface {
	CreateRoutine(ctx context.Context, routine *model.Routine) error
	SetActive(ctx context.Context, routineID string, active bool) (string, error)
}

type statsInvalidator interface {
	InvalidateStats(ctx context.Context, userID string)
}

// Routine writes drop the owner's cached stats.
func createRoutine(ctx context.Context, w routineWriter, inv statsInvalidator, r *model.Routine) error {
	if err := w.CreateRoutine(ctx, r); err != nil {
		return err
	}
	inv.InvalidateStats(ctx, r.UserID)
	return nil
}

func setRoutineActive(ctx context.Context, w routineWriter, inv statsInvalidator, routineID string, active bool) error {
	userID, err := w.SetActive(ctx, routineID, active)
	if err != nil {
		return err
	}
	inv.InvalidateStats(ctx, userID)
	return nil
}

// parseHabit reads "Name" or "emoji:Name".
func parseHabit(raw string, pos int) model.Habit {
	h := model.Habit{Name: strings.TrimSpace(raw), Position: pos}
	if emoji, name, ok := strings.Cut(raw, ":"); ok {
		h.Emoji = strings.TrimSpace(emoji)
		h.Name = strings.TrimSpace(name)
	}
	return h
}

func newRoutineAddCmd() *cobra.Command {
	var (
		userID, name string
		habits       []string
		inactive     bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a routine with its habits",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(habits) == 0 {
				return fmt.Errorf("at least one --habit is required")
			}
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			r := &model.Routine{UserID: userID, Name: name, IsActive: !inactive}
			for i, raw := range habits {
				r.Habits = append(r.Habits, parseHabit(raw, i))
			}
			if err := createRoutine(ctx, a.Routines, a.Service, r); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "routine %s (%s)\n", r.ID, r.Name)
			for _, h := range r.Habits {
				fmt.Fprintf(out, "- %s %s %s\n", h.ID, h.Emoji, h.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "owner user id")
	cmd.Flags().StringVarP(&name, "name", "n", "Routine", "routine name")
	cmd.Flags().StringArrayVar(&habits, "habit", nil, `habit as "Name" or "emoji:Name" (repeatable)`)
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the routine inactive")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newRoutineActiveCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <routine-id>",
		Short: fmt.Sprintf("Mark a routine %s", map[bool]string{true: "active", false: "inactive"}[active]),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := setRoutineActive(ctx, a.Routines, a.Service, args[0], active); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "routine %s %sd\n", args[0], use)
			return nil
		},
	}
}
