package root

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"habitledger/internal/progress"
)

func newStatsCmd() *cobra.Command {
	var (
		userID, period, date string
		asJSON               bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print progress stats for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			anchor, err := dayFlag(a, date)
			if err != nil {
				return err
			}
			p := progress.ParsePeriod(period)
			stats, err := a.Service.Stats(ctx, userID, p, anchor)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			printStats(cmd.OutOrStdout(), p, stats)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	cmd.Flags().StringVarP(&period, "period", "p", "week", "week, month or year")
	cmd.Flags().StringVarP(&date, "date", "d", "", "anchor day as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON document")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printStats(w io.Writer, p progress.Period, s *progress.Stats) {
	fmt.Fprintf(w, "📊 Progress (%s)\n", p)
	fmt.Fprintf(w, "Current streak: %d days\n", s.CurrentStreak)
	fmt.Fprintf(w, "Success rate:   %d%%\n", s.SuccessRate)
	fmt.Fprintf(w, "Completed:      %d\n\n", s.CompletedThisPeriod)

	fmt.Fprintln(w, "Last 7 days")
	for _, d := range s.DailyCompletions {
		fmt.Fprintf(w, "  %s %-3s %s\n", d.Date, d.Date.Weekday().String()[:3], strings.Repeat("■", d.Count))
	}

	if len(s.HabitStats) == 0 {
		fmt.Fprintln(w, "\nNo active habits.")
		return
	}
	fmt.Fprintln(w, "\nHabits")
	for _, h := range s.HabitStats {
		fmt.Fprintf(w, "  %s %-24s streak %-3d %3d%%\n", h.Emoji, h.Name, h.Streak, h.Percentage)
	}
}
