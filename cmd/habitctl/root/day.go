package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newDayCmd() *cobra.Command {
	var userID, date string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "List the habits a user completed on a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			day, err := dayFlag(a, date)
			if err != nil {
				return err
			}
			ids, err := a.Service.CompletionsOnDay(ctx, userID, day)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintf(out, "nothing completed on %s\n", day)
				return nil
			}
			fmt.Fprintf(out, "%d completed on %s\n", len(ids), day)
			for _, id := range ids {
				fmt.Fprintf(out, "- %s\n", id)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	cmd.Flags().StringVarP(&date, "date", "d", "", "day as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
