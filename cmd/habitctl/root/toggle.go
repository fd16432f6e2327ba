package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newToggleCmd() *cobra.Command {
	var userID, date string

	cmd := &cobra.Command{
		Use:   "toggle <habit-id>",
		Short: "Flip a habit's completion for a day",
		Args:  cobra.ExactArgs(1),
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
			res, err := a.Service.Toggle(ctx, args[0], userID, day)
			if err != nil {
				return err
			}

			state := "unmarked"
			if res.Completed {
				state = "completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s on %s\n", args[0], state, day)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	cmd.Flags().StringVarP(&date, "date", "d", "", "day as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
