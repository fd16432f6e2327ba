package root

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newOutboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and replay outbox events",
	}
	cmd.AddCommand(newOutboxFailedCmd(), newOutboxReplayCmd())
	return cmd
}

func newOutboxFailedCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "failed",
		Short: "List events that exhausted their retries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			events, err := a.Outbox.GetFailedEvents(ctx, limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no failed events")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tROUTING KEY\tAGGREGATE\tRETRIES\tCREATED")
			for _, e := range events {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", e.ID, e.RoutingKey, e.AggregateID, e.RetryCount, e.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "max events to list")
	return cmd
}

func newOutboxReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <event-id>...",
		Short: "Reset failed events to pending so the dispatcher sends them again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			for _, raw := range args {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid event id %q", raw)
				}
				if err := a.Outbox.ReplayEvent(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "event %d queued for replay\n", id)
			}
			return nil
		},
	}
}
