package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shataku/internal/core"
)

// CloseCmd freezes a billing cycle into an immutable monthly snapshot.
func CloseCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "close <YYYY-MM>",
		Short: "Close a billing cycle into an immutable monthly snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.shutdown(ctx)

			cycle, err := core.CycleFor(args[0], a.cache.Settings().ClosingDay)
			if err != nil {
				return err
			}
			if start != "" {
				cycle.Start = start
			}
			if end != "" {
				cycle.End = end
			}

			snap, err := a.closing.Close(ctx, cycle)
			var dup *core.DuplicateCycleError
			if errors.As(err, &dup) {
				return fmt.Errorf("cycle %s is already closed; delete its snapshot first if you really need to redo it", dup.CycleMonth)
			}
			if err != nil {
				return err
			}

			fmt.Printf("Closed cycle %s (%s 〜 %s)\n", snap.Cycle.Month, snap.Cycle.Start, snap.Cycle.End)
			fmt.Printf("  snapshot id:  %s\n", snap.ID)
			fmt.Printf("  properties:   %d\n", snap.Totals.PropertyCount)
			fmt.Printf("  tenants:      %d\n", snap.Totals.TenantCount)
			fmt.Printf("  collected:    ¥%d\n", snap.Totals.Collected)
			fmt.Printf("  cost:         ¥%d\n", snap.Totals.Cost)
			fmt.Printf("  profit:       ¥%d\n", snap.Totals.Profit)
			fmt.Printf("  occupancy:    %.1f%%\n", snap.Totals.OccupancyRate*100)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "override cycle start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "override cycle end date (YYYY-MM-DD)")
	return cmd
}
