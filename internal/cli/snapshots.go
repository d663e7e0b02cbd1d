package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SnapshotsCmd groups the snapshot lifecycle operations.
func SnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List, delete and compare monthly snapshots",
	}
	cmd.AddCommand(snapshotsListCmd(), snapshotsDeleteCmd(), snapshotsCompareCmd())
	return cmd
}

func snapshotsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all snapshots, most recent cycle first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.shutdown(ctx)

			snaps, err := a.closing.List(ctx)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				fmt.Println("no snapshots")
				return nil
			}

			fmt.Printf("%-9s  %-36s  %-20s  %10s  %10s\n", "Cycle", "ID", "Closed at", "Collected", "Profit")
			for _, s := range snaps {
				fmt.Printf("%-9s  %-36s  %-20s  %10d  %10d\n",
					s.Cycle.Month, s.ID, s.ClosedAt.Format("2006-01-02 15:04"),
					s.Totals.Collected, s.Totals.Profit)
			}
			return nil
		},
	}
}

func snapshotsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot by id (no error if already gone)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.shutdown(ctx)

			if err := a.closing.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}

func snapshotsCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <idA> <idB>",
		Short: "Show two snapshots side by side",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.shutdown(ctx)

			cmpResult, ok, err := a.closing.Compare(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("nothing to compare: at least one snapshot id was not found")
				return nil
			}

			left, right := cmpResult.A, cmpResult.B
			fmt.Printf("%-14s  %12s  %12s  %12s\n", "", left.Cycle.Month, right.Cycle.Month, "diff")
			rows := []struct {
				label string
				a, b  int64
			}{
				{"properties", int64(left.Totals.PropertyCount), int64(right.Totals.PropertyCount)},
				{"tenants", int64(left.Totals.TenantCount), int64(right.Totals.TenantCount)},
				{"collected", left.Totals.Collected, right.Totals.Collected},
				{"cost", left.Totals.Cost, right.Totals.Cost},
				{"target", left.Totals.Target, right.Totals.Target},
				{"profit", left.Totals.Profit, right.Totals.Profit},
			}
			for _, r := range rows {
				fmt.Printf("%-14s  %12d  %12d  %+12d\n", r.label, r.a, r.b, r.b-r.a)
			}
			return nil
		},
	}
}
