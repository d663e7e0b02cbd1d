package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"shataku/internal/backup"
	"shataku/internal/core"
)

// BackupCmd writes the full in-memory entity structure plus snapshots to a
// JSON document.
func BackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <file>",
		Short: "Write a full-state backup document",
		Args:  cobra.ExactArgs(1),
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
			doc, err := backup.Export(a.cache.Snapshot(), snaps, time.Now())
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], doc, 0644); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
			fmt.Printf("backup written to %s\n", args[0])
			return nil
		},
	}
}

// RestoreCmd replaces the whole entity set from a backup document. The
// document's shape is validated before anything is touched.
func RestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the entity set from a backup document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			ds, snaps, err := backup.Decode(raw)
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.shutdown(ctx)

			a.cache.Replace(ds)
			if err := a.cache.Flush(ctx); err != nil {
				return err
			}

			restored := 0
			for _, snap := range snaps {
				err := a.store.InsertSnapshot(ctx, snap)
				var dup *core.DuplicateCycleError
				if errors.As(err, &dup) {
					continue
				}
				if err != nil {
					return err
				}
				restored++
			}

			fmt.Printf("restored %d properties, %d tenants, %d employees, %d snapshots\n",
				len(ds.Properties), len(ds.Tenants), len(ds.Employees), restored)
			return nil
		},
	}
}

// ResetCmd clears every collection, snapshots and migration metadata
// included.
func ResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Destroy all data and reset the store to empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.shutdown(ctx)

			if err := a.cache.Reset(ctx); err != nil {
				return err
			}
			fmt.Println("store reset, all collections cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the destructive reset")
	return cmd
}
