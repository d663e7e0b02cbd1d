package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"shataku/internal/cli"
	"shataku/internal/config"
	"shataku/internal/log"
)

func main() {
	level := slog.LevelInfo
	if cfg, err := config.Load(); err == nil {
		if l, err := cfg.SlogLevel(); err == nil {
			level = l
		}
	}
	log.SetDefault(log.New(log.Config{Level: level, Component: "shataku"}))

	rootCmd := &cobra.Command{
		Use:   "shataku",
		Short: "Shared-housing report aggregation and monthly snapshot engine",
	}

	rootCmd.AddCommand(
		cli.CloseCmd(),
		cli.SnapshotsCmd(),
		cli.ReportCmd(),
		cli.BackupCmd(),
		cli.RestoreCmd(),
		cli.ResetCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
