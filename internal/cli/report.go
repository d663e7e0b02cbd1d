package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shataku/internal/export"
)

// ReportCmd prints or exports the live report views.
func ReportCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:       "report [property|company|payroll]",
		Short:     "Derive the report views from the current entity set",
		Long:      "Without a view name, all three views are exported as CSV to --out. With one, that view is written to stdout.",
		ValidArgs: []string{"property", "company", "payroll"},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.shutdown(ctx)

			bundle := a.closing.Reports()

			if len(args) == 0 {
				if err := export.WriteAll(outDir, bundle); err != nil {
					return err
				}
				fmt.Printf("exported property.csv, company.csv, payroll.csv to %s\n", outDir)
				return nil
			}

			for _, t := range export.Tables(bundle) {
				if t.Name == args[0] {
					return export.WriteCSV(os.Stdout, t)
				}
			}
			return fmt.Errorf("unknown view %q", args[0])
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "./export", "directory for CSV export")
	return cmd
}
