package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/datapulse/datapulse-cli/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a SQLite snapshot of the main dataset",
	Long:  "Copies the four main tables into a local SQLite file for offline reporting. An existing snapshot at the target path is replaced.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Export.Path
		}

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		counts, err := export.Snapshot(ctx, pool, out)
		if err != nil {
			return eris.Wrap(err, "export")
		}

		fmt.Printf("Exported %d customers, %d products, %d orders, %d sales to %s\n",
			counts.Customers, counts.Products, counts.Orders, counts.Sales, out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "", "snapshot path (default from config export.path)")
	rootCmd.AddCommand(exportCmd)
}
