package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/datapulse/datapulse-cli/internal/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete promoted raw rows",
	Long: `Deletes raw rows that have a mapping entry, i.e. rows already promoted
into the main store. Unmigrated raw rows are never deleted; they are
reported as pending so migration gaps surface instead of silently losing
data.`,
}

var sweepAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Sweep every non-empty raw table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		sum := sweep.New(pool).All(ctx)
		formatSweepResults(os.Stdout, sum.Customers, sum.Products, sum.Orders, sum.Sales)
		return nil
	},
}

// runSweep builds a RunE that sweeps one entity and renders its result.
func runSweep(pick func(*sweep.Sweeper) func(context.Context) sweep.Result) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		res := pick(sweep.New(pool))(ctx)
		formatSweepResults(os.Stdout, res)
		return nil
	}
}

func init() {
	sweepCmd.AddCommand(&cobra.Command{
		Use:   "customers",
		Short: "Sweep customers_raw",
		RunE: runSweep(func(s *sweep.Sweeper) func(context.Context) sweep.Result {
			return s.Customers
		}),
	})
	sweepCmd.AddCommand(&cobra.Command{
		Use:   "products",
		Short: "Sweep products_raw",
		RunE: runSweep(func(s *sweep.Sweeper) func(context.Context) sweep.Result {
			return s.Products
		}),
	})
	sweepCmd.AddCommand(&cobra.Command{
		Use:   "orders",
		Short: "Sweep orders_raw",
		RunE: runSweep(func(s *sweep.Sweeper) func(context.Context) sweep.Result {
			return s.Orders
		}),
	})
	sweepCmd.AddCommand(&cobra.Command{
		Use:   "sales",
		Short: "Sweep sales_raw",
		RunE: runSweep(func(s *sweep.Sweeper) func(context.Context) sweep.Result {
			return s.Sales
		}),
	})
	sweepCmd.AddCommand(sweepAllCmd)
	rootCmd.AddCommand(sweepCmd)
}

// formatSweepResults writes a tabular representation of sweep results to w.
// Pending ids are truncated for display.
func formatSweepResults(out io.Writer, results ...sweep.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ENTITY\tSTATUS\tDELETED\tPENDING\tNOTE")
	_, _ = fmt.Fprintln(w, "------\t------\t-------\t-------\t----")
	for _, r := range results {
		note := r.Reason
		if r.Message != "" {
			note = r.Message
		}
		if note == "" && len(r.PendingIDs) > 0 {
			note = "ids " + formatIDs(r.PendingIDs, 10)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.Entity, r.Status, r.Deleted, r.NotMigrated, note)
	}
	_ = w.Flush()
}

// formatIDs renders up to max ids as a comma-separated list.
func formatIDs(ids []int64, max int) string {
	var parts []string
	for i, id := range ids {
		if i == max {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}
