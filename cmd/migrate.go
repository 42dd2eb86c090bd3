package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/datapulse/datapulse-cli/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Promote raw rows into the main store",
	Long: `Promotes staged raw rows into the deduplicated main tables. Each
promotion inserts the main row and its mapping entry in one transaction.
Customers dedup on phone, products on cleaned name; orders and sales
resolve their parents through the mapping tables and skip rows whose
parents have not migrated yet.`,
}

var migrateAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Migrate every entity in dependency order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		sum := migrate.New(pool).All(ctx)
		formatMigrateResults(os.Stdout, sum.Customers, sum.Products, sum.Orders, sum.Sales)
		return nil
	},
}

// runMigrate builds a RunE that migrates one entity and renders its result.
func runMigrate(pick func(*migrate.Migrator) func(context.Context) migrate.Result) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		res := pick(migrate.New(pool))(ctx)
		formatMigrateResults(os.Stdout, res)
		return nil
	}
}

func init() {
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "customers",
		Short: "Migrate customers (dedup on phone)",
		RunE: runMigrate(func(m *migrate.Migrator) func(context.Context) migrate.Result {
			return m.Customers
		}),
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "products",
		Short: "Migrate products (dedup on name)",
		RunE: runMigrate(func(m *migrate.Migrator) func(context.Context) migrate.Result {
			return m.Products
		}),
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "orders",
		Short: "Migrate orders (requires migrated customers and products)",
		RunE: runMigrate(func(m *migrate.Migrator) func(context.Context) migrate.Result {
			return m.Orders
		}),
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "sales",
		Short: "Migrate sales (requires migrated orders)",
		RunE: runMigrate(func(m *migrate.Migrator) func(context.Context) migrate.Result {
			return m.Sales
		}),
	})
	migrateCmd.AddCommand(migrateAllCmd)
	rootCmd.AddCommand(migrateCmd)
}

// formatMigrateResults writes a tabular representation of migration results
// to w.
func formatMigrateResults(out io.Writer, results ...migrate.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ENTITY\tSTATUS\tINSERTED\tSKIPPED\tNOTE")
	_, _ = fmt.Fprintln(w, "------\t------\t--------\t-------\t----")
	for _, r := range results {
		note := r.Reason
		if r.Message != "" {
			note = r.Message
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.Entity, r.Status, r.Inserted, r.Skipped, note)
	}
	_ = w.Flush()
}
