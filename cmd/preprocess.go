package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/datapulse/datapulse-cli/internal/preprocess"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Clean and gap-fill raw tables",
	Long: `Applies the per-entity cleaning rules to the raw tables: default values
for blank fields, whitespace and casing normalization, price normalization,
and city/region inference. Orders carry no preprocessing rules.`,
}

var preprocessAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Preprocess every non-empty raw table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		sum := preprocess.New(pool).All(ctx)
		formatPreprocessResults(os.Stdout, sum.Customers, sum.Sales, sum.Products)
		return nil
	},
}

// runPreprocess builds a RunE that executes one entity's preprocessing and
// renders its result.
func runPreprocess(pick func(*preprocess.Preprocessor) func(context.Context) preprocess.Result) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		res := pick(preprocess.New(pool))(ctx)
		formatPreprocessResults(os.Stdout, res)
		return nil
	}
}

func init() {
	preprocessCmd.AddCommand(&cobra.Command{
		Use:   "customers",
		Short: "Preprocess customers_raw",
		RunE: runPreprocess(func(p *preprocess.Preprocessor) func(context.Context) preprocess.Result {
			return p.Customers
		}),
	})
	preprocessCmd.AddCommand(&cobra.Command{
		Use:   "products",
		Short: "Preprocess products_raw",
		RunE: runPreprocess(func(p *preprocess.Preprocessor) func(context.Context) preprocess.Result {
			return p.Products
		}),
	})
	preprocessCmd.AddCommand(&cobra.Command{
		Use:   "sales",
		Short: "Preprocess sales_raw",
		RunE: runPreprocess(func(p *preprocess.Preprocessor) func(context.Context) preprocess.Result {
			return p.Sales
		}),
	})
	preprocessCmd.AddCommand(preprocessAllCmd)
	rootCmd.AddCommand(preprocessCmd)
}

// formatPreprocessResults writes a tabular representation of preprocessing
// results to w.
func formatPreprocessResults(out io.Writer, results ...preprocess.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ENTITY\tSTATUS\tUPDATED\tNOTE")
	_, _ = fmt.Fprintln(w, "------\t------\t-------\t----")
	for _, r := range results {
		note := r.Reason
		if r.Message != "" {
			note = r.Message
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Entity, r.Status, r.Updated, note)
	}
	_ = w.Flush()
}
