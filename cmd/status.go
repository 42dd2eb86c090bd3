package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/datapulse/datapulse-cli/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database connectivity and table counts",
	Long:  "Pings the database and prints row counts for every raw, main and mapping table.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		counts, err := store.New(pool).TableCounts(ctx)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		formatTableCounts(os.Stdout, counts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// formatTableCounts writes a tabular representation of table counts to w.
func formatTableCounts(out io.Writer, counts []store.TableCount) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TABLE\tROWS")
	_, _ = fmt.Fprintln(w, "-----\t----")
	for _, c := range counts {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", c.Table, c.Rows)
	}
	_ = w.Flush()
}
