package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datapulse/datapulse-cli/internal/pipeline"
)

const timeRounding = time.Second

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List pipeline run history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		entries, err := pipeline.New(pool).List(ctx)
		if err != nil {
			return eris.Wrap(err, "runs")
		}

		if len(entries) == 0 {
			zap.L().Info("no pipeline runs recorded, run 'pipeline run' to start one")
			return nil
		}

		formatRunEntries(os.Stdout, entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

// formatRunEntries writes a tabular representation of run log entries to w.
func formatRunEntries(out io.Writer, entries []pipeline.RunEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tSTARTED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t------\t-------\t--------")

	for _, e := range entries {
		dur := "-"
		if e.CompletedAt != nil {
			dur = e.CompletedAt.Sub(e.StartedAt).Round(timeRounding).String()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			truncateID(e.ID),
			e.Status,
			e.StartedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
