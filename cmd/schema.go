package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datapulse/datapulse-cli/internal/store"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the pipeline schema",
}

var schemaInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create raw, main and mapping tables",
	Long:  "Applies the idempotent DDL for the four raw tables, four main tables, four mapping tables and the pipeline run log.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := store.New(pool).EnsureSchema(ctx); err != nil {
			return err
		}

		fmt.Println("Schema ready")
		return nil
	},
}

func init() {
	schemaCmd.AddCommand(schemaInitCmd)
	rootCmd.AddCommand(schemaCmd)
}
