package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vladimiradmaev/health-records/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer database.Close(db)

		applied, err := database.Migrate(db)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Schema is up to date")
			return nil
		}
		for _, id := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", id)
		}
		return nil
	},
}
