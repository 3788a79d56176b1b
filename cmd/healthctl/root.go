package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vladimiradmaev/health-records/internal/config"
	"github.com/vladimiradmaev/health-records/internal/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "healthctl",
	Short: "Admin tool for the health records service",
	Long: `healthctl runs maintenance tasks against the health records database:
schema migrations, vaccine history exports and configuration checks.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "⚠️  failed to read .env: %v\n", err)
		}

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		return logger.InitWithConfig(logger.Config{
			Level:      cfg.Logger.Level,
			OutputPath: "stderr",
			Format:     "text",
		})
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(exportCmd)
}
