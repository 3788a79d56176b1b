package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vladimiradmaev/health-records/internal/database"
	"github.com/vladimiradmaev/health-records/internal/repository"
	"github.com/vladimiradmaev/health-records/internal/services"
	"github.com/vladimiradmaev/health-records/internal/state"
)

var (
	exportEmail string
	exportDir   string
)

var exportCmd = &cobra.Command{
	Use:   "export [account-id]",
	Short: "Write an account's vaccine history spreadsheet",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportEmail, "email", "", "Look the account up by email instead of id")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".", "Directory to write the file to")
}

func runExport(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (exportEmail == "") {
		return errors.New("pass either an account id or --email")
	}

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close(db)

	store := repository.NewPostgresStore(db)
	ctx := cmd.Context()

	var accountID string
	if exportEmail != "" {
		account, _, err := store.FindAccountByEmail(ctx, exportEmail)
		if err != nil {
			return fmt.Errorf("find account %s: %w", exportEmail, err)
		}
		accountID = account.ID
	} else {
		accountID = args[0]
	}

	vaccines := services.NewVaccineService(store, state.NewManager(cfg.Assist.InFlightTTL), cfg.Assist.UpcomingMonths)
	data, filename, err := vaccines.Export(ctx, accountID)
	if err != nil {
		return err
	}

	path := filepath.Join(exportDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "📄 Wrote %s\n", path)
	return nil
}
