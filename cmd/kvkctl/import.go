package main

import (
	"fmt"
	"kvk-dashboard/internal/domain"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <phase> <file>",
	Short: "Replace a phase with the rows of a spreadsheet",
	Long: `Replace every record of a phase (dataStart, dataPass4, dataPass7 or
dataKingland) with the rows of an .xlsx or .csv file. The whole file is
rejected when any row is invalid.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

var totalDeadsCmd = &cobra.Command{
	Use:   "total-deads <file>",
	Short: "Patch total deads on dataKingland records from a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runTotalDeads,
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(totalDeadsCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	phase, err := domain.ParsePhase(args[0])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[1], err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.ingest.UploadPhase(cmd.Context(), phase, filepath.Base(args[1]), data)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "batch %s: %d rows imported into %s, %d new players\n",
		res.BatchID, res.Rows, res.Phase, res.NewPlayers)
	return nil
}

func runTotalDeads(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.ingest.PatchTotalDeads(cmd.Context(), filepath.Base(args[0]), data)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "batch %s: total deads updated for %d players\n", res.BatchID, res.Rows)
	return nil
}
