package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"vocabclash/internal/service"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export learning data to a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		outputPath := exportOutput
		if outputPath == "" {
			outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
		}
		if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrap(err, "create output directory")
			}
		}

		f, err := os.Create(outputPath)
		if err != nil {
			return errors.Wrap(err, "create backup file")
		}
		defer f.Close()

		if err := service.NewBackupService(db).ExportToWriter(cmd.Context(), f); err != nil {
			return err
		}

		info, err := f.Stat()
		if err != nil {
			return errors.Wrap(err, "stat backup file")
		}
		fmt.Printf("Exported to %s (%.2f MB)\n", outputPath, float64(info.Size())/1024/1024)
		return nil
	},
}

var importInput string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import learning data from a JSON backup",
	Long: `Import merges a backup into the configured database. Rows that
already exist are kept, so the same file can be imported twice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importInput)
		if err != nil {
			return errors.Wrap(err, "open backup file")
		}
		defer f.Close()

		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := service.NewBackupService(db).ImportFromReader(cmd.Context(), f); err != nil {
			return err
		}
		fmt.Println("Import complete")
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default backup_YYYYMMDD_HHMMSS.json)")
	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "backup file to import")
	importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(exportCmd, importCmd)
}
