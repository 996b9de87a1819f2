package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Printf("Migrations applied (%s)\n", appConfig.DatabaseType)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
