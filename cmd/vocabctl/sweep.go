package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vocabclash/internal/gamification"
	"vocabclash/internal/service"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Close study sessions that have been idle too long",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		sessions := service.NewSessionService(db, gamification.DefaultCatalog(), service.NewUserLocks())
		sessions.SetIdleTimeouts(appConfig.SessionIdleTimeout, appConfig.AuthIdleTimeout)

		closed, err := sessions.SweepStaleSessions(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Closed %d stale sessions\n", closed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
