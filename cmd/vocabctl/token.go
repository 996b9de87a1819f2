package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"vocabclash/internal/security"
)

var (
	tokenUserID int64
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for a user",
	Long: `Token signs a bearer token with JWT_SECRET for local testing of
the HTTP API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUserID <= 0 {
			return errors.New("--user must be a positive user id")
		}
		verifier := security.NewTokenVerifier(appConfig.TokenSecret(), appConfig.JWTIssuer)
		token, err := verifier.Issue(tokenUserID, tokenTTL, time.Now())
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenUserID, "user", 0, "user id to put in the subject claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(tokenCmd)
}
