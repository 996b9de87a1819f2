package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"vocabclash/internal/gamification"
	"vocabclash/internal/service"
)

var (
	dueUserID int64
	dueLimit  int
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show the words due for review for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		limit := dueLimit
		if limit == 0 {
			limit = appConfig.DueWordsLimit
		}
		progress := service.NewProgressService(db, gamification.DefaultCatalog(), service.NewUserLocks())
		words, err := progress.GetDueWords(cmd.Context(), dueUserID, limit)
		if err != nil {
			return err
		}

		if len(words) == 0 {
			fmt.Println("No words due.")
			return nil
		}

		fmt.Printf("%d words due:\n\n", len(words))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWord\tNext Review\tReviews\tEase\tInterval")
		fmt.Fprintln(w, "--\t----\t-----------\t-------\t----\t--------")
		for _, d := range words {
			next := d.NextReviewDate.Format("2006-01-02 15:04")
			if d.IsNew {
				next = "new"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.2f\t%d\n",
				d.ID, d.Word.Word, next, d.ReviewCount, d.EaseFactor, d.ReviewInterval)
		}
		return w.Flush()
	},
}

func init() {
	dueCmd.Flags().Int64Var(&dueUserID, "user", 0, "user id")
	dueCmd.Flags().IntVar(&dueLimit, "limit", 0, "maximum words to list (default DUE_WORDS_LIMIT)")
	dueCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(dueCmd)
}
