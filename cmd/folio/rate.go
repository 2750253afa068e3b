package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var rateDismiss bool

var rateCmd = &cobra.Command{
	Use:   "rate [article-id] [rating]",
	Short: "Rate or dismiss an article",
	Long: `Rate an article 1-10, or dismiss it with --dismiss.
Dismissed articles stay in the library with a rating of -1.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()
		ctx := context.Background()

		id := args[0]

		if rateDismiss {
			if _, err := svc.DismissArticle(ctx, id); err != nil {
				fatal("Failed to dismiss article", err)
			}
			fmt.Printf("Article dismissed: %s\n", id)
			return
		}

		if len(args) < 2 {
			fatal("Missing rating", fmt.Errorf("usage: folio rate <article-id> <1-10>"))
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			fatal("Invalid rating", err)
		}
		if _, err := svc.RateArticle(ctx, id, rating); err != nil {
			fatal("Failed to rate article", err)
		}
		fmt.Printf("Article rated %d/10: %s\n", rating, id)
	},
}

func init() {
	rootCmd.AddCommand(rateCmd)
	rateCmd.Flags().BoolVar(&rateDismiss, "dismiss", false, "Dismiss the article instead of rating")
}
