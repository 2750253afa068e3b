package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tamarel/folio/pkg/core"
)

var (
	listJSON      bool
	listTag       string
	listShelf     string
	listDismissed bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles and books in the library",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		doc := svc.Load(context.Background())

		var articles []core.Article
		for _, a := range doc.Articles {
			if a.Rating == core.RatingDismissed && !listDismissed {
				continue
			}
			if listTag != "" && !containsString(a.Tags, listTag) {
				continue
			}
			if listShelf != "" && !containsString(a.ShelfIDs, listShelf) {
				continue
			}
			articles = append(articles, a)
		}

		var books []core.Book
		for _, b := range doc.Books {
			if listTag != "" && !containsString(b.Tags, listTag) {
				continue
			}
			if listShelf != "" && !containsString(b.ShelfIDs, listShelf) {
				continue
			}
			books = append(books, b)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(map[string]any{"articles": articles, "books": books}); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, a := range articles {
			rating := ""
			switch {
			case a.Rating == core.RatingDismissed:
				rating = " [dismissed]"
			case a.Rating > 0:
				rating = fmt.Sprintf(" [%d/10]", a.Rating)
			}
			fmt.Printf("%s  %s%s\n", a.ID, a.Title, rating)
		}
		for _, b := range books {
			fmt.Printf("%s  %s (book)\n", b.ID, b.Title)
		}
	},
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter by tag")
	listCmd.Flags().StringVar(&listShelf, "shelf", "", "Filter by shelf id")
	listCmd.Flags().BoolVar(&listDismissed, "dismissed", false, "Include dismissed articles")
}
