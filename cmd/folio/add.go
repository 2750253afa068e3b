package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tamarel/folio/pkg/core"
)

var (
	addTitle    string
	addAuthors  []string
	addAbstract string
	addYear     int
	addTags     []string
	addQueue    bool
	addBook     bool
	addPrice    string
	addStoreURL string
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an article or book to the library",
	Run: func(cmd *cobra.Command, args []string) {
		if addTitle == "" {
			fmt.Println("Error: --title is required")
			cmd.Usage()
			os.Exit(1)
		}

		svc := openService()
		defer svc.Close()
		ctx := context.Background()

		var id string
		if addBook {
			doc, err := svc.AddBook(ctx, core.Book{
				Title:    addTitle,
				Authors:  addAuthors,
				Year:     addYear,
				Tags:     addTags,
				Price:    addPrice,
				StoreURL: addStoreURL,
			})
			if err != nil {
				fatal("Failed to add book", err)
			}
			id = doc.Books[len(doc.Books)-1].ID
		} else {
			doc, err := svc.AddArticle(ctx, core.Article{
				Title:    addTitle,
				Authors:  addAuthors,
				Abstract: addAbstract,
				Year:     addYear,
				Tags:     addTags,
			})
			if err != nil {
				fatal("Failed to add article", err)
			}
			id = doc.Articles[len(doc.Articles)-1].ID
		}

		if addQueue {
			if _, err := svc.AssignToShelf(ctx, id, core.QueueShelfID); err != nil {
				fatal("Failed to queue item", err)
			}
		}

		fmt.Printf("Added '%s' (%s)\n", addTitle, id)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addTitle, "title", "", "Title (required)")
	addCmd.Flags().StringSliceVar(&addAuthors, "author", nil, "Author (repeatable)")
	addCmd.Flags().StringVar(&addAbstract, "abstract", "", "Abstract")
	addCmd.Flags().IntVar(&addYear, "year", 0, "Publication year")
	addCmd.Flags().StringSliceVar(&addTags, "tag", nil, "Tag (repeatable)")
	addCmd.Flags().BoolVar(&addQueue, "queue", false, "Add to the reading queue shelf")
	addCmd.Flags().BoolVar(&addBook, "book", false, "Add as a book instead of an article")
	addCmd.Flags().StringVar(&addPrice, "price", "", "Book price")
	addCmd.Flags().StringVar(&addStoreURL, "store-url", "", "Book marketplace URL")
	addCmd.MarkFlagRequired("title")
}
