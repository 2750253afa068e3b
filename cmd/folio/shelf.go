package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var shelfColor string

var shelfCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Manage shelves",
}

var shelfListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shelves",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		doc := svc.Load(context.Background())
		for _, sh := range doc.Shelves {
			fmt.Printf("%s  %s\n", sh.ID, sh.Name)
		}
	},
}

var shelfAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a shelf",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		doc, err := svc.AddShelf(context.Background(), args[0], shelfColor)
		if err != nil {
			fatal("Failed to add shelf", err)
		}
		fmt.Printf("Shelf created: %s\n", doc.Shelves[len(doc.Shelves)-1].ID)
	},
}

var shelfRemoveCmd = &cobra.Command{
	Use:   "remove [shelf-id]",
	Short: "Delete a shelf",
	Long:  `Delete a shelf and its memberships. The reading queue shelf is permanent; removing it does nothing.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		if _, err := svc.DeleteShelf(context.Background(), args[0]); err != nil {
			fatal("Failed to delete shelf", err)
		}
		fmt.Printf("Shelf removed: %s\n", args[0])
	},
}

var shelfAssignCmd = &cobra.Command{
	Use:   "assign [item-id] [shelf-id]",
	Short: "Add an article or book to a shelf",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		if _, err := svc.AssignToShelf(context.Background(), args[0], args[1]); err != nil {
			fatal("Failed to assign to shelf", err)
		}
		fmt.Printf("Assigned %s to shelf %s\n", args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(shelfCmd)
	shelfCmd.AddCommand(shelfListCmd)
	shelfCmd.AddCommand(shelfAddCmd)
	shelfCmd.AddCommand(shelfRemoveCmd)
	shelfCmd.AddCommand(shelfAssignCmd)
	shelfAddCmd.Flags().StringVar(&shelfColor, "color", "#6b7280", "Display color")
}
