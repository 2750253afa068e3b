package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tamarel/folio/pkg/core"
	"github.com/tamarel/folio/pkg/export"
)

var (
	noteTitle   string
	noteContent string
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note",
	Run: func(cmd *cobra.Command, args []string) {
		if noteTitle == "" {
			fmt.Println("Error: --title is required")
			cmd.Usage()
			os.Exit(1)
		}

		svc := openService()
		defer svc.Close()

		doc, err := svc.AddNote(context.Background(), core.Note{Title: noteTitle, Content: noteContent})
		if err != nil {
			fatal("Failed to add note", err)
		}
		fmt.Printf("Note created: %s\n", doc.Notes[len(doc.Notes)-1].ID)
	},
}

var noteLinkCmd = &cobra.Command{
	Use:   "link [note-id] [article-id]",
	Short: "Link a note to an article",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		if _, err := svc.LinkNoteToArticle(context.Background(), args[0], args[1]); err != nil {
			fatal("Failed to link note", err)
		}
		fmt.Printf("Linked note %s to article %s\n", args[0], args[1])
	},
}

var noteUnlinkCmd = &cobra.Command{
	Use:   "unlink [note-id] [article-id]",
	Short: "Unlink a note from an article",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		if _, err := svc.UnlinkNoteFromArticle(context.Background(), args[0], args[1]); err != nil {
			fatal("Failed to unlink note", err)
		}
		fmt.Printf("Unlinked note %s from article %s\n", args[0], args[1])
	},
}

var noteExportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Export all notes as Markdown with frontmatter",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		n, err := export.WriteAll(context.Background(), svc, args[0])
		if err != nil {
			fatal("Failed to export notes", err)
		}
		fmt.Printf("Exported %d notes to %s\n", n, args[0])
	},
}

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteLinkCmd)
	noteCmd.AddCommand(noteUnlinkCmd)
	noteCmd.AddCommand(noteExportCmd)
	noteAddCmd.Flags().StringVar(&noteTitle, "title", "", "Note title (required)")
	noteAddCmd.Flags().StringVar(&noteContent, "content", "", "Note content")
	noteAddCmd.MarkFlagRequired("title")
}
