package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a folio profile",
	Long:  `Create the profile directory and the initial library document.`,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		doc := svc.Load(context.Background())
		if err := svc.Save(context.Background(), doc); err != nil {
			fatal("Failed to initialize library", err)
		}

		fmt.Println("Initialized folio profile in", profileDir())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
