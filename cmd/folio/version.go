package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamarel/folio"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the folio version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("folio %s\n", folio.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
