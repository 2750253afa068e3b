package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all local state",
	Long: `Delete the library, interests, feeds, config and sync key from the
profile directory. This cannot be undone.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if !resetYes {
			fmt.Printf("This erases everything under %s. Type 'yes' to continue: ", profileDir())
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if strings.TrimSpace(line) != "yes" {
				fmt.Println("Aborted.")
				return
			}
		}

		svc := openService()
		defer svc.Close()

		if err := svc.FactoryReset(context.Background()); err != nil {
			fatal("Failed to reset", err)
		}
		fmt.Println("Profile reset.")
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Skip the confirmation prompt")
}
