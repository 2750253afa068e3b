package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or import the full library state",
}

var backupExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the library, interests, feeds and config to one JSON file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		env, err := svc.ExportBackup(context.Background())
		if err != nil {
			fatal("Failed to build backup", err)
		}
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			fatal("Failed to encode backup", err)
		}
		if err := os.WriteFile(args[0], data, 0644); err != nil {
			fatal("Failed to write backup file", err)
		}
		fmt.Printf("Backup written to %s\n", args[0])
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace local state with a backup file",
	Long: `Replace the library, interests and (if present) feeds and config
with the backup's content. The file must carry both "data" and "interests"
top-level keys; anything else is rejected and local state is left untouched.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		payload, err := os.ReadFile(args[0])
		if err != nil {
			fatal("Failed to read backup file", err)
		}

		svc := openService()
		defer svc.Close()

		if err := svc.ImportBackup(context.Background(), payload); err != nil {
			fatal("Failed to import backup", err)
		}
		fmt.Println("Backup imported.")
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
}
