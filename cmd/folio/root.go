package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tamarel/folio"
	"github.com/tamarel/folio/pkg/core"
)

var (
	verbose bool
	profile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "A personal research-library manager with encrypted sync",
	Long: `Folio tracks articles, books, notes and shelves in a single local
library document and mirrors it to a remote folder through client-side
AES-GCM encryption.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Profile directory (default ~/.folio)")
}

// profileDir resolves the profile directory from the flag or the home
// directory default.
func profileDir() string {
	if profile != "" {
		return profile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".folio"
	}
	return filepath.Join(home, ".folio")
}

// openService builds the service for the resolved profile.
func openService(extra ...folio.Option) *core.Service {
	opts := append([]folio.Option{
		folio.WithLogger(slog.Default()),
		folio.WithDevSafety(false),
	}, extra...)

	svc, err := folio.New(profileDir(), opts...)
	if err != nil {
		fatal("Failed to open profile", err)
	}
	return svc
}
