package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tamarel/folio"
	"github.com/tamarel/folio/pkg/core"
	"github.com/tamarel/folio/pkg/feed"
	"github.com/tamarel/folio/pkg/store"
)

var feedName string

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Manage monitored feeds",
}

// openRegistry builds the feed registry over the profile's storage.
func openRegistry() (*core.Service, *feed.Registry) {
	dir := folio.ResolveProfilePath(profileDir(), false)
	st := store.New(store.Config{Dir: dir, Logger: slog.Default()})
	if err := st.Initialize(context.Background()); err != nil {
		fatal("Failed to open profile", err)
	}
	svc := openService(folio.WithStorage(st))
	return svc, feed.NewRegistry(st)
}

var feedAddCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Register a feed",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, reg := openRegistry()
		defer svc.Close()

		name := feedName
		if name == "" {
			name = args[0]
		}
		f, err := reg.Add(context.Background(), name, args[0])
		if err != nil {
			fatal("Failed to add feed", err)
		}
		fmt.Printf("Feed registered: %s (%s)\n", f.Name, f.ID)
	},
}

var feedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered feeds",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, reg := openRegistry()
		defer svc.Close()

		feeds, err := reg.List(context.Background())
		if err != nil {
			fatal("Failed to list feeds", err)
		}
		for _, f := range feeds {
			state := "active"
			if !f.Active {
				state = "paused"
			}
			fmt.Printf("%s  %s  %s (%s)\n", f.ID, f.Name, f.URL, state)
		}
	},
}

var feedRemoveCmd = &cobra.Command{
	Use:   "remove [feed-id]",
	Short: "Remove a feed",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, reg := openRegistry()
		defer svc.Close()

		if err := reg.Remove(context.Background(), args[0]); err != nil {
			fatal("Failed to remove feed", err)
		}
		fmt.Printf("Feed removed: %s\n", args[0])
	},
}

var feedPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch all active feeds and ingest new items",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, reg := openRegistry()
		defer svc.Close()

		fetcher := feed.NewFetcher(svc, reg, feed.WithLogger(slog.Default()))
		sum, err := fetcher.Run(context.Background())
		if err != nil {
			fatal("Feed run failed", err)
		}
		fmt.Printf("Checked %d feeds: %d new articles, %d failures\n",
			sum.FeedsChecked, sum.NewArticles, sum.Failures)
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)
	feedCmd.AddCommand(feedAddCmd)
	feedCmd.AddCommand(feedListCmd)
	feedCmd.AddCommand(feedRemoveCmd)
	feedCmd.AddCommand(feedPullCmd)
	feedAddCmd.Flags().StringVar(&feedName, "name", "", "Display name (defaults to the URL)")
}
