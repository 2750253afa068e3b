package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamarel/folio/pkg/core"
)

var logSeverity string

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the diagnostic log buffer",
	Long:  `Print the in-document log buffer, newest first. The buffer holds the last 100 entries.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		doc := svc.Load(context.Background())
		for _, entry := range doc.Logs {
			if logSeverity != "" && string(entry.Severity) != logSeverity {
				continue
			}
			fmt.Printf("%s  %-5s  %s\n",
				entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Severity, entry.Message)
			for k, v := range entry.Context {
				fmt.Printf("    %s=%v\n", k, v)
			}
		}
	},
}

var logUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show recorded model-call usage",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		doc := svc.Load(context.Background())
		var in, out int
		for _, ev := range doc.Usage {
			in += ev.InputTokens
			out += ev.OutputTokens
		}
		fmt.Printf("%d calls recorded (%d input tokens, %d output tokens)\n",
			len(doc.Usage), in, out)
		for _, ev := range doc.Usage {
			fmt.Printf("%s  %-20s  %s  in=%d out=%d\n",
				ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Feature, ev.Model, ev.InputTokens, ev.OutputTokens)
		}
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logUsageCmd)
	logCmd.Flags().StringVar(&logSeverity, "severity", "",
		fmt.Sprintf("Filter by severity (%s, %s, %s, %s)",
			core.SeverityDebug, core.SeverityInfo, core.SeverityWarn, core.SeverityError))
}
