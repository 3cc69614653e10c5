// ABOUTME: The usage subcommand reads the SQLite call ledger and prints per-command statistics.
// ABOUTME: --recent lists individual calls instead of the aggregate table.

package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/course-gateway/internal/store"
)

func newUsageCmd(flags *globalFlags) *cobra.Command {
	var (
		command string
		since   time.Duration
		recent  int
	)

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show per-command call statistics from the call ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig(false)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cfg.Database.Path == "" {
				return errors.New("call ledger is disabled; set DATABASE_PATH")
			}

			ledger, err := store.NewSQLiteStore(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("opening call ledger: %w", err)
			}
			defer ledger.Close()

			var filter store.CallFilter
			if command != "" {
				filter.Command = &command
			}
			if since > 0 {
				from := time.Now().Add(-since)
				filter.Since = &from
			}

			out := cmd.OutOrStdout()
			if recent > 0 {
				calls, err := ledger.RecentCalls(cmd.Context(), filter, recent)
				if err != nil {
					return err
				}
				printCalls(out, calls)
				return nil
			}

			stats, err := ledger.UsageStats(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printStats(out, stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&command, "command", "", "only this command")
	cmd.Flags().DurationVar(&since, "since", 0, "only calls within this window, e.g. 24h")
	cmd.Flags().IntVar(&recent, "recent", 0, "list the N most recent calls")
	return cmd
}

func printStats(out io.Writer, stats []store.CommandStats) {
	if len(stats) == 0 {
		_, _ = fmt.Fprintln(out, "No calls recorded.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, color.New(color.Bold).Sprint("COMMAND\tCALLS\tFAILURES\tAVG\tLAST CALLED"))
	for _, s := range stats {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
			s.Command,
			s.Calls,
			s.Failures,
			s.AvgDuration.Round(time.Millisecond),
			s.LastCalled.Local().Format(time.DateTime),
		)
	}
	_ = tw.Flush()
}

func printCalls(out io.Writer, calls []store.Call) {
	if len(calls) == 0 {
		_, _ = fmt.Fprintln(out, "No calls recorded.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, color.New(color.Bold).Sprint("TIME\tCOMMAND\tOUTCOME\tDURATION\tREQUEST"))
	for _, c := range calls {
		outcome := c.Outcome
		if outcome != store.OutcomeOK {
			outcome = color.RedString(outcome)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.CreatedAt.Local().Format(time.DateTime),
			c.Command,
			outcome,
			c.Duration.Round(time.Millisecond),
			c.RequestID,
		)
	}
	_ = tw.Flush()
}
