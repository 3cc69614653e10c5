// ABOUTME: The serve subcommand: loads config, prints the startup banner and runs the gateway.
// ABOUTME: --host, --port and --log-level override whatever the config layers produced.

package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/course-gateway/internal/config"
	"github.com/2389/course-gateway/internal/gateway"
	"github.com/2389/course-gateway/internal/packs"
)

const banner = `
   ┌─┐┌─┐┬ ┬┬─┐┌─┐┌─┐   ┌─┐┌─┐┌┬┐┌─┐┬ ┬┌─┐┬ ┬
   │  │ ││ │├┬┘└─┐├┤ ───│ ┬├─┤ │ ├┤ │││├─┤└┬┘
   └─┘└─┘└─┘┴└─└─┘└─┘   └─┘┴ ┴ ┴ └─┘└┴┘┴ ┴ ┴
`

func newServeCmd(flags *globalFlags) *cobra.Command {
	var (
		host     string
		port     int
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig(false)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			out := cmd.OutOrStdout()
			logger, err := setupLogger(out, cfg.Logging)
			if err != nil {
				return err
			}

			printBanner(out, cfg)

			gw, err := gateway.New(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("creating gateway: %w", err)
			}
			printReports(out, gw.Reports())

			logger.Info("starting course-gateway",
				"addr", cfg.Addr(),
				"commands", gw.Registry().Len(),
				"ledger", cfg.Database.Path != "",
			)
			return gw.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides HOST)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides PORT)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	return cmd
}

func printBanner(out io.Writer, cfg *config.Config) {
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	_, _ = cyan.Fprint(out, banner)
	_, _ = gray.Fprintf(out, "    version: %s\n\n", version)

	_, _ = green.Fprint(out, "    ▶ ")
	_, _ = fmt.Fprintf(out, "HTTP:      http://%s\n", cfg.Addr())
	_, _ = green.Fprint(out, "    ▶ ")
	_, _ = fmt.Fprintf(out, "Catalog:   %s (%s)\n", cfg.Catalog.BaseURL, cfg.Catalog.AcademicYear)
	_, _ = green.Fprint(out, "    ▶ ")
	_, _ = fmt.Fprintf(out, "Weather:   %s\n", cfg.Weather.BaseURL)

	_, _ = green.Fprint(out, "    ▶ ")
	_, _ = fmt.Fprint(out, "Cache:     ")
	if cfg.Cache.RedisURL != "" {
		_, _ = cyan.Fprintln(out, "redis")
	} else {
		_, _ = gray.Fprintln(out, "in-process")
	}

	_, _ = green.Fprint(out, "    ▶ ")
	_, _ = fmt.Fprint(out, "Ledger:    ")
	if cfg.Database.Path != "" {
		_, _ = fmt.Fprintln(out, cfg.Database.Path)
	} else {
		_, _ = yellow.Fprintln(out, "disabled")
	}
	_, _ = fmt.Fprintln(out)
}

func printReports(out io.Writer, reports []packs.GroupReport) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	gray := color.New(color.FgHiBlack)

	for _, rep := range reports {
		switch {
		case rep.Err != nil:
			_, _ = red.Fprint(out, "    ✗ ")
			_, _ = fmt.Fprintf(out, "%-16s %v\n", rep.Group, rep.Err)
		case rep.Convention == packs.ConventionDisabled:
			_, _ = gray.Fprintf(out, "    - %-16s disabled\n", rep.Group)
		default:
			_, _ = green.Fprint(out, "    ✓ ")
			_, _ = fmt.Fprintf(out, "%-16s %d commands via %s\n", rep.Group, rep.Added, rep.Convention)
		}
	}
	_, _ = fmt.Fprintln(out)
}
