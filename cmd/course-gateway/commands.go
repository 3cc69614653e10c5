// ABOUTME: The commands subcommand prints the discovered command catalog without serving.
// ABOUTME: Output is grouped by handler group, or the raw descriptors with --json.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/course-gateway/internal/gateway"
	"github.com/2389/course-gateway/internal/packs"
)

func newCommandsCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "commands",
		Aliases: []string{"tools"},
		Short:   "List the commands the gateway would expose",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig(false)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			surface, err := gateway.LoadSurface(cmd.Context(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
			if err != nil {
				return err
			}
			defer surface.Close()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(surface.Registry.List())
			}
			printCatalog(out, surface.Registry, surface.Reports)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print descriptors as JSON")
	return cmd
}

func printCatalog(out io.Writer, reg *packs.Registry, reports []packs.GroupReport) {
	bold := color.New(color.Bold)
	gray := color.New(color.FgHiBlack)
	red := color.New(color.FgRed)

	for _, g := range reg.Groups() {
		_, _ = bold.Fprintf(out, "%s\n", g.Group)
		for _, name := range g.Commands {
			cmd, ok := reg.Lookup(name)
			if !ok {
				continue
			}
			_, _ = fmt.Fprintf(out, "  %-26s ", name)
			_, _ = gray.Fprintln(out, firstLine(cmd.Descriptor.Description))
		}
		_, _ = fmt.Fprintln(out)
	}

	for _, rep := range reports {
		if rep.Err != nil {
			_, _ = red.Fprintf(out, "%s failed: %v\n", rep.Group, rep.Err)
		}
	}
	_, _ = fmt.Fprintf(out, "%d commands\n", reg.Len())
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
