// ABOUTME: The health subcommand probes /health and /health/ready of a running gateway.
// ABOUTME: Exits non-zero when the server is unreachable or unhealthy.

package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newHealthCmd(flags *globalFlags) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check gateway health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			base := strings.TrimSuffix(url, "/")
			if base == "" {
				cfg, err := flags.loadConfig(false)
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				base = "http://" + cfg.Addr()
			}

			client := &http.Client{Timeout: 5 * time.Second}
			out := cmd.OutOrStdout()

			if _, err := probe(cmd, client, base+"/health"); err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			body, err := probe(cmd, client, base+"/health/ready")
			if err != nil {
				_, _ = color.New(color.FgYellow).Fprintln(out, "alive, not ready:", err)
				return err
			}

			_, _ = color.New(color.FgGreen).Fprint(out, "healthy")
			_, _ = fmt.Fprintf(out, " %s\n", body)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "gateway base URL (default http://HOST:PORT)")
	return cmd
}

func probe(cmd *cobra.Command, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return strings.TrimSpace(string(body)), nil
}
