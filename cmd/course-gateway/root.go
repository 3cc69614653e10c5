// ABOUTME: Cobra root command and the flags shared by every subcommand.
// ABOUTME: Subcommands load configuration through loadConfig so flags and files layer the same way.

package main

import (
	"github.com/spf13/cobra"

	"github.com/2389/course-gateway/internal/config"
)

// globalFlags are bound to persistent flags on the root command.
type globalFlags struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "course-gateway",
		Short: "course-gateway - authenticated command gateway for course catalog tools",
		Long: `course-gateway exposes a registry of named commands (course catalog search,
schedule conflict checks, weather lookups and notification streams) over
MCP Streamable HTTP and a plain JSON API, behind a bearer token.

Configuration comes from a .env file, an optional YAML file and the
environment. API_AUTH_TOKEN is required to serve.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "YAML config file (default $"+config.PathEnvVar+")")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "dotenv file (default ./.env when present)")

	root.AddCommand(
		newServeCmd(flags),
		newCommandsCmd(flags),
		newHealthCmd(flags),
		newUsageCmd(flags),
	)
	return root
}

// loadConfig loads configuration honoring --config and --env-file.
func (f *globalFlags) loadConfig(validate bool) (*config.Config, error) {
	return config.Load(config.Options{
		EnvFile:        f.envFile,
		ConfigPath:     f.configPath,
		SkipValidation: !validate,
	})
}
