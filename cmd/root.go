package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mj1618/uibridge/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "uibridge",
	Short: "Bridge MCP clients to a running GUI application",
	Long: `uibridge lets AI agents inspect and interact with a running GUI
application. It listens on a TCP port for the application to attach and
exposes its windows, element trees, and input primitives as MCP tools.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error (default from config)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Logs go to stderr: stdout belongs to the stdio MCP transport.
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

		level, _ := rootCmd.PersistentFlags().GetString("log-level")
		if level == "" {
			return nil
		}
		return setLogLevel(level)
	}
}

func setLogLevel(level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("unsupported log level: %q", level)
	}
	zerolog.SetGlobalLevel(parsed)
	return nil
}
