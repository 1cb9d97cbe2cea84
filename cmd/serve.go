package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/uibridge/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server and listen for an application to attach",
	Long: `Start a Model Context Protocol (MCP) server exposing the introspection
tools, and listen on a TCP port for the target application to connect.
Launch the application with UIBRIDGE_SERVER=localhost:<listen-port> so it
attaches to this bridge.

Supported transports:
  stdio             Standard I/O (default, for Claude Code / MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  uibridge serve
  uibridge serve --listen-port 4545 --call-timeout-ms 5000
  uibridge serve --transport streamable-http --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("listen-port", 0, "TCP port the application attaches to (default 4242)")
	serveCmd.Flags().Int("call-timeout-ms", 0, "Per-round-trip timeout in milliseconds")
	serveCmd.Flags().String("config", "", "Path to uibridge.yaml")
}

// loadServeConfig merges defaults, the optional config file, and explicit
// flags, in that order of increasing precedence.
func loadServeConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("listen-port") {
		cfg.ListenPort, _ = cmd.Flags().GetInt("listen-port")
	}
	if cmd.Flags().Changed("call-timeout-ms") {
		cfg.CallTimeoutMS, _ = cmd.Flags().GetInt("call-timeout-ms")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	if !cmd.Flags().Lookup("log-level").Changed && cfg.LogLevel != "" {
		if err := setLogLevel(cfg.LogLevel); err != nil {
			return err
		}
	}

	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	srv, err := newMCPServer(cfg)
	if err != nil {
		return err
	}

	// Bind before serving: an unavailable listen port is the one fatal
	// startup failure.
	if err := srv.start(context.Background()); err != nil {
		return fmt.Errorf("failed to start bridge: %w", err)
	}
	defer srv.stop()

	return srv.serve(transport, port)
}
