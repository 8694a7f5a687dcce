package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/staffline-mcp/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP on stdin/stdout (default)",
		Long: `Serve the Model Context Protocol over stdin/stdout.

This is what MCP clients run. Logs go to stderr; set STAFFLINE_LOG_LEVEL=debug
in the client's server definition to trace tool calls.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			logger.Debug("configuration loaded",
				"path", ctx.configPath,
				"exists", ctx.configSeen,
				"build_time", BuildTime,
				"commit", GitCommit,
			)

			srv := server.New(cfg, logger)
			srv.SetVersion(Version)
			if err := srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}
