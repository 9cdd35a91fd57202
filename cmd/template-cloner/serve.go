package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/template-cloner/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Starts a Model Context Protocol server speaking JSON-RPC 2.0 over stdio.
Configure it as a command in your MCP client. Edits to the config file are
picked up without a restart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(a.mgr.Get(), a.logger, Version)
			a.mgr.OnChange(srv.SetConfig)
			if a.mgr.ConfigFileUsed() != "" {
				a.mgr.WatchConfig()
			}

			a.logger.Info("mcp server started", "version", Version)
			return srv.Run(cmd.Context())
		},
	}
}
