package main

import (
	"github.com/cockroachdb/errors"
	"github.com/ironsheep/docscan-mcp/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP tools over stdin/stdout (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if Version != "dev" {
		server.Version = Version
	}
	logger.Infow("docscan-mcp starting",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit)

	srv := server.New(cfg, logger)
	if err := srv.Serve(); err != nil {
		return errors.Wrap(err, "server error")
	}
	return nil
}
