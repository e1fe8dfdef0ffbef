// cmd/mcp-server/main.go — Standalone HTTP MCP server for gograd
//
// Exposes gograd tools as an HTTP endpoint for AI agent frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server --port 8080
//
// Tool call endpoint: POST /tool
// Typed derivatives:  POST /derivatives
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Metrics endpoint:   GET  /metrics
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gograd/internal/ctxlog"
	"github.com/njchilds90/gograd/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := server.DefaultConfig()
	cmd := &cobra.Command{
		Use:           "mcp-server",
		Short:         "Serve gograd tools over HTTP",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := ctxlog.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting",
				"max_order", cfg.Limits.MaxOrder,
				"max_nodes", cfg.Limits.MaxNodes,
				"max_points", cfg.Limits.MaxPoints)
			if err := server.New(cfg, logger).Run(ctx); err != nil {
				logger.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Port, "port", cfg.Port, "Port to listen on")
	f.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "HTTP read timeout")
	f.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "HTTP write timeout")
	f.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", cfg.MaxBodyBytes, "Maximum request body size")
	f.IntVar(&cfg.Limits.MaxOrder, "max-order", cfg.Limits.MaxOrder, "Highest derivative order a call may request")
	f.IntVar(&cfg.Limits.MaxNodes, "max-nodes", cfg.Limits.MaxNodes, "Maximum expression graph size per call")
	f.IntVar(&cfg.Limits.MaxPoints, "max-points", cfg.Limits.MaxPoints, "Maximum points per check call")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	return cmd
}
