package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"videothingy/media-pipeline/internal/rpc"
)

func newJobCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "job <id>",
		Short: "Show the status record of an asynchronous job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.logger(os.Stderr)
			if err != nil {
				return err
			}
			store, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderJobTable(rec))
			return nil
		},
	}
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var addr string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Query the gRPC health service of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.GRPCAddr
			}
			if addr == "" {
				return fmt.Errorf("no gRPC address: pass --addr or set grpc_addr")
			}
			log, err := ctx.logger(os.Stderr)
			if err != nil {
				return err
			}

			client, err := rpc.NewHealthClient(addr, log)
			if err != nil {
				return err
			}
			defer client.Close()

			checkCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			status, err := client.Check(checkCtx)
			if err != nil {
				return fmt.Errorf("health check %s: %w", addr, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), status.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "gRPC address (defaults to grpc_addr)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Health check timeout")
	return cmd
}
