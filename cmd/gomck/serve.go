package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"gomck/framework"
	"gomck/runner"
	"gomck/service"
)

func newServeCmd(a *app) *cobra.Command {
	var flags systemFlags
	cmd := &cobra.Command{
		Use:   "serve [system]",
		Short: "Serve verification of a system over gRPC",
		Long: `Starts the verification service for the system on the configured
address. Verification steps are started with the step command and followed
with the status command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			system, err := newSystem(args[0], flags)
			if err != nil {
				return err
			}
			lis, err := net.Listen("tcp", a.cfg.Service.Address)
			if err != nil {
				return err
			}

			r := runner.New(framework.New(system, a.cfg.FrameworkOptions(a.logger)...), a.logger)
			r.Start()
			defer r.Stop()
			srv := service.NewGrpcServer(service.NewServer(r, a.logger), a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			go func() {
				<-ctx.Done()
				srv.GracefulStop()
			}()

			a.logger.Info("Serving verification", zap.String("system", args[0]), zap.String("address", lis.Addr().String()))
			return srv.Serve(lis)
		},
	}
	flags.register(cmd)
	return cmd
}

// Connects to the configured service and calls it with the client.
func withClient(a *app, cmd *cobra.Command, call func(ctx context.Context, client *service.Client) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	conn, err := grpc.DialContext(ctx, a.cfg.Service.Address,
		grpc.WithBlock(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to %v: %w", a.cfg.Service.Address, err)
	}
	defer conn.Close()
	return call(ctx, service.NewClient(conn))
}

func newStepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "step [property]",
		Short: "Start verification steps on the service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(a, cmd, func(ctx context.Context, client *service.Client) error {
				id, err := client.Step(ctx, args[0], a.cfg.Verification.MaxRefinements)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Started run %v\n", id)
				return nil
			})
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of the last verification on the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(a, cmd, func(ctx context.Context, client *service.Client) error {
				report, err := client.Status(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), report)
				if reset {
					return client.Reset(ctx)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "discard the state space after showing the status")
	return cmd
}
