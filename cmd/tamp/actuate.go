package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/tamp-planner/pkg/planner"
	"github.com/dd0wney/tamp-planner/pkg/transport"
)

const defaultActuatorAddr = "tcp://127.0.0.1:40901"

// simulatedActuator waits scale times the instruction duration.
func simulatedActuator(scale float64) planner.ActuatorFunc {
	return func(ctx context.Context, req planner.ExecutionRequest) error {
		d := time.Duration(float64(req.Instruction.ExecutionTime()) * scale)
		if d <= 0 {
			return nil
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func actuateCmd() *cobra.Command {
	var (
		addr  string
		scale float64
	)
	cmd := &cobra.Command{
		Use:   "actuate",
		Short: "Serve execution requests with a simulated actor",
		Long: `Listen for execution requests and complete each one after its
duration, scaled by --scale. Point the planner's actuator_addr here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Transport.ActuatorAddr
			}
			if addr == "" {
				addr = defaultActuatorAddr
			}
			log := newLogger(cfg)
			opts, err := transportOptions(cfg, log, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := transport.NewActuatorServer(addr, simulatedActuator(scale), opts)
			if err != nil {
				return err
			}
			if err := srv.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return srv.Stop()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (defaults to config actuator_addr, then "+defaultActuatorAddr+")")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Multiplier applied to every duration")
	return cmd
}
