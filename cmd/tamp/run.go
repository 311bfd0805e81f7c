package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dd0wney/tamp-planner/pkg/config"
	"github.com/dd0wney/tamp-planner/pkg/evaluation"
	"github.com/dd0wney/tamp-planner/pkg/health"
	"github.com/dd0wney/tamp-planner/pkg/logging"
	"github.com/dd0wney/tamp-planner/pkg/metrics"
	"github.com/dd0wney/tamp-planner/pkg/planner"
	"github.com/dd0wney/tamp-planner/pkg/policy"
	"github.com/dd0wney/tamp-planner/pkg/pubsub"
	"github.com/dd0wney/tamp-planner/pkg/transport"
)

const systemMetricsInterval = 15 * time.Second

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the planner",
		Long: `Run the planning loop until interrupted or until --max-executions
instructions have been executed.

Policies: fcfs, priority, value_iteration`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if p, _ := cmd.Flags().GetString("policy"); p != "" {
				cfg.Planner.Policy = p
			}
			if cmd.Flags().Changed("max-executions") {
				cfg.Planner.MaxExecutions, _ = cmd.Flags().GetInt("max-executions")
			}
			if dir, _ := cmd.Flags().GetString("results"); dir != "" {
				cfg.Planner.ResultsDir = dir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runPlanner(ctx, cfg)
		},
	}
	cmd.Flags().StringP("policy", "p", "", "Scheduling policy (overrides config)")
	cmd.Flags().Int("max-executions", 0, "Stop after this many executions")
	cmd.Flags().String("results", "", "Directory for reward and done CSV files")
	return cmd
}

func runPlanner(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg)

	g, err := cfg.BuildGraph()
	if err != nil {
		return err
	}
	pol, err := policy.New(cfg.PolicyKind())
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	events := pubsub.NewPubSub()
	defer events.Shutdown()
	recorder := evaluation.NewRecorder(time.Now(), cfg.Planner.RewardStep)

	opts, err := transportOptions(cfg, log, reg)
	if err != nil {
		return err
	}

	var act planner.Actuator = planner.NewSleepActuator()
	if addr := cfg.Transport.ActuatorAddr; addr != "" {
		remote, err := transport.DialActuator(addr, cfg.Transport.ActuatorWarnEvery, opts)
		if err != nil {
			return err
		}
		defer remote.Close()
		act = remote
		log.Info("remote actuator connected", logging.String("addr", addr))
	}

	loop, err := planner.New(planner.Options{
		Graph:         g,
		Policy:        pol,
		Actuator:      act,
		Start:         cfg.StartNode(),
		TickPeriod:    cfg.Planner.TickPeriod,
		Events:        events,
		Metrics:       reg,
		Recorder:      recorder,
		Logger:        log,
		MaxExecutions: cfg.Planner.MaxExecutions,
	})
	if err != nil {
		return err
	}

	checker := health.NewHealthChecker()
	loopCheck := health.LoopCheck(loop.Health, loop.Executing, cfg.Server.StallAfter)
	checker.RegisterCheck("loop", loopCheck)
	checker.RegisterLivenessCheck("loop", loopCheck)
	checker.RegisterCheck("backlog", health.BacklogCheck(loop.Ledger().Len, cfg.Planner.BacklogThreshold))
	checker.RegisterCheck("memory", health.MemoryCheck(memoryUsage))

	if addr := cfg.Transport.FeedAddr; addr != "" {
		feed, err := transport.NewFeed(addr, loop, opts)
		if err != nil {
			return err
		}
		if err := feed.Start(); err != nil {
			return err
		}
		defer feed.Stop()

		probe := health.SocketCheck("feed", func() error {
			if !feed.Running() {
				return fmt.Errorf("feed on %s stopped", addr)
			}
			return nil
		})
		checker.RegisterCheck("feed", probe)
		checker.RegisterReadinessCheck("feed", probe)
	}

	if addr := cfg.Transport.PublishAddr; addr != "" {
		pub, err := transport.NewPublisher(addr, events, opts)
		if err != nil {
			return err
		}
		if err := pub.Start(ctx); err != nil {
			return err
		}
		defer pub.Stop()
	}

	if addr := cfg.Server.Addr; addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           newMux(reg, checker),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("http server listening", logging.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server error", logging.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	go func() {
		ticker := time.NewTicker(systemMetricsInterval)
		defer ticker.Stop()
		for {
			reg.UpdateSystemMetrics()
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	log.Info("planner starting",
		logging.Policy(string(pol.Kind())),
		logging.Node(int(cfg.StartNode())),
		logging.Duration("tick_period", cfg.Planner.TickPeriod),
		logging.Count(g.Len()))

	err = loop.Run(ctx)
	if errors.Is(err, planner.ErrDone) {
		err = nil
	}

	log.Info("planner stopped",
		logging.Tick(loop.Ticks()),
		logging.Int("executed", recorder.Count()),
		logging.Float64("accumulated_reward", recorder.Accumulated()),
		logging.Any("sequence", recorder.Sequence()))

	if dir := cfg.Planner.ResultsDir; dir != "" {
		paths, saveErr := recorder.SaveResults(dir, string(pol.Kind()))
		if saveErr != nil {
			log.Error("failed to save results", logging.Error(saveErr))
		} else {
			log.Info("results saved", logging.Any("files", paths))
		}
	}
	return err
}

func newMux(reg *metrics.Registry, checker *health.HealthChecker) *http.ServeMux {
	healthMux := http.NewServeMux()
	checker.Routes(healthMux)

	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.InstrumentHandler("/metrics",
		promhttp.HandlerFor(reg.GetPrometheusRegistry(), promhttp.HandlerOpts{})))
	mux.Handle("/health", reg.InstrumentHandler("/health", healthMux))
	mux.Handle("/health/", reg.InstrumentHandler("/health/", healthMux))
	return mux
}

func memoryUsage() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}
