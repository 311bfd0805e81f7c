// Package main provides the tamp command: the task and motion planner
// service plus tools to feed, watch and actuate a running planner.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/tamp-planner/pkg/config"
	"github.com/dd0wney/tamp-planner/pkg/logging"
	"github.com/dd0wney/tamp-planner/pkg/metrics"
	"github.com/dd0wney/tamp-planner/pkg/transport"
)

var (
	version    = "0.1.0"
	configPath string
	logLevel   string
	pretty     = true
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tamp",
		Short: "Task and motion planner for a single mobile actor",
		Long: `tamp moves one actor over a weighted map, serving instructions that
arrive over the feed socket and reporting its state on the publish socket.

Usage:
  tamp run                 Start the planner
  tamp submit ...          Push an instruction to a running planner
  tamp withdraw <id>...    Drop pending instructions
  tamp actuate             Serve execution requests with a simulated actor
  tamp watch               Follow published state
  tamp top                 Live dashboard
  tamp distances           Print the shortest distance matrix`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults built in)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the log level")
	root.PersistentFlags().BoolVar(&pretty, "pretty", true, "Colored output")

	root.AddCommand(
		runCmd(),
		submitCmd(),
		withdrawCmd(),
		actuateCmd(),
		watchCmd(),
		distancesCmd(),
		topCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tamp %s\n", version)
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewJSONLogger(os.Stderr, cfg.LogLevel())
}

func transportOptions(cfg *config.Config, log logging.Logger, reg *metrics.Registry) (transport.Options, error) {
	factory, err := transport.NewSocketFactory(transport.Kind(cfg.Transport.FeedKind))
	if err != nil {
		return transport.Options{}, err
	}
	return transport.Options{
		Factory: factory,
		Codec:   transport.Codec{Compress: cfg.Transport.Compress},
		Logger:  log,
		Metrics: reg,
	}, nil
}
