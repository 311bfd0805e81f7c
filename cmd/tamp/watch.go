package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dd0wney/tamp-planner/pkg/logging"
	"github.com/dd0wney/tamp-planner/pkg/transport"
)

func watchCmd() *cobra.Command {
	var (
		addr   string
		topics []string
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a planner's published state",
		Long: `Subscribe to the planner's publish socket and print every event.

Topics: snapshot, position, execution (all by default)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Transport.PublishAddr
			}
			opts, err := transportOptions(cfg, logging.NewNopLogger(), nil)
			if err != nil {
				return err
			}

			w, err := transport.DialWatcher(addr, topics, opts)
			if err != nil {
				return err
			}
			defer w.Stop()

			r := renderer{pretty: pretty}
			out := cmd.OutOrStdout()
			w.Start(func(topic string, body json.RawMessage) {
				if raw {
					fmt.Fprintf(out, "%s %s\n", topic, body)
					return
				}
				fmt.Fprintln(out, r.event(topic, body))
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Publish address (defaults to config)")
	cmd.Flags().StringSliceVarP(&topics, "topic", "t", nil, "Topics to follow")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON bodies unformatted")
	return cmd
}
