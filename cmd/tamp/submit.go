package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/instruction"
	"github.com/dd0wney/tamp-planner/pkg/logging"
	"github.com/dd0wney/tamp-planner/pkg/transport"
)

// flushDelay gives a push socket time to hand off its frame before the
// process exits; closing drops anything still queued.
const flushDelay = 200 * time.Millisecond

type submitFlags struct {
	id          uint64
	destination int
	reward      float64
	beta        float64
	duration    float64
	after       int64
	function    int
	kind        int
	status      int
	source      string
	target      string
}

func (f submitFlags) instruction() (instruction.Instruction, error) {
	in := instruction.Instruction{
		ID:          instruction.ID(f.id),
		Destination: graph.Node(f.destination),
		Reward:      f.reward,
		Beta:        f.beta,
		Duration:    f.duration,
		Function:    f.function,
		Type:        f.kind,
		Status:      f.status,
		Source:      f.source,
		Target:      f.target,
		StartTime:   time.Now(),
	}
	if f.after >= 0 {
		in = in.After(instruction.ID(f.after))
	}
	if err := instruction.Validate(in); err != nil {
		return instruction.Instruction{}, err
	}
	return in, nil
}

// readBatch loads a YAML list of instructions.
func readBatch(path string) ([]instruction.Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	var ins []instruction.Instruction
	if err := yaml.Unmarshal(data, &ins); err != nil {
		return nil, fmt.Errorf("parse batch %s: %w", path, err)
	}
	for _, in := range ins {
		if err := instruction.Validate(in); err != nil {
			return nil, err
		}
	}
	return ins, nil
}

func submitCmd() *cobra.Command {
	var (
		f     submitFlags
		file  string
		addr  string
		batch []instruction.Instruction
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Push instructions to a running planner",
		Long: `Push one instruction built from flags, or a YAML list with --file.

Examples:
  tamp submit --id 1 --destination 6 --reward 10 --beta 0.9 --duration 3
  tamp submit --id 2 --destination 4 --reward 5 --beta 0.8 --after 1
  tamp submit --file batch.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if file != "" {
				batch, err = readBatch(file)
			} else {
				var in instruction.Instruction
				in, err = f.instruction()
				batch = []instruction.Instruction{in}
			}
			if err != nil {
				return err
			}

			return withSubmitter(addr, func(s *transport.Submitter) error {
				if err := s.Submit(batch...); err != nil {
					return err
				}
				for _, in := range batch {
					fmt.Fprintf(cmd.OutOrStdout(), "%s instruction %d -> node %d\n",
						color.GreenString("sent"), in.ID, in.Destination)
				}
				return nil
			})
		},
	}

	fl := cmd.Flags()
	fl.Uint64Var(&f.id, "id", 0, "Instruction id")
	fl.IntVar(&f.destination, "destination", 0, "Destination node")
	fl.Float64VarP(&f.reward, "reward", "r", 1, "Reward")
	fl.Float64VarP(&f.beta, "beta", "b", 0.9, "Discount factor in (0,1)")
	fl.Float64VarP(&f.duration, "duration", "d", 0, "Execution time in seconds")
	fl.Int64Var(&f.after, "after", -1, "Only run after this instruction id has executed")
	fl.IntVar(&f.function, "function", 0, "Function code")
	fl.IntVar(&f.kind, "type", 0, "Type code")
	fl.IntVar(&f.status, "status", 0, "Status code")
	fl.StringVar(&f.source, "source", "", "Source label")
	fl.StringVar(&f.target, "target", "", "Target label")
	fl.StringVarP(&file, "file", "f", "", "YAML list of instructions")
	fl.StringVar(&addr, "addr", "", "Feed address (defaults to config)")
	return cmd
}

func withdrawCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "withdraw <id>...",
		Short: "Drop pending instructions from a running planner",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withSubmitter(addr, func(s *transport.Submitter) error {
				if err := s.Withdraw(ids...); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", color.YellowString("withdrawn"), ids)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Feed address (defaults to config)")
	return cmd
}

func parseIDs(args []string) ([]instruction.ID, error) {
	ids := make([]instruction.ID, 0, len(args))
	for _, a := range args {
		n, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid instruction id %q", a)
		}
		ids = append(ids, instruction.ID(n))
	}
	return ids, nil
}

func withSubmitter(addr string, fn func(*transport.Submitter) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Transport.FeedAddr
	}
	opts, err := transportOptions(cfg, logging.NewNopLogger(), nil)
	if err != nil {
		return err
	}

	s, err := transport.DialSubmitter(addr, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(s); err != nil {
		return err
	}
	time.Sleep(flushDelay)
	return nil
}
