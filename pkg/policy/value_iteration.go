package policy

import (
	"math"

	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/instruction"
	"github.com/dd0wney/tamp-planner/pkg/motion"
)

// valueIteration is a one-step greedy lookahead: it scores each possible
// next step by the discounted reward of all eligible instructions as seen
// from the resulting position. It does not iterate to convergence.
type valueIteration struct{}

// Score is the lookahead value of stepping toward Direction.
type Score struct {
	Direction graph.Node
	Value     float64
}

func (*valueIteration) Kind() Kind { return ValueIteration }

func (v *valueIteration) DecideNextNode(s State) (graph.Node, error) {
	if n, ok := serveLocally(s); ok {
		return n, nil
	}
	scores, err := v.Scores(s)
	if err != nil {
		return hold(s), err
	}
	if len(scores) == 0 {
		return hold(s), nil
	}

	best := scores[0]
	for _, sc := range scores[1:] {
		if sc.Value > best.Value {
			best = sc
		}
	}
	return best.Direction, nil
}

// Scores evaluates every direction in ascending node order. It returns no
// scores when no instruction is eligible.
func (*valueIteration) Scores(s State) ([]Score, error) {
	eligible := s.Ledger.Eligible()
	if len(eligible) == 0 {
		return nil, nil
	}

	dirs := s.Progress.Directions(s.Graph)
	scores := make([]Score, 0, len(dirs))
	for _, dir := range dirs {
		cand, err := motion.ComputeCandidate(s.Graph, s.Progress, dir)
		if err != nil {
			return nil, err
		}
		reach := cand.Reachable(s.Graph)

		total := 0.0
		for _, in := range eligible {
			total += discount(in, stepsFrom(s.Graph, reach, in.Destination))
		}
		scores = append(scores, Score{Direction: dir, Value: total})
	}
	return scores, nil
}

func (*valueIteration) SelectForExecution(ready []instruction.Instruction) (instruction.Instruction, bool) {
	return maxReward(ready)
}

func stepsFrom(g *graph.Model, reach []motion.Reach, dest graph.Node) int {
	best := math.MaxInt
	for _, r := range reach {
		if d := g.ShortestDistance(dest, r.Node) + r.Steps; d < best {
			best = d
		}
	}
	return best
}

// discount computes r * beta^d in log space so long horizons do not
// underflow before the multiplication.
func discount(in instruction.Instruction, d int) float64 {
	return math.Exp(math.Log(in.Reward) + float64(d)*math.Log(in.Beta))
}

var _ Policy = (*valueIteration)(nil)
