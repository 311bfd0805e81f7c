package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/instruction"
	"github.com/dd0wney/tamp-planner/pkg/planner"
	"github.com/dd0wney/tamp-planner/pkg/transport"
)

// renderer formats planner output for the terminal.
type renderer struct {
	pretty bool
}

func (r renderer) paint(c func(string, ...any) string, s string) string {
	if !r.pretty {
		return s
	}
	return c("%s", s)
}

// event formats one published frame as a single line.
func (r renderer) event(topic string, body json.RawMessage) string {
	switch topic {
	case transport.TopicPosition:
		var u planner.PositionUpdate
		if err := json.Unmarshal(body, &u); err != nil {
			break
		}
		state := "at"
		if !u.Position.Stable {
			state = "moving"
		}
		return fmt.Sprintf("%s tick %d %s %s next=%d",
			r.paint(color.CyanString, "position"), u.Tick, state, u.Position.Label, u.Next)

	case transport.TopicSnapshot:
		var s planner.Snapshot
		if err := json.Unmarshal(body, &s); err != nil {
			break
		}
		return fmt.Sprintf("%s tick %d %s pending=%s",
			r.paint(color.YellowString, "snapshot"), s.Tick, s.Reason, ids(s.Instructions))

	case transport.TopicExecution:
		var req planner.ExecutionRequest
		if err := json.Unmarshal(body, &req); err != nil {
			break
		}
		return fmt.Sprintf("%s tick %d instruction %d at node %d for %.1fs",
			r.paint(color.GreenString, "execute"), req.Tick, req.Instruction.ID, req.Node, req.Instruction.Duration)
	}
	return fmt.Sprintf("%s %s", r.paint(color.HiBlackString, topic), string(body))
}

func ids(ins []instruction.Instruction) string {
	parts := make([]string, len(ins))
	for i, in := range ins {
		parts[i] = fmt.Sprint(in.ID)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// distances formats the all-pairs shortest distance matrix.
func (r renderer) distances(g *graph.Model) string {
	nodes := g.Nodes()
	var sb strings.Builder

	sb.WriteString(r.paint(color.HiBlackString, fmt.Sprintf("%4s", "")))
	for _, n := range nodes {
		sb.WriteString(r.paint(color.HiBlackString, fmt.Sprintf("%4d", n)))
	}
	sb.WriteString("\n")

	for _, a := range nodes {
		sb.WriteString(r.paint(color.HiBlackString, fmt.Sprintf("%4d", a)))
		for _, b := range nodes {
			fmt.Fprintf(&sb, "%4d", g.ShortestDistance(a, b))
		}
		fmt.Fprintf(&sb, "  %s\n", g.Name(a))
	}
	return sb.String()
}

// path formats a shortest path with node names and its length.
func (r renderer) path(g *graph.Model, from, to graph.Node) string {
	hops := g.ShortestPath(from, to)
	names := make([]string, len(hops))
	for i, n := range hops {
		names[i] = fmt.Sprintf("%s(%d)", g.Name(n), n)
	}
	return fmt.Sprintf("%s %s  %s",
		r.paint(color.CyanString, "path"),
		strings.Join(names, " -> "),
		r.paint(color.HiBlackString, fmt.Sprintf("%d steps", g.ShortestDistance(from, to))))
}
