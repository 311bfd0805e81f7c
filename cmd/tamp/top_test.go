package main

import (
	"encoding/json"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/tamp-planner/pkg/config"
	"github.com/dd0wney/tamp-planner/pkg/instruction"
	"github.com/dd0wney/tamp-planner/pkg/motion"
	"github.com/dd0wney/tamp-planner/pkg/planner"
)

func sendEvent(t *testing.T, m tea.Model, topic string, v any) tea.Model {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	m, _ = m.Update(topEventMsg{topic: topic, body: body})
	return m
}

func TestTopModel(t *testing.T) {
	g, err := config.Default().BuildGraph()
	require.NoError(t, err)

	var m tea.Model = newTopModel(g, nil)
	assert.Equal(t, "Initializing...", m.View())

	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = sendEvent(t, m, "snapshot", planner.Snapshot{
		Tick: 3, Reason: "arrival",
		Instructions: []instruction.Instruction{
			{ID: 1, Destination: 6, Reward: 10, Beta: 0.9},
			(instruction.Instruction{ID: 2, Destination: 1, Reward: 5, Beta: 0.5}).After(1),
		},
	})
	m = sendEvent(t, m, "position", planner.PositionUpdate{
		Tick: 4, Next: 3,
		Position: motion.Position{Stable: true, Node: 2, From: 2, To: 2, Label: "2"},
	})
	for i := 0; i < recentExecutions+2; i++ {
		m = sendEvent(t, m, "execution", planner.ExecutionRequest{
			Tick: uint64(5 + i), Node: 6,
			Instruction: instruction.Instruction{ID: instruction.ID(10 + i)},
		})
	}

	top := m.(topModel)
	assert.Equal(t, uint64(4), top.tick)
	assert.Len(t, top.pending, 2)
	assert.Equal(t, recentExecutions+2, top.executed)
	require.Len(t, top.recent, recentExecutions)
	assert.Equal(t, instruction.ID(10+recentExecutions+1), top.recent[0].Instruction.ID)

	rows := top.rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "diningroom (6)", rows[0][1])
	assert.Equal(t, "1", rows[1][5])

	view := m.View()
	assert.Contains(t, view, "at charge (2)")
	assert.Contains(t, view, "alley1 (3)")
}

func TestTopModelQuit(t *testing.T) {
	m := newTopModel(nil, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTopModelIgnoresMalformedEvents(t *testing.T) {
	m := newTopModel(nil, nil)
	next, _ := m.Update(topEventMsg{topic: "snapshot", body: json.RawMessage(`{`)})
	assert.Empty(t, next.(topModel).pending)
	assert.Equal(t, "7", next.(topModel).nodeName(7))
}
