package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/instruction"
	"github.com/dd0wney/tamp-planner/pkg/logging"
	"github.com/dd0wney/tamp-planner/pkg/motion"
	"github.com/dd0wney/tamp-planner/pkg/planner"
	"github.com/dd0wney/tamp-planner/pkg/transport"
)

const recentExecutions = 8

var (
	topTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	statusBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 2).
			MarginRight(2)

	recentBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(0, 2)

	topContentStyle = lipgloss.NewStyle().MarginLeft(2).MarginTop(1)
	topHelpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1).MarginLeft(2)
)

type topKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

func (k topKeyMap) ShortHelp() []key.Binding { return []key.Binding{k.Up, k.Down, k.Quit} }

func (k topKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var topKeys = topKeyMap{
	Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k", "up")),
	Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j", "down")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// topEventMsg is one frame received from the planner.
type topEventMsg struct {
	topic string
	body  json.RawMessage
}

// topModel is a live dashboard of one planner.
type topModel struct {
	events <-chan topEventMsg
	graph  *graph.Model

	table table.Model
	help  help.Model
	width int

	tick     uint64
	position motion.Position
	next     graph.Node
	pending  []instruction.Instruction
	recent   []planner.ExecutionRequest
	executed int
}

func newTopModel(g *graph.Model, events <-chan topEventMsg) topModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Destination", Width: 16},
			{Title: "Reward", Width: 8},
			{Title: "Beta", Width: 6},
			{Title: "Secs", Width: 6},
			{Title: "After", Width: 6},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	return topModel{events: events, graph: g, table: t, help: help.New()}
}

func waitForEvent(events <-chan topEventMsg) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return tea.Quit()
		}
		return ev
	}
}

func (m topModel) Init() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return waitForEvent(m.events)
}

func (m topModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, topKeys.Quit) {
			return m, tea.Quit
		}

	case topEventMsg:
		m.apply(msg)
		return m, m.Init()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *topModel) apply(ev topEventMsg) {
	switch ev.topic {
	case transport.TopicPosition:
		var u planner.PositionUpdate
		if json.Unmarshal(ev.body, &u) == nil {
			m.tick, m.position, m.next = u.Tick, u.Position, u.Next
		}
	case transport.TopicSnapshot:
		var s planner.Snapshot
		if json.Unmarshal(ev.body, &s) == nil {
			m.tick = s.Tick
			m.pending = s.Instructions
			m.table.SetRows(m.rows())
		}
	case transport.TopicExecution:
		var req planner.ExecutionRequest
		if json.Unmarshal(ev.body, &req) == nil {
			m.executed++
			m.recent = append([]planner.ExecutionRequest{req}, m.recent...)
			if len(m.recent) > recentExecutions {
				m.recent = m.recent[:recentExecutions]
			}
		}
	}
}

func (m topModel) nodeName(n graph.Node) string {
	if m.graph != nil && m.graph.Has(n) {
		return fmt.Sprintf("%s (%d)", m.graph.Name(n), n)
	}
	return strconv.Itoa(int(n))
}

func (m topModel) rows() []table.Row {
	rows := make([]table.Row, len(m.pending))
	for i, in := range m.pending {
		after := "-"
		if prev, ok := in.DependsOn(); ok {
			after = fmt.Sprint(prev)
		}
		rows[i] = table.Row{
			fmt.Sprint(in.ID),
			m.nodeName(in.Destination),
			strconv.FormatFloat(in.Reward, 'g', 4, 64),
			strconv.FormatFloat(in.Beta, 'g', 3, 64),
			strconv.FormatFloat(in.Duration, 'g', 4, 64),
			after,
		}
	}
	return rows
}

func (m topModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(topTitleStyle.Render("tamp planner"))
	s.WriteString("\n")

	where := "at " + m.nodeName(m.position.Node)
	if !m.position.Stable {
		where = fmt.Sprintf("moving %s, %d steps from %s", m.position.Label,
			m.position.StepsRemaining, m.nodeName(m.position.To))
	}
	status := fmt.Sprintf("Tick:      %d\nPosition:  %s\nNext:      %s\nPending:   %d\nExecuted:  %d",
		m.tick, where, m.nodeName(m.next), len(m.pending), m.executed)

	var recent strings.Builder
	recent.WriteString("Recent executions\n")
	if len(m.recent) == 0 {
		recent.WriteString("none yet")
	}
	for _, req := range m.recent {
		fmt.Fprintf(&recent, "#%d at %s tick %d\n", req.Instruction.ID, m.nodeName(req.Node), req.Tick)
	}

	s.WriteString(topContentStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		statusBoxStyle.Render(status),
		recentBoxStyle.Render(strings.TrimRight(recent.String(), "\n")))))
	s.WriteString("\n")
	s.WriteString(topContentStyle.Render(m.table.View()))
	s.WriteString("\n")
	s.WriteString(topHelpStyle.Render(m.help.ShortHelpView(topKeys.ShortHelp())))
	return s.String()
}

func topCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Live dashboard of a running planner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Transport.PublishAddr
			}
			g, err := cfg.BuildGraph()
			if err != nil {
				return err
			}
			opts, err := transportOptions(cfg, logging.NewNopLogger(), nil)
			if err != nil {
				return err
			}

			w, err := transport.DialWatcher(addr, nil, opts)
			if err != nil {
				return err
			}
			defer w.Stop()

			events := make(chan topEventMsg, 64)
			w.Start(func(topic string, body json.RawMessage) {
				// A later snapshot supersedes anything dropped here.
				select {
				case events <- topEventMsg{topic: topic, body: body}:
				default:
				}
			})

			p := tea.NewProgram(newTopModel(g, events), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Publish address (defaults to config)")
	return cmd
}
