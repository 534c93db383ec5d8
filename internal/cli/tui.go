package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lazydeps/pkg/depsgraph"
	apperr "github.com/matzehuels/lazydeps/pkg/errors"
	"github.com/matzehuels/lazydeps/pkg/graph"
	"github.com/matzehuels/lazydeps/pkg/manifest"
	"github.com/matzehuels/lazydeps/pkg/session"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listExistsStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

// State markers in the node list.
const (
	markExists    = "●"
	markAbsent    = "○"
	markUntracked = "◌"
)

// exploreCommand creates the explore command for the interactive TUI.
func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [manifest]",
		Short: "Interactively create and rebuild nodes",
		Long: `Interactively create and rebuild nodes.

Select a node and press e to ensure it exists or r to rebuild it. The
panel shows what a rebuild of the selected node would recreate and the
create and destroy calls of the last action.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(newExploreModel(m, g, session.New())).Run()
			return err
		},
	}
}

// =============================================================================
// exploreModel - Interactive node selection and lifecycle actions
// =============================================================================

// exploreModel is the bubbletea model of the explore command.
type exploreModel struct {
	manifest *manifest.Manifest
	graph    *manifest.Graph
	sess     *session.Session
	nodes    []depsgraph.NodeID

	cursor int
	offset int
	height int

	action string
	events []session.Event
	err    error
}

func newExploreModel(m *manifest.Manifest, g *manifest.Graph, sess *session.Session) exploreModel {
	return exploreModel{
		manifest: m,
		graph:    g,
		sess:     sess,
		nodes:    g.Nodes(),
		height:   15,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "e":
			m = m.apply("ensure", manifest.Ensure)
		case "r":
			m = m.apply("rebuild", manifest.Rebuild)
		case "x":
			m.sess.Reset()
			m.action, m.events, m.err = "reset", nil, nil
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-16, 5)
	}
	return m, nil
}

// apply runs fn on the selected node and keeps its events for display.
func (m exploreModel) apply(op string, fn func(*manifest.Graph, *session.Session, string) ([]session.Event, error)) exploreModel {
	name := m.selected()
	m.action = op + " " + name
	m.events, m.err = fn(m.graph, m.sess, name)
	return m
}

func (m exploreModel) selected() string {
	return m.graph.Name(m.nodes[m.cursor])
}

func (m exploreModel) View() string {
	var b strings.Builder

	title := m.manifest.Name
	if title == "" {
		title = "Explore"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  e ensure  r rebuild  x reset  q quit"))
	b.WriteString("\n\n")

	view := graph.DescribeState(m.graph, m.sess)
	end := min(m.offset+m.height, len(view.Nodes))
	for i := m.offset; i < end; i++ {
		n := view.Nodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		mark, markStyle := stateMark(n)
		line := fmt.Sprintf("%s%s %-20s %s", cursor, markStyle.Render(mark), n.ID, listDimStyle.Render(n.Tracking))
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.nodes))))
	b.WriteString("\n\n")

	if plan, err := graph.DescribePlan(m.graph, m.sess, m.nodes[m.cursor]); err == nil {
		b.WriteString(listDimStyle.Render("rebuild recreates: "))
		b.WriteString(StyleHighlight.Render(strings.Join(plan.Create, " → ")))
		b.WriteString("\n")
	}

	if m.action != "" {
		b.WriteString("\n")
		b.WriteString(StyleTitle.Render(m.action))
		b.WriteString("\n")
		if len(m.events) == 0 && m.err == nil {
			b.WriteString(listDimStyle.Render("  nothing to do"))
			b.WriteString("\n")
		}
		for _, ev := range m.events {
			b.WriteString("  " + formatEvent(ev) + "\n")
		}
		if m.err != nil {
			b.WriteString(styleIconError.Render(iconError+" "+apperr.UserMessage(m.err)) + "\n")
		}
	}

	return b.String()
}

func stateMark(n graph.Node) (string, lipgloss.Style) {
	switch {
	case n.Exists == nil:
		return markUntracked, listDimStyle
	case *n.Exists:
		return markExists, listExistsStyle
	default:
		return markAbsent, listNormalStyle
	}
}
