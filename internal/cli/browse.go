package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clonetree/pkg/phylo"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command, an interactive view of the
// ranked trees and their per-sample lineages.
func (c *CLI) browseCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "Page through ranked lineage trees interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, runner, err := c.execute(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			defer runner.Close()

			model := NewTreeBrowser(res.Trees, res.Report.Samples, res.Graph.SampleCount())
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// =============================================================================
// TreeBrowser - Interactive ranked tree view
// =============================================================================

// TreeBrowser is the bubbletea model listing ranked trees next to the
// lineage of the selected tree in one sample.
type TreeBrowser struct {
	Trees   []*phylo.Tree
	Samples []string
	Cursor  int // selected tree
	Sample  int // selected sample
	Height  int // visible list rows
	Offset  int

	samples int
}

// NewTreeBrowser creates a browser over trees ranked best first.
func NewTreeBrowser(trees []*phylo.Tree, names []string, samples int) TreeBrowser {
	return TreeBrowser{
		Trees:   trees,
		Samples: names,
		Height:  10,
		samples: samples,
	}
}

func (m TreeBrowser) Init() tea.Cmd {
	return nil
}

func (m TreeBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Trees)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "left", "h":
			if m.Sample > 0 {
				m.Sample--
			}
		case "right", "l", "tab":
			if m.Sample < m.samples-1 {
				m.Sample++
			}
		}
	case tea.WindowSizeMsg:
		// Leave room for the title, help line and a lineage pane.
		m.Height = msg.Height/2 - 6
		if m.Height < 3 {
			m.Height = 3
		}
	}
	return m, nil
}

func (m TreeBrowser) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Ranked lineage trees"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ tree  ←/→ sample  q quit"))
	b.WriteString("\n\n")

	if len(m.Trees) == 0 {
		b.WriteString(listDimStyle.Render("  no valid trees"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Trees))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		t := m.Trees[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(i + 1),
			strconv.FormatFloat(t.ErrorScore(), 'f', 4, 64),
			strconv.Itoa(t.NodeCount() - 1),
			strconv.Itoa(treeDepth(t)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Rank", "Score", "Clones", "Depth").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Trees))))
	b.WriteString("\n\n")

	selected := m.Trees[m.Cursor]
	name := m.sampleName(m.Sample)
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Sample %s (%d/%d)", name, m.Sample+1, m.samples)))
	b.WriteString("\n")
	b.WriteString(selected.Lineage(m.Sample, name))

	return b.String()
}

func (m TreeBrowser) sampleName(i int) string {
	if i < len(m.Samples) && m.Samples[i] != "" {
		return m.Samples[i]
	}
	return "sample " + strconv.Itoa(i)
}

// treeDepth returns the longest root-to-node path of t in edges.
func treeDepth(t *phylo.Tree) int {
	depth := 0
	for _, n := range t.Nodes() {
		depth = max(depth, t.Depth(n))
	}
	return depth
}
