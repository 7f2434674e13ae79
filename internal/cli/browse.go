package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/typeshape/pkg/pipeline"
	"github.com/matzehuels/typeshape/pkg/render"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// DeclListModel - Interactive declaration selection
// =============================================================================

// DeclListModel is the bubbletea model for interactive declaration selection.
// Typing narrows the list to paths containing the typed text.
type DeclListModel struct {
	All      []declaration
	Visible  []declaration
	Filter   string
	Cursor   int
	Selected *declaration
	Height   int
	Offset   int
}

// NewDeclListModel creates a new declaration list model.
func NewDeclListModel(decls []declaration) DeclListModel {
	return DeclListModel{
		All:     decls,
		Visible: decls,
		Height:  15,
	}
}

func (m DeclListModel) Init() tea.Cmd {
	return nil
}

func (m DeclListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.Visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.Visible) == 0 {
				return m, nil
			}
			d := m.Visible[m.Cursor]
			m.Selected = &d
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Filter != "" {
				m.Filter = m.Filter[:len(m.Filter)-1]
				m.refilter()
			}
		case tea.KeyRunes:
			m.Filter += string(msg.Runes)
			m.refilter()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m *DeclListModel) refilter() {
	m.Visible = m.Visible[:0:0]
	needle := strings.ToLower(m.Filter)
	for _, d := range m.All {
		if strings.Contains(strings.ToLower(d.Path), needle) {
			m.Visible = append(m.Visible, d)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

func (m DeclListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Declaration"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ normalize  esc quit"))
	b.WriteString("\n")
	b.WriteString(StyleHighlight.Render("› ") + m.Filter)
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Visible) {
		end = len(m.Visible)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		d := m.Visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, d.Path, d.Kind, d.Type})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Declaration", "Kind", "Type").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 3 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(m.Visible) == 0 {
		b.WriteString(styleError.Render("  no matching declarations"))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Visible))))
	}

	return b.String()
}

// =============================================================================
// browse command
// =============================================================================

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var flags normalizeFlags

	cmd := &cobra.Command{
		Use:   "browse [project.json]",
		Short: "Pick a declaration interactively and normalize it",
		Long: `Browse the declarations of a documentation project in a filterable list.
The selected declaration is normalized and printed as a tree, or in the
formats given with --format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decls, err := loadDeclarations(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			if len(decls) == 0 {
				printWarning("Project has no declarations")
				return nil
			}

			final, err := tea.NewProgram(NewDeclListModel(decls), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			sel := final.(DeclListModel).Selected
			if sel == nil {
				return nil
			}

			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			flags.apply(cmd, &opts)
			if flags.formats == "" {
				opts.Formats = []string{render.FormatTree}
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runNormalize(cmd.Context(), args[0], sel.Path, opts, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

var _ tea.Model = DeclListModel{}
