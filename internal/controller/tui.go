package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "probe.dev/pkg/probe/internal/model"
)

// reservedLines is the number of screen lines used around the table body:
// title box (3), summary (2), table header (2) and help line (2).
const reservedLines = 9

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
	summaryStyle = lipgloss.NewStyle().Faint(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// TUI implements UI using Bubble Tea for interactive display. Structured
// formats and results that fit on one screen are handed to the SimpleUI.
type TUI struct {
	output io.Writer
	simple *SimpleUI
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer, simple *SimpleUI) *TUI {
	return &TUI{output: output, simple: simple}
}

// DisplayTargets shows the debug targets in a scrollable table.
func (p *TUI) DisplayTargets(ctx context.Context, targets []m.DebugTarget, options ...DisplayOption) error {
	config := newDisplayConfig(options)
	if config.format != FormatTable {
		return p.simple.DisplayTargets(ctx, targets, options...)
	}

	rows := buildTargetRows(targets)
	columns := []table.Column{
		{Title: "File", Width: 36},
		{Title: "Contract", Width: 20},
		{Title: "Function", Width: 28},
		{Title: "Visibility", Width: 10},
		{Title: "Lines", Width: 9},
	}

	tableRows := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		tableRows = append(tableRows, table.Row{
			row.File,
			row.Contract,
			row.Function,
			string(row.Visibility),
			fmt.Sprintf("%d-%d", row.StartLine, row.EndLine),
		})
	}

	summary := fmt.Sprintf("%d debug target(s) in %d file(s)", len(rows), countFiles(rows))

	return p.run(ctx, newPagerModel("Probe - Debug Targets", summary, columns, tableRows), func() error {
		return p.simple.DisplayTargets(ctx, targets, options...)
	})
}

// DisplaySourceMap shows decoded source map entries in a scrollable table.
func (p *TUI) DisplaySourceMap(ctx context.Context, entries []m.SourceMapEntry, options ...DisplayOption) error {
	config := newDisplayConfig(options)
	if config.format != FormatTable {
		return p.simple.DisplaySourceMap(ctx, entries, options...)
	}

	columns := []table.Column{
		{Title: "#", Width: 6},
		{Title: "Offset", Width: 8},
		{Title: "Length", Width: 8},
		{Title: "File", Width: 5},
		{Title: "Jump", Width: 5},
		{Title: "Modifier", Width: 8},
		{Title: "Position", Width: 10},
	}

	tableRows := make([]table.Row, 0, len(entries))
	for _, entry := range entries {
		position := ""
		if entry.Position != nil {
			position = fmt.Sprintf("%d:%d", entry.Position.Line, entry.Position.Column)
		}

		tableRows = append(tableRows, table.Row{
			strconv.Itoa(entry.Index),
			strconv.Itoa(entry.Offset),
			strconv.Itoa(entry.Length),
			strconv.Itoa(entry.File),
			entry.Jump,
			strconv.Itoa(entry.ModifierDepth),
			position,
		})
	}

	summary := fmt.Sprintf("%d source map entries", len(entries))

	return p.run(ctx, newPagerModel("Probe - Source Map", summary, columns, tableRows), func() error {
		return p.simple.DisplaySourceMap(ctx, entries, options...)
	})
}

func (p *TUI) run(ctx context.Context, model pagerModel, fallback func() error) error {
	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model = model.resize(width, height)
		}
	}

	// If list is small, just print and exit
	if !model.needsPagination() {
		return fallback()
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// pagerModel is a read-only scrollable table.
type pagerModel struct {
	title    string
	summary  string
	table    table.Model
	rows     int
	height   int
	width    int
	quitting bool
}

func newPagerModel(title, summary string, columns []table.Column, rows []table.Row) pagerModel {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return pagerModel{
		title:   title,
		summary: summary,
		table:   t,
		rows:    len(rows),
	}
}

func (pm pagerModel) resize(width, height int) pagerModel {
	pm.width = width
	pm.height = height

	bodyHeight := height - reservedLines
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	pm.table.SetHeight(bodyHeight)

	if width > 0 {
		pm.table.SetWidth(width)
	}

	return pm
}

// needsPagination reports whether the rows overflow the terminal.
func (pm pagerModel) needsPagination() bool {
	if pm.height == 0 {
		return false
	}

	return pm.rows+reservedLines > pm.height
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return pm.resize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			pm.quitting = true
			return pm, tea.Quit
		}
	}

	var cmd tea.Cmd

	pm.table, cmd = pm.table.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	if pm.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(pm.title))
	b.WriteString("\n")
	b.WriteString(summaryStyle.Render(pm.summary))
	b.WriteString("\n\n")
	b.WriteString(pm.table.View())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s", helpStyle.Render(
		fmt.Sprintf("row %d/%d  ↑/k up  ↓/j down  g/G top/bottom  q quit", pm.table.Cursor()+1, pm.rows),
	))

	return b.String()
}
