// Package historyui provides the Bubble Tea run history browser.
package historyui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/report"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// Source is the part of the store the browser reads from.
type Source interface {
	ListRuns(ctx context.Context, filter model.HistoryFilter) ([]model.Run, error)
	GetRun(ctx context.Context, id int64) (model.Run, []model.Candidate, error)
}

// Model implements the Bubble Tea history UI.
type Model struct {
	src    Source
	filter model.HistoryFilter

	runs   []model.Run
	errMsg string

	table  table.Model
	detail viewport.Model

	showDetail bool

	filterMode  bool
	filterInput textinput.Model

	width  int
	height int
}

// NewModel constructs a history browser and loads the first page of runs.
func NewModel(src Source, filter model.HistoryFilter) *Model {
	m := &Model{
		src:    src,
		filter: filter,
		detail: viewport.New(0, 0),
	}
	m.table = table.New(
		table.WithColumns(runColumns(0)),
		table.WithFocused(true),
		table.WithHeight(1),
	)
	m.table.SetStyles(tableStyles())

	m.filterInput = textinput.New()
	m.filterInput.Prompt = "Cipher: "
	m.filterInput.Placeholder = "caesar, vigenere, ... (empty for all)"
	m.filterInput.Cursor.SetMode(cursor.CursorBlink)

	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.showDetail {
			switch msg.String() {
			case "esc", "q", "backspace":
				m.showDetail = false
				return m, nil
			}
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "/":
			m.filterMode = true
			m.filterInput.SetValue(string(m.filter.Cipher))
			return m, m.filterInput.Focus()
		case "enter":
			m.openDetail()
			return m, nil
		case "r":
			m.refresh()
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.filterInput.Value())
		if value == "" {
			m.filter.Cipher = ""
		} else {
			c, err := model.ParseCipher(value)
			if err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.filter.Cipher = c
		}
		m.filterMode = false
		m.filterInput.Blur()
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	bodyHeight := max(1, m.height-2)
	var body string
	if m.showDetail {
		body = m.detail.View()
	} else {
		body = m.table.View()
	}
	return strings.Join([]string{
		fitLines(m.renderHeader(), m.width, 1),
		fitLines(body, m.width, bodyHeight),
		fitLines(m.renderFooter(), m.width, 1),
	}, "\n")
}

func (m *Model) renderHeader() string {
	scope := "all ciphers"
	if m.filter.Cipher != "" {
		scope = string(m.filter.Cipher)
	}
	return titleStyle.Render("History") + headerStyle.Render(fmt.Sprintf("  %d runs · %s", len(m.runs), scope))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.filterInput.View()
	}
	if m.errMsg != "" {
		return errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	if m.showDetail {
		return headerStyle.Render("↑/↓ scroll · esc back")
	}
	return headerStyle.Render("↑/↓ select · enter details · / filter · r reload · q quit")
}

func (m *Model) refresh() {
	runs, err := m.src.ListRuns(context.Background(), m.filter)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load runs: %v", err)
		return
	}
	m.errMsg = ""
	m.runs = runs
	rows := make([]table.Row, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		rows = append(rows, table.Row(report.RunRow(runs[i])))
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m *Model) selectedRun() (model.Run, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.runs) {
		return model.Run{}, false
	}
	return m.runs[len(m.runs)-1-idx], true
}

func (m *Model) openDetail() {
	run, ok := m.selectedRun()
	if !ok {
		return
	}
	full, candidates, err := m.src.GetRun(context.Background(), run.ID)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load run %d: %v", run.ID, err)
		return
	}
	m.detail.SetContent(renderDetail(full, candidates, m.width))
	m.detail.GotoTop()
	m.showDetail = true
}

func renderDetail(run model.Run, candidates []model.Candidate, width int) string {
	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(runewidth.FillRight(label, 10)), value)
	}
	field("Run", fmt.Sprintf("%d", run.ID))
	field("When", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	field("Operation", string(run.Operation))
	field("Cipher", string(run.Cipher))
	field("Key", run.Key)
	if run.KeyLength > 0 {
		field("Length", fmt.Sprintf("%d", run.KeyLength))
	}
	if run.Operation == model.OpCrack && !run.Cipher.Binary() {
		field("Score", fmt.Sprintf("%.4f", run.Score))
	}
	field("Input", fmt.Sprintf("%d bytes", run.InputSize))
	if run.InputDigest != "" {
		field("Digest", run.InputDigest)
	}
	field("Duration", fmt.Sprintf("%d ms", run.DurationMs))
	if len(candidates) > 0 {
		b.WriteString("\n" + titleStyle.Render("Candidates") + "\n")
		for _, c := range candidates {
			fmt.Fprintf(&b, "%3d  %-16s %10.4f\n", c.Rank, c.Label, c.Score)
		}
	}
	b.WriteString("\n" + titleStyle.Render("Output") + "\n")
	wrapWidth := width
	if wrapWidth <= 0 {
		wrapWidth = 80
	}
	b.WriteString(lipgloss.NewStyle().Width(wrapWidth).Render(run.Output))
	return b.String()
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	bodyHeight := max(1, m.height-2)
	m.table.SetColumns(runColumns(m.width))
	m.table.SetWidth(m.width)
	m.table.SetHeight(bodyHeight)
	m.detail.Width = m.width
	m.detail.Height = bodyHeight
	m.filterInput.Width = max(10, m.width-lipgloss.Width(m.filterInput.Prompt)-2)
}

func runColumns(width int) []table.Column {
	cols := []table.Column{
		{Title: report.RunHeaders[0], Width: 5},
		{Title: report.RunHeaders[1], Width: 19},
		{Title: report.RunHeaders[2], Width: 7},
		{Title: report.RunHeaders[3], Width: 14},
		{Title: report.RunHeaders[4], Width: 16},
		{Title: report.RunHeaders[5], Width: 8},
		{Title: report.RunHeaders[6], Width: 20},
	}
	used := 0
	for _, c := range cols[:len(cols)-1] {
		used += c.Width + 1
	}
	if width > used+20 {
		cols[len(cols)-1].Width = width - used - 1
	}
	return cols
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

// Run starts the browser on the alternate screen.
func Run(m *Model) error {
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run history browser: %w", err)
	}
	return nil
}
