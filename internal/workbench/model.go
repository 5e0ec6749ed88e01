// Package workbench provides the Bubble Tea crib-dragging interface.
package workbench

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	resolvedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	unprintable     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	activeRowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	gutterStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	defaultMaskRune = '·'
)

// Model implements the Bubble Tea workbench. Each row is one ciphertext
// decrypted with the working key; typing a character at the cursor fixes the
// key byte that makes that row show it.
type Model struct {
	ciphertexts [][]byte
	key         []byte
	resolved    []bool

	row    int
	col    int
	offset int

	width  int
	height int
	rows   viewport.Model

	cribMode  bool
	cribInput textinput.Model
	status    string

	done    bool
	aborted bool
}

// NewModel builds a workbench seeded with a recovered key. The key is
// extended with unresolved bytes up to the longest ciphertext.
func NewModel(ciphertexts [][]byte, key []byte, resolved []bool) *Model {
	longest := 0
	for _, c := range ciphertexts {
		longest = max(longest, len(c))
	}
	m := &Model{
		ciphertexts: ciphertexts,
		key:         make([]byte, max(longest, len(key))),
		resolved:    make([]bool, max(longest, len(key))),
		rows:        viewport.New(0, 0),
	}
	copy(m.key, key)
	copy(m.resolved, resolved)

	m.cribInput = textinput.New()
	m.cribInput.Prompt = "Crib: "
	m.cribInput.Placeholder = " the "
	m.cribInput.CharLimit = len(m.key)
	m.cribInput.Cursor.SetMode(cursor.CursorBlink)
	m.refreshRows()
	return m
}

// Result returns the edited key. ok is false when the user aborted.
func (m *Model) Result() (key []byte, resolved []bool, ok bool) {
	return m.key, m.resolved, m.done && !m.aborted
}

// Run starts the workbench on the alternate screen and blocks until exit.
func Run(m *Model) error {
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run workbench: %w", err)
	}
	return nil
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
			m.aborted = true
			return m, tea.Quit
		}
		if m.cribMode {
			return m.updateCrib(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlS:
		m.done = true
		return m, tea.Quit
	case tea.KeyCtrlF:
		m.cribMode = true
		m.status = ""
		m.cribInput.SetValue("")
		return m, m.cribInput.Focus()
	case tea.KeyLeft:
		m.moveCursor(0, -1)
	case tea.KeyRight:
		m.moveCursor(0, 1)
	case tea.KeyUp:
		m.moveCursor(-1, 0)
	case tea.KeyDown:
		m.moveCursor(1, 0)
	case tea.KeyHome:
		m.moveCursor(0, -m.col)
	case tea.KeyEnd:
		m.moveCursor(0, len(m.key)-1-m.col)
	case tea.KeyBackspace:
		if m.col > 0 {
			m.moveCursor(0, -1)
		}
		m.clearKey(m.col)
	case tea.KeyDelete:
		m.clearKey(m.col)
	case tea.KeySpace:
		m.typeRunes([]rune{' '})
	case tea.KeyRunes:
		m.typeRunes(msg.Runes)
	}
	m.refreshRows()
	return m, nil
}

func (m *Model) updateCrib(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.cribMode = false
		m.cribInput.Blur()
		return m, nil
	case tea.KeyEnter:
		crib := m.cribInput.Value()
		n := m.placeCrib(m.row, m.col, []byte(crib))
		m.status = fmt.Sprintf("placed %q at row %d col %d (%d bytes)", crib, m.row, m.col, n)
		m.cribMode = false
		m.cribInput.Blur()
		m.refreshRows()
		return m, nil
	}
	var cmd tea.Cmd
	m.cribInput, cmd = m.cribInput.Update(msg)
	return m, cmd
}

func (m *Model) typeRunes(runes []rune) {
	for _, r := range runes {
		if r > 0x7e || r < 0x20 {
			m.status = fmt.Sprintf("%q is not printable ASCII", r)
			continue
		}
		if m.setPlain(m.row, m.col, byte(r)) {
			m.moveCursor(0, 1)
		}
	}
}

// setPlain fixes the key byte at col so that row decrypts to b there.
func (m *Model) setPlain(row, col int, b byte) bool {
	if row < 0 || row >= len(m.ciphertexts) || col < 0 || col >= len(m.ciphertexts[row]) {
		return false
	}
	m.key[col] = m.ciphertexts[row][col] ^ b
	m.resolved[col] = true
	return true
}

func (m *Model) placeCrib(row, col int, crib []byte) int {
	n := 0
	for i, b := range crib {
		if !m.setPlain(row, col+i, b) {
			break
		}
		n++
	}
	return n
}

func (m *Model) clearKey(col int) {
	if col < 0 || col >= len(m.key) {
		return
	}
	m.key[col] = 0
	m.resolved[col] = false
}

func (m *Model) moveCursor(dRow, dCol int) {
	if len(m.ciphertexts) == 0 {
		return
	}
	m.row = clamp(m.row+dRow, 0, len(m.ciphertexts)-1)
	m.col = clamp(m.col+dCol, 0, max(0, len(m.key)-1))
	m.offset = windowStart(m.col, m.offset, m.visibleColumns())
	if m.row < m.rows.YOffset {
		m.rows.SetYOffset(m.row)
	} else if m.rows.Height > 0 && m.row >= m.rows.YOffset+m.rows.Height {
		m.rows.SetYOffset(m.row - m.rows.Height + 1)
	}
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.rows.Width = m.width
	m.rows.Height = max(1, m.height-3)
	m.cribInput.Width = max(10, m.width-lipgloss.Width(m.cribInput.Prompt)-2)
	m.offset = windowStart(m.col, m.offset, m.visibleColumns())
	m.refreshRows()
}

func (m *Model) visibleColumns() int {
	if m.width <= 0 {
		return len(m.key)
	}
	return max(1, m.width-gutterWidth(len(m.ciphertexts)))
}

func (m *Model) refreshRows() {
	lines := make([]string, len(m.ciphertexts))
	visible := m.visibleColumns()
	for i, c := range m.ciphertexts {
		cursorCol := -1
		if i == m.row {
			cursorCol = m.col
		}
		lines[i] = renderRow(i, len(m.ciphertexts), c, m.key, m.resolved, m.offset, visible, cursorCol)
	}
	m.rows.SetContent(strings.Join(lines, "\n"))
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderHeader()
	body := fitLines(m.rows.View(), m.width, m.rows.Height)
	var footer string
	if m.cribMode {
		footer = m.cribInput.View()
	} else {
		footer = m.renderFooter()
	}
	status := statusStyle.Render(runewidth.Truncate(m.status, m.width, "…"))
	return strings.Join([]string{header, body, status, footer}, "\n")
}

func (m *Model) renderHeader() string {
	n := 0
	for _, r := range m.resolved {
		if r {
			n++
		}
	}
	line := fmt.Sprintf("Key %d/%d resolved  Row %d  Col %d", n, len(m.key), m.row, m.col)
	if m.col < len(m.key) && m.resolved[m.col] {
		line += fmt.Sprintf("  Key byte %02x", m.key[m.col])
	}
	return activeRowStyle.Render(runewidth.Truncate(line, m.width, "…"))
}

func (m *Model) renderFooter() string {
	help := "type to set key · ←→↑↓ move · del clear · ctrl+f crib · esc done · ctrl+c abort"
	return footerStyle.Render(runewidth.Truncate(help, m.width, "…"))
}
