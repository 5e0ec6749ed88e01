package workbench

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// gutterWidth is the width of the "NN │ " prefix for n rows.
func gutterWidth(n int) int {
	return len(strconv.Itoa(max(0, n-1))) + 3
}

func renderRow(idx, total int, ciphertext, key []byte, resolved []bool, offset, visible, cursorCol int) string {
	digits := gutterWidth(total) - 3
	var b strings.Builder
	prefix := fmt.Sprintf("%*d │ ", digits, idx)
	if cursorCol >= 0 {
		b.WriteString(activeRowStyle.Render(prefix))
	} else {
		b.WriteString(gutterStyle.Render(prefix))
	}
	end := min(len(key), offset+visible)
	for col := offset; col < end; col++ {
		ch, style := cell(ciphertext, key, resolved, col)
		if col == cursorCol {
			style = style.Underline(true)
		}
		b.WriteString(style.Render(string(ch)))
	}
	return b.String()
}

// cell returns the character shown for one column of a row.
func cell(ciphertext, key []byte, resolved []bool, col int) (rune, lipgloss.Style) {
	if col >= len(ciphertext) {
		return ' ', pendingStyle
	}
	if col >= len(resolved) || !resolved[col] {
		return defaultMaskRune, pendingStyle
	}
	p := ciphertext[col] ^ key[col]
	if p < 0x20 || p > 0x7e {
		return '.', unprintable
	}
	return rune(p), resolvedStyle
}

// windowStart keeps cursor inside [offset, offset+visible).
func windowStart(cursor, offset, visible int) int {
	if visible <= 0 {
		return 0
	}
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+visible {
		return cursor - visible + 1
	}
	return offset
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
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
