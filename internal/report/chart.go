package report

import (
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	terminalWidthBackup = 80
	minBarWidth         = 10
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws one block per value, scaled between the series minimum
// and maximum. An empty series yields an empty string.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if hi-lo > 1e-9 {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(len(sparkLevels)-1)))
		}
		b.WriteRune(sparkLevels[idx])
	}
	return b.String()
}

// bar returns a run of full blocks proportional to value/peak over width cells.
func bar(value, peak float64, width int) string {
	if peak <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	n := int(math.Round(value / peak * float64(width)))
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}

// BarWidthFor returns the bar width left after the label columns on a
// terminal of totalWidth cells.
func BarWidthFor(totalWidth, labelWidth int) int {
	if totalWidth <= 0 {
		totalWidth = terminalWidthBackup
	}
	w := totalWidth - labelWidth
	if w < minBarWidth {
		w = minBarWidth
	}
	return w
}

func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

type palette struct {
	observed lipgloss.Style
	expected lipgloss.Style
	weak     lipgloss.Style
}

func newPalette(w io.Writer) palette {
	if !shouldUseColor(w) {
		plain := lipgloss.NewStyle()
		return palette{observed: plain, expected: plain, weak: plain}
	}
	r := lipgloss.NewRenderer(w)
	return palette{
		observed: r.NewStyle().Foreground(lipgloss.Color("6")),
		expected: r.NewStyle().Foreground(lipgloss.Color("8")),
		weak:     r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}
