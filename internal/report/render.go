package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/cryptology/internal/caesar"
	"github.com/verte-zerg/cryptology/internal/cribs"
	"github.com/verte-zerg/cryptology/internal/frequency"
	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/vigenere"
)

const previewWidth = 48

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteFrequency prints the letter counts of a text next to the English
// reference percentages.
func WriteFrequency(w io.Writer, rep frequency.Report) error {
	if _, err := fmt.Fprintf(w, "Letters: %d  Chi-square vs English: %.2f\n", rep.Total, rep.Score); err != nil {
		return err
	}
	if rep.Total == 0 {
		_, err := fmt.Fprintln(w, "No letters found; the score carries no information.")
		return err
	}
	rows := make([][]string, 0, len(rep.Letters))
	for _, lc := range rep.Letters {
		rows = append(rows, []string{
			string(lc.Letter),
			strconv.Itoa(lc.Count),
			fmt.Sprintf("%.2f%%", lc.Percent),
			fmt.Sprintf("%.2f%%", frequency.English.Proportion(lc.Letter)*100),
		})
	}
	return writeLines(w, formatTable([]string{"Letter", "Count", "Percent", "English"}, rows, map[int]bool{1: true, 2: true, 3: true}))
}

// WriteHistogram draws observed and English letter shares as paired bars,
// A to Z, sized to the terminal when w is one.
func WriteHistogram(w io.Writer, sample frequency.Sample) error {
	if sample.Total == 0 {
		return nil
	}
	p := newPalette(w)
	const labelWidth = len("A obs  00.00% ")
	width := BarWidthFor(terminalWidth(w), labelWidth)

	peak := 0.0
	observed := make([]float64, frequency.AlphabetSize)
	for i := range observed {
		letter := rune('A' + i)
		observed[i] = float64(sample.Count(letter)) / float64(sample.Total)
		peak = max(peak, observed[i], frequency.English.Proportion(letter))
	}
	for i, obs := range observed {
		letter := rune('A' + i)
		eng := frequency.English.Proportion(letter)
		if _, err := fmt.Fprintf(w, "%c obs %6.2f%% %s\n", letter, obs*100, p.observed.Render(bar(obs, peak, width))); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  eng %6.2f%% %s\n", eng*100, p.expected.Render(bar(eng, peak, width))); err != nil {
			return err
		}
	}
	return nil
}

// WriteShiftCandidates lists all Caesar shifts with their scores, marking
// the best one, followed by a sparkline of the scores in shift order.
func WriteShiftCandidates(w io.Writer, candidates []caesar.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	best := caesar.Best(candidates)
	rows := make([][]string, 0, len(candidates))
	scores := make([]float64, 0, len(candidates))
	for _, c := range candidates {
		mark := ""
		if c.Shift == best.Shift {
			mark = "*"
		}
		rows = append(rows, []string{
			mark,
			strconv.Itoa(c.Shift),
			string(rune('A' + c.Shift)),
			fmt.Sprintf("%.2f", c.Score),
			printable(c.Plaintext, previewWidth),
		})
		scores = append(scores, c.Score)
	}
	if err := writeLines(w, formatTable([]string{"", "Shift", "Key", "Score", "Plaintext"}, rows, map[int]bool{1: true, 3: true})); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Scores: %s\n", Sparkline(scores))
	return err
}

// WriteKeyLengths prints index of coincidence hints for Vigenère key lengths.
func WriteKeyLengths(w io.Writer, ranked []vigenere.KeyLengthScore) error {
	rows := make([][]string, 0, len(ranked))
	for i, r := range ranked {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.KeyLength),
			fmt.Sprintf("%.4f", r.IoC),
			fmt.Sprintf("%.4f", r.Distance),
		})
	}
	return writeLines(w, formatTable([]string{"Rank", "Length", "IoC", "Distance"}, rows, map[int]bool{0: true, 1: true, 2: true, 3: true}))
}

// WriteSubstitution prints a frequency-rank substitution as "X -> E" pairs.
func WriteSubstitution(w io.Writer, sub frequency.Substitution) error {
	pairs := sub.Pairs()
	parts := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		parts = append(parts, fmt.Sprintf("%c->%c", pair[0], pair[1]))
	}
	_, err := fmt.Fprintf(w, "Mapping: %s\n", strings.Join(parts, " "))
	return err
}

// KeyConfidence renders a recovered key as hex with "??" for bytes no
// ciphertext voted on.
func KeyConfidence(key []byte, resolved []bool) string {
	var b strings.Builder
	for i, k := range key {
		if i < len(resolved) && resolved[i] {
			fmt.Fprintf(&b, "%02x", k)
		} else {
			b.WriteString("??")
		}
	}
	return b.String()
}

// WriteKeyConfidence prints the recovered key and how much of it is backed
// by votes.
func WriteKeyConfidence(w io.Writer, key []byte, resolved []bool) error {
	n := 0
	for _, r := range resolved {
		if r {
			n++
		}
	}
	p := newPalette(w)
	status := fmt.Sprintf("%d/%d bytes resolved", n, len(key))
	if n < len(key) {
		status = p.weak.Render(status)
	}
	_, err := fmt.Fprintf(w, "Key: %s\n%s\n", KeyConfidence(key, resolved), status)
	return err
}

// WriteCribHits prints crib placements whose partner text reads as English.
func WriteCribHits(w io.Writer, hits []cribs.Hit) error {
	rows := make([][]string, 0, len(hits))
	for _, h := range hits {
		rows = append(rows, []string{
			fmt.Sprintf("%d/%d", h.Pair.I, h.Pair.J),
			strconv.Itoa(h.Offset),
			strconv.Quote(h.Crib),
			strconv.Quote(h.Revealed),
		})
	}
	return writeLines(w, formatTable([]string{"Pair", "Offset", "Crib", "Reveals"}, rows, map[int]bool{1: true}))
}

// WriteRuns prints recorded runs, oldest first.
func WriteRuns(w io.Writer, runs []model.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, RunRow(r))
	}
	return writeLines(w, formatTable(RunHeaders, rows, map[int]bool{0: true, 5: true}))
}

// RunHeaders names the columns produced by RunRow.
var RunHeaders = []string{"ID", "When", "Op", "Cipher", "Key", "Score", "Output"}

// RunRow formats a run as table cells.
func RunRow(r model.Run) []string {
	score := ""
	if r.Operation == model.OpCrack && !r.Cipher.Binary() {
		score = fmt.Sprintf("%.2f", r.Score)
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.CreatedAt.Local().Format(time.DateTime),
		string(r.Operation),
		string(r.Cipher),
		printable(r.Key, 24),
		score,
		printable(r.Output, previewWidth),
	}
}

// WriteSummaries prints per-cipher run totals.
func WriteSummaries(w io.Writer, sums []model.CipherSummary) error {
	rows := make([][]string, 0, len(sums))
	for _, s := range sums {
		rows = append(rows, []string{
			string(s.Cipher),
			strconv.Itoa(s.Runs),
			strconv.Itoa(s.Cracks),
			fmt.Sprintf("%.2f", s.AvgScore),
			s.LastRun.Local().Format(time.DateTime),
		})
	}
	return writeLines(w, formatTable([]string{"Cipher", "Runs", "Cracks", "Avg score", "Last run"}, rows, map[int]bool{1: true, 2: true, 3: true}))
}
