package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/cryptology/internal/caesar"
	"github.com/verte-zerg/cryptology/internal/frequency"
	"github.com/verte-zerg/cryptology/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Letter", "Count", "Percent"}
	rows := [][]string{
		{"E", "12", "12.50%"},
		{"Z", "3", "0.75%"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true, 2: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Letter Count Percent" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "E         12  12.50%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Z          3   0.75%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableLeavesLastColumnUnpadded(t *testing.T) {
	lines := formatTable([]string{"Pair", "Offset", "Crib", "Reveals"}, [][]string{{"0/1", "0", `"the "`, `"a st"`}}, map[int]bool{1: true})
	if lines[1] != `0/1       0 "the " "a st"` {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1, 2}); got != "▁▅█" {
		t.Fatalf("expected ▁▅█, got %q", got)
	}
	if got := Sparkline([]float64{5, 5}); got != "▁▁" {
		t.Fatalf("expected flat line, got %q", got)
	}
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
}

func TestBarWidthFor(t *testing.T) {
	if got := BarWidthFor(80, 14); got != 66 {
		t.Fatalf("expected 66, got %d", got)
	}
	if got := BarWidthFor(0, 14); got != terminalWidthBackup-14 {
		t.Fatalf("expected fallback width, got %d", got)
	}
	if got := BarWidthFor(12, 14); got != minBarWidth {
		t.Fatalf("expected min width %d, got %d", minBarWidth, got)
	}
}

func TestWriteFrequency(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrequency(&buf, frequency.Analyze("Hello, World")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if !strings.HasPrefix(lines[0], "Letters: 10 ") {
		t.Fatalf("unexpected summary: %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "L") || !strings.Contains(lines[2], "30.00%") {
		t.Fatalf("expected L first with 30.00%%, got %q", lines[2])
	}
}

func TestWriteFrequencyWithoutLetters(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrequency(&buf, frequency.Analyze("1234 !!")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No letters found") {
		t.Fatalf("expected no-letters note, got %q", buf.String())
	}
}

func TestWriteHistogram(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistogram(&buf, frequency.Count("the quick brown fox")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2*frequency.AlphabetSize {
		t.Fatalf("expected %d lines, got %d", 2*frequency.AlphabetSize, len(lines))
	}
	if !strings.HasPrefix(lines[0], "A obs") || !strings.HasPrefix(lines[1], "  eng") {
		t.Fatalf("unexpected first lines: %q %q", lines[0], lines[1])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected no color codes for a buffer")
	}
}

func TestWriteShiftCandidatesMarksBest(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteShiftCandidates(&buf, caesar.Candidates("Uif tfdsfu jt tbgf, uif tfdsfu jt xfmm ijeefo!")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var marked []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "*") {
			marked = append(marked, line)
		}
	}
	if len(marked) != 1 || !strings.Contains(marked[0], "The secret is safe") {
		t.Fatalf("expected one marked line with the plaintext, got %q", marked)
	}
	if !strings.Contains(buf.String(), "Scores: ") {
		t.Fatalf("expected sparkline, got %q", buf.String())
	}
}

func TestKeyConfidence(t *testing.T) {
	got := KeyConfidence([]byte{0xab, 0x00, 0x01}, []bool{true, false, true})
	if got != "ab??01" {
		t.Fatalf("expected ab??01, got %q", got)
	}
	var buf bytes.Buffer
	if err := WriteKeyConfidence(&buf, []byte{0xab, 0x00}, []bool{true, false}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "1/2 bytes resolved") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRunRow(t *testing.T) {
	run := model.Run{
		ID:        7,
		CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		Operation: model.OpCrack,
		Cipher:    model.CipherManyTimePad,
		Key:       "00ff",
		Score:     3,
		Output:    "line one\nline two",
	}
	row := RunRow(run)
	if len(row) != len(RunHeaders) {
		t.Fatalf("expected %d cells, got %d", len(RunHeaders), len(row))
	}
	if row[0] != "7" || row[5] != "" {
		t.Fatalf("unexpected cells: %q", row)
	}
	if row[6] != "line one.line two" {
		t.Fatalf("expected control bytes replaced, got %q", row[6])
	}
}

func TestWriteRunsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRuns(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "No runs recorded.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
