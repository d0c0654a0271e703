package stats

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Date", "Score", "%"}
	rows := [][]string{
		{"01/02/2024, 10:00:00", "7 / 10", "70%"},
		{"hoje", "10 / 10", "100%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign, 0)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Date                   Score    %" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "01/02/2024, 10:00:00  7 / 10  70%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "hoje                 10 / 10 100%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableShrinksToWidth(t *testing.T) {
	headers := []string{"#", "Gabarito", "Frente", "Verso"}
	rows := [][]string{{"1", "B", "What is the capital of France? Choose wisely", "Paris is the capital"}}

	lines := formatTable(headers, rows, map[int]bool{0: true}, 40, 3, 2)
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > 40 {
			t.Fatalf("line wider than 40 (%d): %q", w, line)
		}
	}
	if !strings.Contains(lines[1], "…") {
		t.Fatalf("expected truncation marker in %q", lines[1])
	}
	if !strings.HasPrefix(lines[1], "1 B        What is the") {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Frente", "X"}, [][]string{{"日本", "1"}}, nil, 0)
	if lines[1] != "日本   1" {
		t.Fatalf("unexpected wide-rune line: %q", lines[1])
	}
}

func TestSingleLine(t *testing.T) {
	if got := singleLine("Qual?\nA) x\n  B) y"); got != "Qual? A) x B) y" {
		t.Fatalf("unexpected flattening: %q", got)
	}
}
