package stats

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/verte-zerg/checkcard/internal/model"
)

const terminalWidthBackup = 80

// BandColors are the terminal colors used for score bands.
var BandColors = map[Band]lipgloss.Color{
	BandGood: lipgloss.Color("#059669"),
	BandFair: lipgloss.Color("#D97706"),
	BandPoor: lipgloss.Color("#DC2626"),
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// TerminalWidth returns the width of stdout or 80 when unknown.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ScoreLabel renders "score / total", colored by band when useColor is set.
func ScoreLabel(e model.HistoryEntry, useColor bool) string {
	label := fmt.Sprintf("%d / %d", e.Score, e.Total)
	if !useColor {
		return label
	}
	return lipgloss.NewStyle().Bold(true).Foreground(BandColors[BandFor(e.Percent())]).Render(label)
}

// RenderSummary prints aggregate numbers for a history.
func RenderSummary(w io.Writer, entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "Nenhuma sessão registrada ainda.")
		return err
	}
	s := Summarize(entries)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Cards answered: %d (%d correct)", s.Answered, s.Correct),
		fmt.Sprintf("Avg score: %.1f%%", s.AvgPercent),
		fmt.Sprintf("Best score: %.1f%%", s.BestPercent),
		fmt.Sprintf("Last score: %.1f%%", s.LastPercent),
		fmt.Sprintf("Trend: [%s]", Sparkline(Chronological(entries))),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints one row per session, most recent first.
func RenderHistory(w io.Writer, entries []model.HistoryEntry, useColor bool) error {
	if len(entries) == 0 {
		return nil
	}
	headers := []string{"Date", "Questões", "Score", "%"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Date,
			strconv.Itoa(e.Total),
			fmt.Sprintf("%d / %d", e.Score, e.Total),
			fmt.Sprintf("%.0f%%", e.Percent()),
		})
	}
	lines := formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true}, 0)
	for i, line := range lines {
		if useColor && i > 0 {
			band := BandFor(entries[i-1].Percent())
			line = lipgloss.NewStyle().Foreground(BandColors[band]).Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurve plots the score percentage per session with a moving average.
func RenderCurve(w io.Writer, entries []model.HistoryEntry, window, totalWidth int, useColor bool) error {
	if len(entries) < 2 {
		return nil
	}
	values := Chronological(entries)
	return PlotPercent(w, "Score over sessions", []Series{
		{Name: "Score", Values: values},
		{Name: fmt.Sprintf("Avg (%d)", window), Values: MovingAverage(values, window)},
	}, PlotWidthFor(totalWidth), defaultPlotHeight, useColor)
}

// RenderDeck prints the cards of a deck, truncating questions to width.
func RenderDeck(w io.Writer, cards []model.Flashcard, width int) error {
	if len(cards) == 0 {
		_, err := fmt.Fprintln(w, "Deck is empty.")
		return err
	}
	headers := []string{"#", "Gabarito", "Frente", "Verso"}
	rows := make([][]string, 0, len(cards))
	for i, c := range cards {
		rows = append(rows, []string{strconv.Itoa(i + 1), c.Gabarito, singleLine(c.Frente), singleLine(c.Verso)})
	}
	lines := formatTable(headers, rows, map[int]bool{0: true}, width, 3, 2)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
