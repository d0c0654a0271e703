package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText breaks text into lines no wider than width cells. Existing line
// breaks are kept, words are split only when longer than a whole line.
func wrapText(text string, width int) []string {
	paragraphs := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if width <= 0 {
		return paragraphs
	}
	var out []string
	for _, p := range paragraphs {
		out = append(out, wrapParagraph(p, width)...)
	}
	return out
}

func wrapParagraph(p string, width int) []string {
	words := strings.Fields(p)
	if len(words) == 0 {
		return []string{""}
	}
	var (
		lines     []string
		line      strings.Builder
		lineWidth int
	)
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineWidth = 0
	}
	for _, word := range words {
		ww := runewidth.StringWidth(word)
		if lineWidth > 0 && lineWidth+1+ww > width {
			flush()
		}
		for ww > width {
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				break
			}
			if lineWidth > 0 {
				flush()
			}
			lines = append(lines, head)
			word = strings.TrimPrefix(word, head)
			ww = runewidth.StringWidth(word)
		}
		if word == "" {
			continue
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += ww
	}
	if lineWidth > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

// contentWidth is the text column used by the study view.
func contentWidth(termWidth int) int {
	if termWidth <= 0 {
		return 0
	}
	w := int(float64(termWidth) * 0.70)
	if w > 100 {
		w = 100
	}
	if w < 20 {
		w = termWidth
	}
	return w
}
