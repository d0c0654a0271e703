package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// formatTable lays out rows in aligned columns. When maxWidth > 0 the columns
// in shrinkCols are shortened, in order, until each line fits.
func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool, maxWidth int, shrinkCols ...int) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			if w := runewidth.StringWidth(cellAt(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	if maxWidth > 0 {
		total := colCount - 1
		for _, w := range widths {
			total += w
		}
		for _, col := range shrinkCols {
			over := total - maxWidth
			if over <= 0 || col < 0 || col >= colCount {
				continue
			}
			floor := runewidth.StringWidth(cellAt(headers, col))
			next := widths[col] - over
			if next < floor {
				next = floor
			}
			total -= widths[col] - next
			widths[col] = next
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i, width := range widths {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cellAt(row, i), width, rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	if runewidth.StringWidth(value) > width {
		value = runewidth.Truncate(value, width, "…")
	}
	padding := width - runewidth.StringWidth(value)
	if padding <= 0 {
		return value
	}
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

// singleLine flattens multi-line card text for table cells.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
