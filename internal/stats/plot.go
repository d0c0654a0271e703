package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Series is a named line on a percentage plot.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	axisSeparator     = " │ "
)

var seriesColors = []lipgloss.Color{"6", "5", "3"}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	axis := runewidth.StringWidth("100%") + runewidth.StringWidth(axisSeparator)
	if w := totalWidth - axis; w > minPlotWidth {
		return w
	}
	return minPlotWidth
}

// PlotPercent draws series on a shared 0-100 scale using braille cells, so
// each character holds a 2x4 dot grid.
func PlotPercent(w io.Writer, title string, series []Series, width, height int, useColor bool) error {
	if len(series) == 0 || len(series[0].Values) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	grids := make([][][]uint8, len(series))
	for si, s := range series {
		grids[si] = makeGrid(height, width)
		if len(s.Values) == 0 {
			continue
		}
		values := resample(s.Values, width)
		prevX, prevY := -1, -1
		for x, v := range values {
			px, py := x*2, percentToDot(v, height*4)
			if prevX >= 0 {
				drawLine(prevX, prevY, px, py, func(dx, dy int) { setDot(grids[si], dx, dy) })
			} else {
				setDot(grids[si], px, py)
			}
			prevX, prevY = px, py
		}
	}

	paint := func(i int, s string) string { return s }
	if useColor {
		paint = func(i int, s string) string {
			return lipgloss.NewStyle().Foreground(seriesColors[i%len(seriesColors)]).Render(s)
		}
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%4s%s", axisLabel(y, height), axisSeparator))
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for si := range grids {
				if m := grids[si][y][x]; m != 0 {
					mask |= m
					if owner < 0 {
						owner = si
					}
				}
			}
			cell := string(rune(0x2800 + int(mask)))
			if owner >= 0 {
				cell = paint(owner, cell)
			}
			row.WriteString(cell)
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	legend := make([]string, len(series))
	for i, s := range series {
		legend[i] = paint(i, "⠉ "+s.Name)
	}
	_, err := fmt.Fprintln(w, "Legend: "+strings.Join(legend, "  "))
	return err
}

func axisLabel(y, height int) string {
	switch {
	case y == 0:
		return "100%"
	case y == height-1:
		return "0%"
	case height > 2 && y == height/2:
		return "50%"
	default:
		return ""
	}
}

func makeGrid(height, width int) [][]uint8 {
	grid := make([][]uint8, height)
	for y := range grid {
		grid[y] = make([]uint8, width)
	}
	return grid
}

// percentToDot maps 100 to the top dot row and 0 to the bottom one.
func percentToDot(v float64, rows int) int {
	v = math.Max(0, math.Min(100, v))
	return int(math.Round((1 - v/100) * float64(rows-1)))
}

// resample stretches or averages values to exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == 1:
		for i := range out {
			out[i] = values[0]
		}
	case n > width:
		for i := range out {
			start, end := i*n/width, (i+1)*n/width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(width-1)
			lo := int(pos)
			if lo >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(lo)
			out[i] = values[lo]*(1-frac) + values[lo+1]*frac
		}
	}
	return out
}

// drawLine walks a Bresenham line between two dots.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx, sx := x1-x0, 1
	if dx < 0 {
		dx, sx = -dx, -1
	}
	dy, sy := y1-y0, 1
	if dy < 0 {
		dy, sy = -dy, -1
	}
	dy = -dy
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func setDot(grid [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if x < 0 || y < 0 || cy >= len(grid) || cx >= len(grid[cy]) {
		return
	}
	grid[cy][cx] |= dotBits[x%2][y%4]
}
