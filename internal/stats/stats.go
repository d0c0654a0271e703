// Package stats summarizes study history and renders it as text.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/checkcard/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Band classifies a score percentage.
type Band int

const (
	BandPoor Band = iota
	BandFair
	BandGood
)

// BandFor returns the band for a percentage in the 0-100 range:
// 70 and above is good, 40 and above is fair.
func BandFor(percent float64) Band {
	switch {
	case percent >= 70:
		return BandGood
	case percent >= 40:
		return BandFair
	default:
		return BandPoor
	}
}

func (b Band) String() string {
	switch b {
	case BandGood:
		return "good"
	case BandFair:
		return "fair"
	default:
		return "poor"
	}
}

// Summary aggregates a history.
type Summary struct {
	Sessions    int
	Answered    int
	Correct     int
	AvgPercent  float64
	BestPercent float64
	LastPercent float64
}

// Summarize aggregates entries given most recent first.
func Summarize(entries []model.HistoryEntry) Summary {
	s := Summary{Sessions: len(entries)}
	if len(entries) == 0 {
		return s
	}
	var sum float64
	for i, e := range entries {
		p := e.Percent()
		sum += p
		if p > s.BestPercent {
			s.BestPercent = p
		}
		if i == 0 {
			s.LastPercent = p
		}
		s.Answered += e.Total
		s.Correct += e.Score
	}
	s.AvgPercent = sum / float64(len(entries))
	return s
}

// Chronological returns the percentages of entries oldest first.
func Chronological(entries []model.HistoryEntry) []float64 {
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e.Percent()
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders values on a fixed 0-100 scale as one line of ASCII.
func Sparkline(values []float64) string {
	var b strings.Builder
	for _, v := range values {
		pos := math.Max(0, math.Min(100, v)) / 100
		b.WriteByte(sparkChars[int(math.Round(pos*float64(len(sparkChars)-1)))])
	}
	return b.String()
}
