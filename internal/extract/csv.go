package extract

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/checkcard/internal/model"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// columns holds the resolved field positions of a header row.
type columns struct {
	front       int
	key         int
	explanation int
}

// ParseCSV parses comma-separated flashcards with a header row.
//
// It returns an empty slice when the text has fewer than two lines or when the
// header names neither a question nor an answer-key column. That empty result
// is the signal for the caller to fall back to the collaborator.
func ParseCSV(text string) []model.Flashcard {
	lines := lineBreak.Split(text, -1)
	if len(lines) < 2 {
		return nil
	}
	cols, ok := parseHeader(lines[0])
	if !ok {
		return nil
	}

	var cards []model.Flashcard
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line)
		if len(fields) == 0 {
			continue
		}
		verso := field(fields, cols.explanation)
		if verso == "" {
			verso = model.NoExplanation
		}
		cards = append(cards, model.Flashcard{
			ID:       uuid.NewString(),
			Frente:   field(fields, cols.front),
			Gabarito: model.NormalizeAnswer(field(fields, cols.key)),
			Verso:    verso,
		})
	}
	return cards
}

func parseHeader(line string) (columns, bool) {
	front, key, explanation := -1, -1, -1
	for i, raw := range strings.Split(line, ",") {
		h := strings.ToLower(strings.TrimSpace(raw))
		if front < 0 && containsAny(h, "frente", "question") {
			front = i
		}
		if key < 0 && containsAny(h, "gabarito", "answer", "key") {
			key = i
		}
		if explanation < 0 && containsAny(h, "verso", "explanation") {
			explanation = i
		}
	}
	if front < 0 && key < 0 {
		return columns{}, false
	}
	cols := columns{front: 0, key: 1, explanation: 2}
	if front >= 0 {
		cols.front = front
	}
	if key >= 0 {
		cols.key = key
	}
	if explanation >= 0 {
		cols.explanation = explanation
	}
	return cols, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// splitFields tokenizes one data line in a single pass. Commas inside double
// quotes do not split; unbalanced quotes run to the end of the line. A line
// whose fields are all empty yields nil.
func splitFields(line string) []string {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			current.WriteRune(r)
		case r == ',' && !quoted:
			fields = append(fields, cleanField(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, cleanField(current.String()))

	for _, f := range fields {
		if f != "" {
			return fields
		}
	}
	return nil
}

func cleanField(raw string) string {
	v := strings.TrimSpace(raw)
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = strings.ReplaceAll(v[1:len(v)-1], `""`, `"`)
	} else {
		v = strings.TrimPrefix(v, `"`)
		v = strings.TrimSuffix(v, `"`)
	}
	return strings.TrimSpace(v)
}

func field(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}
