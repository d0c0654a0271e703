// Package model defines shared data structures.
package model

import "strings"

// Letters lists the valid answer keys in display order.
var Letters = []string{"A", "B", "C", "D", "E"}

// DefaultAnswer is used when an answer key cannot be recognized.
const DefaultAnswer = "A"

// NoExplanation is the placeholder for cards without an explanation.
const NoExplanation = "No explanation provided."

// Flashcard is a single multiple-choice card.
type Flashcard struct {
	ID       string `json:"id"`
	Frente   string `json:"frente"`
	Gabarito string `json:"gabarito"`
	Verso    string `json:"verso"`
}

// HistoryEntry captures the outcome of a completed study session.
type HistoryEntry struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Score int    `json:"score"`
	Total int    `json:"total"`
}

// Percent returns the share of correct answers in the 0-100 range.
func (e HistoryEntry) Percent() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Score) / float64(e.Total) * 100
}

// IsLetter reports whether s is one of the valid answer keys.
func IsLetter(s string) bool {
	for _, l := range Letters {
		if s == l {
			return true
		}
	}
	return false
}

// NormalizeAnswer uppercases a raw answer key and falls back to DefaultAnswer
// when the result is not a valid letter.
func NormalizeAnswer(raw string) string {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if IsLetter(key) {
		return key
	}
	return DefaultAnswer
}

// Config defines runtime settings resolved from file, env and flags.
type Config struct {
	Store StoreConfig `koanf:"store"`
	AI    AIConfig    `koanf:"ai"`
	Log   LogConfig   `koanf:"log"`
}

// StoreConfig selects the durable key-value backend.
type StoreConfig struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite badger"`
	Path   string `koanf:"path"`
}

// AIConfig configures the optional language-model collaborator.
type AIConfig struct {
	APIKey         string `koanf:"api_key"`
	BaseURL        string `koanf:"base_url" validate:"omitempty,url"`
	Model          string `koanf:"model" validate:"required"`
	TimeoutSeconds int    `koanf:"timeout_seconds" validate:"gt=0,lte=600"`
	Language       string `koanf:"language" validate:"required"`
}

// Enabled reports whether an API key is configured.
func (c AIConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// LogConfig controls the application log.
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	Path  string `koanf:"path"`
}
