// Package extract turns imported text into flashcards.
//
// Comma-separated input with a recognizable header is parsed locally. Anything
// else, and any structured parse that yields nothing, is handed to the AI
// collaborator.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/verte-zerg/checkcard/internal/ai"
	"github.com/verte-zerg/checkcard/internal/logging"
	"github.com/verte-zerg/checkcard/internal/model"
)

var (
	// ErrNoCards is returned when neither the local parse nor the collaborator
	// produced a single card.
	ErrNoCards = errors.New("no flashcards could be extracted")
	// ErrUnsupportedExtension rejects files outside .csv, .py and .txt.
	ErrUnsupportedExtension = errors.New("unsupported file type (use .csv, .py or .txt)")
)

// Format hints how the content should be treated.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatPython
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatPython:
		return "python"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// Tabular reports whether a structured parse should be attempted.
func (f Format) Tabular() bool {
	return f == FormatCSV || f == FormatUnknown
}

// FormatFromName derives the format from a file name or URL path.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".py":
		return FormatPython
	case ".txt":
		return FormatText
	default:
		return FormatUnknown
	}
}

// CheckExtension returns ErrUnsupportedExtension unless name has a supported
// extension.
func CheckExtension(name string) error {
	if FormatFromName(name) == FormatUnknown {
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, filepath.Base(name))
	}
	return nil
}

// Extractor runs the local parse and the collaborator fallback.
type Extractor struct {
	ai       ai.Collaborator
	logger   *slog.Logger
	validate *validator.Validate
}

// New returns an Extractor. A nil collaborator disables the fallback.
func New(collab ai.Collaborator, logger *slog.Logger) *Extractor {
	if collab == nil {
		collab = ai.Disabled{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Extractor{ai: collab, logger: logger, validate: validator.New()}
}

// Extract returns the cards found in text or ErrNoCards.
func (e *Extractor) Extract(ctx context.Context, text string, format Format) ([]model.Flashcard, error) {
	var cards []model.Flashcard
	if format.Tabular() {
		cards = ParseCSV(text)
		e.logger.Debug("structured parse finished", "format", format.String(), "cards", len(cards))
	}
	if len(cards) > 0 {
		return cards, nil
	}

	e.logger.Info("falling back to AI extraction", "format", format.String(), "bytes", len(text))
	cards = e.fromDrafts(e.ai.ExtractCards(ctx, text))
	if len(cards) == 0 {
		return nil, ErrNoCards
	}
	return cards, nil
}

func (e *Extractor) fromDrafts(drafts []ai.CardDraft) []model.Flashcard {
	cards := make([]model.Flashcard, 0, len(drafts))
	for i, d := range drafts {
		d.Frente = strings.TrimSpace(d.Frente)
		if err := e.validate.Struct(d); err != nil {
			e.logger.Warn("dropping invalid card from AI", "index", i, "error", err)
			continue
		}
		verso := strings.TrimSpace(d.Verso)
		if verso == "" {
			verso = model.NoExplanation
		}
		cards = append(cards, model.Flashcard{
			ID:       uuid.NewString(),
			Frente:   d.Frente,
			Gabarito: model.NormalizeAnswer(d.Gabarito),
			Verso:    verso,
		})
	}
	return cards
}
