// Package deck holds the active card list: the built-in sample or the last
// successful import.
package deck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/checkcard/internal/logging"
	"github.com/verte-zerg/checkcard/internal/model"
	"github.com/verte-zerg/checkcard/internal/store"
)

// ErrEmptyDeck is returned when replacing the deck with no cards.
var ErrEmptyDeck = errors.New("refusing to install an empty deck")

var defaultCards = []model.Flashcard{
	{
		ID:       "1",
		Frente:   "Qual é a capital da França?\nA) Lyon\nB) Paris\nC) Marselha\nD) Nice\nE) Bordeaux",
		Gabarito: "B",
		Verso:    "A capital da França é Paris. Lyon e Marselha são outras grandes cidades francesas.",
	},
	{
		ID:       "2",
		Frente:   "Qual destes planetas é conhecido como o Planeta Vermelho?\nA) Vênus\nB) Júpiter\nC) Marte\nD) Saturno\nE) Mercúrio",
		Gabarito: "C",
		Verso:    "Marte é conhecido como o Planeta Vermelho devido ao óxido de ferro em sua superfície.",
	},
}

// Default returns a copy of the built-in sample deck.
func Default() []model.Flashcard {
	out := make([]model.Flashcard, len(defaultCards))
	copy(out, defaultCards)
	return out
}

// Deck is the active card list backed by a KV store.
type Deck struct {
	kv     store.KV
	logger *slog.Logger
	cards  []model.Flashcard
	custom bool
}

// New returns a Deck holding the default cards. Call Load to read the
// persisted import.
func New(kv store.KV, logger *slog.Logger) *Deck {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Deck{kv: kv, logger: logger, cards: Default()}
}

// Load installs the persisted deck. Missing, unreadable or empty data keeps
// the default deck.
func (d *Deck) Load(ctx context.Context) error {
	d.cards, d.custom = Default(), false
	raw, ok, err := d.kv.Get(ctx, store.KeyDeck)
	if err != nil {
		return fmt.Errorf("failed to read deck: %w", err)
	}
	if !ok {
		return nil
	}
	var cards []model.Flashcard
	if err := json.Unmarshal([]byte(raw), &cards); err != nil {
		d.logger.Warn("ignoring unreadable deck", "error", err)
		return nil
	}
	if len(cards) == 0 {
		d.logger.Warn("ignoring empty stored deck")
		return nil
	}
	d.cards, d.custom = cards, true
	return nil
}

// Replace persists cards as the active deck.
func (d *Deck) Replace(ctx context.Context, cards []model.Flashcard) error {
	if len(cards) == 0 {
		return ErrEmptyDeck
	}
	next := make([]model.Flashcard, len(cards))
	copy(next, cards)
	if err := store.PutJSON(ctx, d.kv, store.KeyDeck, next); err != nil {
		return err
	}
	d.cards, d.custom = next, true
	d.logger.Info("deck replaced", "cards", len(next))
	return nil
}

// Reset drops the imported deck and returns to the default one.
func (d *Deck) Reset(ctx context.Context) error {
	if err := d.kv.Delete(ctx, store.KeyDeck); err != nil {
		return fmt.Errorf("failed to reset deck: %w", err)
	}
	d.cards, d.custom = Default(), false
	return nil
}

// Cards returns a copy of the active deck.
func (d *Deck) Cards() []model.Flashcard {
	out := make([]model.Flashcard, len(d.cards))
	copy(out, d.cards)
	return out
}

// Len returns the number of active cards.
func (d *Deck) Len() int { return len(d.cards) }

// Custom reports whether the active deck came from an import.
func (d *Deck) Custom() bool { return d.custom }
