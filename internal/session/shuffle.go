package session

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/checkcard/internal/model"
)

// Shuffler reorders cards in place.
type Shuffler interface {
	Shuffle(cards []model.Flashcard)
}

// RandomShuffler performs a uniform Fisher-Yates shuffle.
type RandomShuffler struct {
	rnd *rand.Rand
}

// NewShuffler returns a RandomShuffler seeded with the current time.
func NewShuffler() *RandomShuffler {
	return NewSeededShuffler(time.Now().UnixNano())
}

// NewSeededShuffler returns a RandomShuffler with a fixed seed.
func NewSeededShuffler(seed int64) *RandomShuffler {
	return &RandomShuffler{rnd: rand.New(rand.NewSource(seed))}
}

// Shuffle implements Shuffler.
func (s *RandomShuffler) Shuffle(cards []model.Flashcard) {
	for i := len(cards) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

type noShuffle struct{}

func (noShuffle) Shuffle([]model.Flashcard) {}

// InOrder keeps the deck order. Useful for tests and review modes.
var InOrder Shuffler = noShuffle{}
