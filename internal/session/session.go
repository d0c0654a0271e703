// Package session runs one study pass over a shuffled copy of the deck.
package session

import (
	"errors"

	"github.com/verte-zerg/checkcard/internal/model"
)

var (
	// ErrEmptyDeck is returned by Start when there is nothing to study.
	ErrEmptyDeck = errors.New("cannot start a session without cards")
	// ErrAlreadyAnswered is returned when the current card was already answered.
	ErrAlreadyAnswered = errors.New("card already answered")
	// ErrCompleted is returned when answering after the last card.
	ErrCompleted = errors.New("session already completed")
)

// State is the lifecycle position of a session.
type State int

const (
	Active State = iota
	Completed
)

func (s State) String() string {
	if s == Completed {
		return "completed"
	}
	return "active"
}

// Result is the final outcome of a completed session.
type Result struct {
	Score int
	Total int
}

// Session tracks position, score and answers for one pass.
type Session struct {
	cards    []model.Flashcard
	index    int
	score    int
	answers  map[string]string
	answered bool
	state    State
}

// Start returns an active session over a shuffled copy of cards. A nil
// shuffler uses a time-seeded RandomShuffler.
func Start(cards []model.Flashcard, shuffler Shuffler) (*Session, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyDeck
	}
	if shuffler == nil {
		shuffler = NewShuffler()
	}
	deck := make([]model.Flashcard, len(cards))
	copy(deck, cards)
	shuffler.Shuffle(deck)
	return &Session{
		cards:   deck,
		answers: make(map[string]string, len(deck)),
		state:   Active,
	}, nil
}

// Answer records letter for the current card and locks it until Advance.
func (s *Session) Answer(letter string) (bool, error) {
	if s.state == Completed {
		return false, ErrCompleted
	}
	if s.answered {
		return false, ErrAlreadyAnswered
	}
	card := s.cards[s.index]
	s.answers[card.ID] = letter
	s.answered = true
	correct := letter == card.Gabarito
	s.RecordAnswer(correct)
	return correct, nil
}

// RecordAnswer increments the score iff correct. It does not guard against
// repeated calls for the same card; Answer does.
func (s *Session) RecordAnswer(correct bool) {
	if correct {
		s.score++
	}
}

// Advance moves to the next card. On the last card it completes the session
// and returns the result with true. Advancing a completed session returns the
// same result again.
func (s *Session) Advance() (Result, bool) {
	if s.state == Completed {
		return s.Result(), true
	}
	if s.index+1 >= len(s.cards) {
		s.state = Completed
		s.index = len(s.cards)
		return s.Result(), true
	}
	s.index++
	s.answered = false
	return Result{}, false
}

// Result returns the current score and total.
func (s *Session) Result() Result {
	return Result{Score: s.score, Total: len(s.cards)}
}

// Current returns the card being studied. ok is false once completed.
func (s *Session) Current() (model.Flashcard, bool) {
	if s.state == Completed {
		return model.Flashcard{}, false
	}
	return s.cards[s.index], true
}

// Index is the zero-based position of the current card.
func (s *Session) Index() int { return s.index }

// Score is the number of correct answers so far.
func (s *Session) Score() int { return s.score }

// Total is the number of cards in the session.
func (s *Session) Total() int { return len(s.cards) }

// State returns Active or Completed.
func (s *Session) State() State { return s.state }

// Answered reports whether the current card is locked.
func (s *Session) Answered() bool { return s.answered }

// AnswerFor returns the letter chosen for a card id.
func (s *Session) AnswerFor(id string) (string, bool) {
	letter, ok := s.answers[id]
	return letter, ok
}

// Cards returns a copy of the session order.
func (s *Session) Cards() []model.Flashcard {
	out := make([]model.Flashcard, len(s.cards))
	copy(out, s.cards)
	return out
}

// Progress returns the share of cards already passed, in [0,1].
func (s *Session) Progress() float64 {
	if len(s.cards) == 0 {
		return 0
	}
	done := s.index
	if s.answered && s.state == Active {
		done++
	}
	return float64(done) / float64(len(s.cards))
}
