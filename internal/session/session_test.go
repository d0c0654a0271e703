package session

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/checkcard/internal/model"
)

func deck(n int) []model.Flashcard {
	cards := make([]model.Flashcard, n)
	for i := range cards {
		cards[i] = model.Flashcard{
			ID:       fmt.Sprintf("c%d", i),
			Frente:   fmt.Sprintf("question %d", i),
			Gabarito: model.Letters[i%len(model.Letters)],
		}
	}
	return cards
}

func TestStartRejectsEmptyDeck(t *testing.T) {
	_, err := Start(nil, nil)
	require.ErrorIs(t, err, ErrEmptyDeck)
	_, err = Start([]model.Flashcard{}, InOrder)
	require.ErrorIs(t, err, ErrEmptyDeck)
}

func TestStartCopiesDeck(t *testing.T) {
	cards := deck(5)
	s, err := Start(cards, NewSeededShuffler(7))
	require.NoError(t, err)
	require.Equal(t, Active, s.State())
	require.Zero(t, s.Index())
	require.Zero(t, s.Score())
	require.Equal(t, 5, s.Total())

	got := s.Cards()
	got[0].Frente = "mutated"
	require.NotEqual(t, "mutated", s.Cards()[0].Frente)

	ids := make([]string, 0, len(got))
	for _, c := range s.Cards() {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	require.Equal(t, []string{"c0", "c1", "c2", "c3", "c4"}, ids)
	require.Equal(t, "c0", cards[0].ID)
}

func TestTwoCardScenario(t *testing.T) {
	s, err := Start(deck(2), InOrder)
	require.NoError(t, err)

	card, ok := s.Current()
	require.True(t, ok)
	correct, err := s.Answer(card.Gabarito)
	require.NoError(t, err)
	require.True(t, correct)
	_, done := s.Advance()
	require.False(t, done)
	require.Equal(t, 1, s.Index())

	card, _ = s.Current()
	correct, err = s.Answer("E")
	require.NoError(t, err)
	require.False(t, correct)
	letter, ok := s.AnswerFor(card.ID)
	require.True(t, ok)
	require.Equal(t, "E", letter)

	result, done := s.Advance()
	require.True(t, done)
	require.Equal(t, Result{Score: 1, Total: 2}, result)
	require.Equal(t, Completed, s.State())
	_, ok = s.Current()
	require.False(t, ok)

	again, done := s.Advance()
	require.True(t, done)
	require.Equal(t, result, again)
	require.Equal(t, 2, s.Index())
}

func TestAnswerLocksCard(t *testing.T) {
	s, err := Start(deck(3), InOrder)
	require.NoError(t, err)
	_, err = s.Answer("A")
	require.NoError(t, err)
	require.True(t, s.Answered())
	_, err = s.Answer("A")
	require.ErrorIs(t, err, ErrAlreadyAnswered)
	require.Equal(t, 1, s.Score())

	s.Advance()
	require.False(t, s.Answered())
}

func TestAnswerAfterCompletion(t *testing.T) {
	s, err := Start(deck(1), InOrder)
	require.NoError(t, err)
	_, done := s.Advance()
	require.True(t, done)
	_, err = s.Answer("A")
	require.ErrorIs(t, err, ErrCompleted)
}

func TestRecordAnswer(t *testing.T) {
	s, err := Start(deck(2), InOrder)
	require.NoError(t, err)
	s.RecordAnswer(false)
	require.Zero(t, s.Score())
	s.RecordAnswer(true)
	require.Equal(t, 1, s.Score())
}

func TestInvariantsUnderRandomUse(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		n := 1 + rnd.Intn(8)
		s, err := Start(deck(n), NewSeededShuffler(int64(run)))
		require.NoError(t, err)
		for step := 0; step < 30; step++ {
			if rnd.Intn(2) == 0 {
				_, _ = s.Answer(model.Letters[rnd.Intn(len(model.Letters))])
			} else {
				s.Advance()
			}
			require.LessOrEqual(t, s.Score(), s.Index()+1)
			require.LessOrEqual(t, s.Index(), s.Total())
			require.GreaterOrEqual(t, s.Progress(), 0.0)
			require.LessOrEqual(t, s.Progress(), 1.0)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	cards := deck(10)
	NewSeededShuffler(1).Shuffle(cards)
	seen := map[string]bool{}
	for _, c := range cards {
		seen[c.ID] = true
	}
	require.Len(t, seen, 10)
}

func TestShuffleReachesEveryPosition(t *testing.T) {
	sh := NewSeededShuffler(99)
	firstSeen := map[string]int{}
	for i := 0; i < 3000; i++ {
		cards := deck(3)
		sh.Shuffle(cards)
		firstSeen[cards[0].ID]++
	}
	require.Len(t, firstSeen, 3)
	for id, count := range firstSeen {
		require.InDelta(t, 1000, count, 150, "card %s", id)
	}
}

func TestProgress(t *testing.T) {
	s, err := Start(deck(4), InOrder)
	require.NoError(t, err)
	require.Zero(t, s.Progress())
	_, _ = s.Answer("A")
	require.InDelta(t, 0.25, s.Progress(), 1e-9)
	s.Advance()
	require.InDelta(t, 0.25, s.Progress(), 1e-9)
}
