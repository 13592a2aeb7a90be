package play

import (
	"context"

	"github.com/mind-engage/quizplay/internal/quiz"
)

// Selector draws the next quiz of a round.
type Selector struct {
	store quiz.Store
}

func NewSelector(store quiz.Store) *Selector {
	return &Selector{store: store}
}

// NextQuiz returns a random quiz whose id is not in excluded. ok is false once
// every quiz has been excluded; that ends the round and is not an error.
func (s *Selector) NextQuiz(ctx context.Context, excluded []int64) (quiz.Quiz, bool, error) {
	return s.store.RandomQuiz(ctx, excluded)
}
