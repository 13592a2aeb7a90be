package play

import (
	"context"
	"math/rand"
	"sync"

	"github.com/mind-engage/quizplay/internal/grading"
	"github.com/mind-engage/quizplay/internal/quiz"
)

const DefaultPoolSize = 3

// Distractors builds the option list for multiple-choice rounds.
type Distractors struct {
	store quiz.Store

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewDistractors(store quiz.Store, rnd *rand.Rand) *Distractors {
	return &Distractors{store: store, rnd: rnd}
}

// BuildOptions returns the correct answer plus up to poolSize decoys in random
// order. Decoys are distinct from each other and from correct after
// normalization. When the store holds fewer alternatives the result is
// shorter than poolSize+1; it is never padded.
func (d *Distractors) BuildOptions(ctx context.Context, correct string, poolSize int) ([]string, error) {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	options := make([]string, 0, poolSize+1)
	options = append(options, correct)
	seen := map[string]struct{}{grading.Key(correct): {}}
	exclude := []string{correct}

	for len(options) < poolSize+1 {
		want := poolSize + 1 - len(options)
		batch, err := d.store.RandomAnswers(ctx, exclude, want)
		if err != nil {
			return nil, err
		}
		for _, a := range batch {
			exclude = append(exclude, a)
			k := grading.Key(a)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			options = append(options, a)
		}
		if len(batch) < want {
			break // store ran out
		}
	}

	d.mu.Lock()
	Shuffle(d.rnd, options)
	d.mu.Unlock()
	return options, nil
}

// Shuffle permutes s in place with Fisher-Yates, walking from the last index
// down and swapping i with a uniform j in [0, i].
func Shuffle[T any](r *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
