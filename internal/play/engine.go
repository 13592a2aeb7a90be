package play

import (
	"context"
	"math/rand"
	"time"

	"github.com/mind-engage/quizplay/internal/grading"
	"github.com/mind-engage/quizplay/internal/quiz"
)

// Draw is what a player sees after asking for the next quiz.
type Draw struct {
	Quiz    quiz.Quiz `json:"quiz"`              // answer stripped
	Options []string  `json:"options,omitempty"` // multiple mode only
	Score   int       `json:"score"`

	// Completed is set when no unplayed quiz was left. FinalScore carries the
	// score reached before the round was reset.
	Completed  bool `json:"completed"`
	FinalScore int  `json:"final_score,omitempty"`
}

// Result is the outcome of one submitted answer.
type Result struct {
	QuizID      int64  `json:"quiz_id"`
	Correct     bool   `json:"correct"`
	Answer      string `json:"answer"`
	ScoreBefore int    `json:"score_before"`
	ScoreAfter  int    `json:"score_after"`
}

// Engine runs rounds against a quiz store. It holds no per-session state:
// every call takes the current Round and returns the next one.
type Engine struct {
	store       quiz.Store
	selector    *Selector
	distractors *Distractors
	poolSize    int
}

type Option func(*Engine)

func WithPoolSize(n int) Option { return func(e *Engine) { e.poolSize = n } }

// WithRand fixes the shuffle source (tests).
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.distractors = NewDistractors(e.store, r) }
}

func NewEngine(store quiz.Store, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		selector:    NewSelector(store),
		distractors: NewDistractors(store, rand.New(rand.NewSource(time.Now().UnixNano()))),
		poolSize:    DefaultPoolSize,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Draw picks the next quiz for round. On a store error the round comes back
// unchanged.
func (e *Engine) Draw(ctx context.Context, mode Mode, round Round) (Draw, Round, error) {
	next := round.Normalize()

	q, ok, err := e.selector.NextQuiz(ctx, next.PlayedIDs)
	if err != nil {
		return Draw{}, round, err
	}
	if !ok {
		return Draw{Completed: true, FinalScore: next.Score}, Round{}, nil
	}

	d := Draw{Quiz: q.Public(), Score: next.Score}
	if mode == ModeMultiple {
		opts, err := e.distractors.BuildOptions(ctx, q.Answer, e.poolSize)
		if err != nil {
			return Draw{}, round, err
		}
		d.Options = opts
	}
	return d, next, nil
}

// Check evaluates submitted against quiz quizID. For multiple mode submitted is
// the text of the chosen option. The round is only advanced once the quiz has
// been loaded.
func (e *Engine) Check(ctx context.Context, round Round, quizID int64, submitted string) (Result, Round, error) {
	q, err := e.store.GetQuiz(ctx, quizID)
	if err != nil {
		return Result{}, round, err
	}
	round = round.Normalize()
	ok := grading.Check(submitted, q.Answer)
	next := round.Record(q.ID, ok)
	return Result{
		QuizID:      q.ID,
		Correct:     ok,
		Answer:      submitted,
		ScoreBefore: round.Score,
		ScoreAfter:  next.Score,
	}, next, nil
}
