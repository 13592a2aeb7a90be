package quiz

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("quiz not found")

// Store is the read surface the play engine draws from.
//
// RandomQuiz returns ok=false with a nil error when every quiz is excluded.
// RandomAnswers returns at most n distinct answer values not listed in exclude,
// in random order; fewer (or none) when the store runs out.
type Store interface {
	RandomQuiz(ctx context.Context, excludeIDs []int64) (q Quiz, ok bool, err error)
	RandomAnswers(ctx context.Context, exclude []string, n int) ([]string, error)
	GetQuiz(ctx context.Context, id int64) (Quiz, error)
}

// Repository adds the authoring operations used by the quiz handlers.
type Repository interface {
	Store
	CreateQuiz(ctx context.Context, q Quiz) (Quiz, error)
	UpdateQuiz(ctx context.Context, q Quiz) (Quiz, error)
	DeleteQuiz(ctx context.Context, id int64) error
	ListQuizzes(ctx context.Context, opts ListOpts) ([]Quiz, error)
	CountByAuthorSince(ctx context.Context, authorID string, since int64) (int, error)
	SetAttachment(ctx context.Context, id int64, key string) error

	// SetFavourite marks (on) or unmarks quizID for userID. Both directions
	// are idempotent; an unknown quiz is ErrNotFound.
	SetFavourite(ctx context.Context, userID string, quizID int64, on bool) error
	// Favourites reports which of quizIDs userID has marked.
	Favourites(ctx context.Context, userID string, quizIDs []int64) (map[int64]bool, error)
}
