package play

import (
	"errors"

	"github.com/samber/lo"
)

type Mode string

const (
	ModeNormal   Mode = "normal"   // free-text answer
	ModeMultiple Mode = "multiple" // pick one of the shuffled options
)

var ErrUnknownMode = errors.New("unknown play mode")

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeNormal, ModeMultiple:
		return Mode(s), nil
	}
	return "", ErrUnknownMode
}

// Round is the running state of one mode within one visitor session.
// Score == 0 if and only if PlayedIDs is empty.
type Round struct {
	PlayedIDs []int64 `json:"played_ids,omitempty"`
	Score     int     `json:"score"`
}

// Normalize restores the invariant on state loaded from an untrusted bag:
// a zero score drops any played ids.
func (r Round) Normalize() Round {
	if r.Score <= 0 {
		return Round{}
	}
	return r
}

// Record applies an evaluated answer. A correct answer excludes quizID for the
// rest of the round and bumps the score; a wrong one resets both. A quiz
// already answered in this round scores nothing the second time.
func (r Round) Record(quizID int64, correct bool) Round {
	if !correct {
		return Round{}
	}
	if lo.Contains(r.PlayedIDs, quizID) {
		return r
	}
	played := make([]int64, 0, len(r.PlayedIDs)+1)
	played = append(played, r.PlayedIDs...)
	played = append(played, quizID)
	return Round{PlayedIDs: played, Score: r.Score + 1}
}
