// Package scores merges per-session run scores into persisted user scores.
//
// A mode score only ever moves up through Reconcile, so applying the same
// update twice, or two updates in either order, ends in the same state.
package scores

import (
	"context"
	"errors"

	"github.com/mind-engage/quizplay/internal/play"
	"github.com/mind-engage/quizplay/internal/users"
)

var ErrNegativeScore = errors.New("scores must not be negative")

// ModeScores carries the incoming run score per mode; nil means "not sent".
type ModeScores struct {
	Normal   *int `json:"score_normal,omitempty"`
	Multiple *int `json:"score_multiple,omitempty"`
}

func (m ModeScores) Validate() error {
	if (m.Normal != nil && *m.Normal < 0) || (m.Multiple != nil && *m.Multiple < 0) {
		return ErrNegativeScore
	}
	return nil
}

// Reconcile applies the high-water-mark rule to u and recomputes the total.
// changed lists the mode fields that moved, always followed by FieldScore.
func Reconcile(u users.User, in ModeScores) (users.User, []users.Field) {
	changed := make([]users.Field, 0, 3)
	if in.Normal != nil && *in.Normal > u.ScoreNormal {
		u.ScoreNormal = *in.Normal
		changed = append(changed, users.FieldScoreNormal)
	}
	if in.Multiple != nil && *in.Multiple > u.ScoreMultiple {
		u.ScoreMultiple = *in.Multiple
		changed = append(changed, users.FieldScoreMultiple)
	}
	u.Score = u.ScoreNormal + u.ScoreMultiple
	changed = append(changed, users.FieldScore)
	return u, changed
}

// ScoreStore is the slice of the user store the reconciler needs.
type ScoreStore interface {
	GetUser(ctx context.Context, id string) (users.User, error)
	SaveScores(ctx context.Context, u users.User, fields []users.Field) error
	ResetScores(ctx context.Context, id string) error
}

type Reconciler struct {
	store ScoreStore
}

func NewReconciler(store ScoreStore) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile loads the user, merges in, and persists the changed fields.
func (r *Reconciler) Reconcile(ctx context.Context, userID string, in ModeScores) (users.User, error) {
	if err := in.Validate(); err != nil {
		return users.User{}, err
	}
	u, err := r.store.GetUser(ctx, userID)
	if err != nil {
		return users.User{}, err
	}
	updated, fields := Reconcile(u, in)
	if err := r.store.SaveScores(ctx, updated, fields); err != nil {
		return users.User{}, err
	}
	return updated, nil
}

// Flush records the final score of a finished run in mode.
func (r *Reconciler) Flush(ctx context.Context, userID string, mode play.Mode, score int) (users.User, error) {
	in := ModeScores{Normal: &score}
	if mode == play.ModeMultiple {
		in = ModeScores{Multiple: &score}
	}
	return r.Reconcile(ctx, userID, in)
}

// Reset is the administrative path that zeroes a user's scores.
func (r *Reconciler) Reset(ctx context.Context, userID string) (users.User, error) {
	if err := r.store.ResetScores(ctx, userID); err != nil {
		return users.User{}, err
	}
	return r.store.GetUser(ctx, userID)
}
