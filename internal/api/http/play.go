package http

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/quizplay/internal/auth/middleware"
	"github.com/mind-engage/quizplay/internal/play"
	"github.com/mind-engage/quizplay/internal/scores"
	"github.com/mind-engage/quizplay/internal/session"
	"github.com/mind-engage/quizplay/internal/users"
)

// Play bundles what the play routes share.
type Play struct {
	Engine     *play.Engine
	Sessions   session.Store
	Reconciler *scores.Reconciler
}

type checkResponse struct {
	play.Result
	RunOver bool        `json:"run_over"`
	User    *users.User `json:"user,omitempty"` // persisted scores after a flush
}

type drawResponse struct {
	play.Draw
	User *users.User `json:"user,omitempty"`
}

// flush persists a finished run for a signed-in player. Failures are logged
// and do not fail the request: the session has already moved on.
func (p Play) flush(ctx context.Context, mode play.Mode, score int) *users.User {
	sub := auth.SubjectFromContext(ctx)
	if sub == "" || score <= 0 || p.Reconciler == nil {
		return nil
	}
	u, err := p.Reconciler.Flush(ctx, sub, mode, score)
	if err != nil {
		log.Printf("score flush for %s (%s=%d): %v", sub, mode, score, err)
		return nil
	}
	return &u
}

// DrawHandler serves GET /play/{mode}.
func (p Play) DrawHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := play.ParseMode(chi.URLParam(r, "mode"))
		if err != nil {
			http.Error(w, "unknown mode", http.StatusNotFound)
			return
		}
		ctx := r.Context()
		sid := session.IDFromContext(ctx)
		st, err := session.Load(ctx, p.Sessions, sid)
		if err != nil {
			fail(w, r, err)
			return
		}

		d, next, err := p.Engine.Draw(ctx, mode, st.Round(mode))
		if err != nil {
			fail(w, r, err)
			return
		}
		if err := p.Sessions.Put(ctx, sid, st.WithRound(mode, next)); err != nil {
			fail(w, r, err)
			return
		}

		resp := drawResponse{Draw: d}
		if d.Completed {
			resp.User = p.flush(ctx, mode, d.FinalScore)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// CheckHandler serves POST /play/{mode}/{quizID}/check. Normal mode reads the
// "answer" field, multiple mode the "option" field.
func (p Play) CheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := play.ParseMode(chi.URLParam(r, "mode"))
		if err != nil {
			http.Error(w, "unknown mode", http.StatusNotFound)
			return
		}
		quizID, ok := pathID(chi.URLParam(r, "quizID"))
		if !ok {
			http.Error(w, "bad quiz id", http.StatusBadRequest)
			return
		}
		field := "answer"
		if mode == play.ModeMultiple {
			field = "option"
		}
		submitted, err := formOrJSON(r, field)
		if err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		sid := session.IDFromContext(ctx)
		st, err := session.Load(ctx, p.Sessions, sid)
		if err != nil {
			fail(w, r, err)
			return
		}

		res, next, err := p.Engine.Check(ctx, st.Round(mode), quizID, submitted)
		if err != nil {
			fail(w, r, err)
			return
		}
		if err := p.Sessions.Put(ctx, sid, st.WithRound(mode, next)); err != nil {
			fail(w, r, err)
			return
		}

		resp := checkResponse{Result: res, RunOver: !res.Correct}
		if resp.RunOver {
			resp.User = p.flush(ctx, mode, res.ScoreBefore)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
