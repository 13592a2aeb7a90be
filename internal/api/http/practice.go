package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/quizplay/internal/auth/middleware"
	"github.com/mind-engage/quizplay/internal/grading"
	"github.com/mind-engage/quizplay/internal/quiz"
)

// Practice on a single quiz. Nothing here touches session rounds or scores.

type practiceResult struct {
	QuizID  int64  `json:"quiz_id"`
	Answer  string `json:"answer"`
	Correct bool   `json:"correct"`
}

// PracticePlayHandler serves GET /quizzes/{quizID}/play?answer=, echoing a
// previous attempt back so the client can prefill it.
func PracticePlayHandler(repo quiz.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(chi.URLParam(r, "quizID"))
		if !ok {
			http.Error(w, "bad quiz id", http.StatusBadRequest)
			return
		}
		q, err := repo.GetQuiz(r.Context(), id)
		if err != nil {
			fail(w, r, err)
			return
		}
		one := []quiz.Quiz{q.Public()}
		if err := markFavourites(r.Context(), repo, auth.SubjectFromContext(r.Context()), one); err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"quiz":   one[0],
			"answer": r.URL.Query().Get("answer"),
		})
	}
}

// PracticeCheckHandler serves GET /quizzes/{quizID}/check?answer=.
func PracticeCheckHandler(repo quiz.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(chi.URLParam(r, "quizID"))
		if !ok {
			http.Error(w, "bad quiz id", http.StatusBadRequest)
			return
		}
		q, err := repo.GetQuiz(r.Context(), id)
		if err != nil {
			fail(w, r, err)
			return
		}
		answer := r.URL.Query().Get("answer")
		writeJSON(w, http.StatusOK, practiceResult{
			QuizID:  q.ID,
			Answer:  answer,
			Correct: grading.Check(answer, q.Answer),
		})
	}
}
