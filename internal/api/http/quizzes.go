package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/quizplay/internal/auth/middleware"
	"github.com/mind-engage/quizplay/internal/quiz"
	"github.com/mind-engage/quizplay/internal/rbac"
	"github.com/mind-engage/quizplay/internal/storage"
)

// Non-admin authors may create at most this many quizzes per window.
const (
	createLimit       = 50
	createLimitWindow = 24 * time.Hour
)

type quizRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (q quizRequest) valid() bool {
	return strings.TrimSpace(q.Question) != "" && strings.TrimSpace(q.Answer) != ""
}

// mayModify reports whether the caller can change q: either a blanket
// "<action>-any" permission or "<action>-own" on a quiz they wrote.
func mayModify(r *http.Request, q quiz.Quiz, action string) bool {
	ctx := r.Context()
	if rbac.Allowed(ctx, action+"-any") {
		return true
	}
	sub := auth.SubjectFromContext(ctx)
	return sub != "" && sub == q.AuthorID && rbac.Allowed(ctx, action+"-own")
}

// ListQuizzesHandler serves GET /quizzes?q=&author=&favourites=1&limit=&offset=
// and GET /users/{userID}/quizzes. Answers are never included; quizzes the
// signed-in caller marked carry favourite=true.
func ListQuizzesHandler(repo quiz.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := r.URL.Query()
		opts := quiz.ListOpts{
			Q:        v.Get("q"),
			AuthorID: v.Get("author"),
			Limit:    parseIntDefault(v.Get("limit"), 50),
			Offset:   max(parseIntDefault(v.Get("offset"), 0), 0),
		}
		if uid := chi.URLParam(r, "userID"); uid != "" {
			opts.AuthorID = uid
		}
		sub := auth.SubjectFromContext(r.Context())
		if truthy(v.Get("favourites")) {
			if sub == "" {
				http.Error(w, "sign in to list favourites", http.StatusUnauthorized)
				return
			}
			opts.FavouritesOf = sub
		}
		qs, err := repo.ListQuizzes(r.Context(), opts)
		if err != nil {
			fail(w, r, err)
			return
		}
		for i := range qs {
			qs[i] = qs[i].Public()
		}
		if err := markFavourites(r.Context(), repo, sub, qs); err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

func GetQuizHandler(repo quiz.Repository) http.HandlerFunc {
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
		if !mayModify(r, q, "quiz:edit") {
			q = q.Public()
		}
		one := []quiz.Quiz{q}
		if err := markFavourites(r.Context(), repo, auth.SubjectFromContext(r.Context()), one); err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, one[0])
	}
}

func CreateQuizHandler(repo quiz.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in quizRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || !in.valid() {
			http.Error(w, "question and answer required", http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		author := auth.SubjectFromContext(ctx)
		if rbac.RoleFromContext(ctx) != "admin" {
			n, err := repo.CountByAuthorSince(ctx, author, time.Now().Add(-createLimitWindow).Unix())
			if err != nil {
				fail(w, r, err)
				return
			}
			if n >= createLimit {
				http.Error(w, "quiz creation limit reached, try again later", http.StatusTooManyRequests)
				return
			}
		}
		q, err := repo.CreateQuiz(ctx, quiz.Quiz{
			Question: strings.TrimSpace(in.Question),
			Answer:   strings.TrimSpace(in.Answer),
			AuthorID: author,
		})
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

func UpdateQuizHandler(repo quiz.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(chi.URLParam(r, "quizID"))
		if !ok {
			http.Error(w, "bad quiz id", http.StatusBadRequest)
			return
		}
		var in quizRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || !in.valid() {
			http.Error(w, "question and answer required", http.StatusBadRequest)
			return
		}
		cur, err := repo.GetQuiz(r.Context(), id)
		if err != nil {
			fail(w, r, err)
			return
		}
		if !mayModify(r, cur, "quiz:edit") {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		cur.Question = strings.TrimSpace(in.Question)
		cur.Answer = strings.TrimSpace(in.Answer)
		q, err := repo.UpdateQuiz(r.Context(), cur)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// DeleteQuizHandler removes the quiz and then its attachment blob, if any.
func DeleteQuizHandler(repo quiz.Repository, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(chi.URLParam(r, "quizID"))
		if !ok {
			http.Error(w, "bad quiz id", http.StatusBadRequest)
			return
		}
		cur, err := repo.GetQuiz(r.Context(), id)
		if err != nil {
			fail(w, r, err)
			return
		}
		if !mayModify(r, cur, "quiz:delete") {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if err := repo.DeleteQuiz(r.Context(), id); err != nil {
			fail(w, r, err)
			return
		}
		if cur.AttachmentKey != "" {
			if err := bs.Delete(r.Context(), cur.AttachmentKey); err != nil {
				log.Printf("delete attachment %s: %v", cur.AttachmentKey, err)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
