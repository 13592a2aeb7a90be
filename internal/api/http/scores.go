package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/quizplay/internal/scores"
	"github.com/mind-engage/quizplay/internal/users"
)

const rankingPageSize = 10

// Ranker serves the leaderboard.
type Ranker interface {
	Ranking(ctx context.Context, limit, offset int) ([]users.RankingEntry, error)
	Count(ctx context.Context) (int, error)
}

// PutScoreHandler merges client-reported run scores into the user's best.
// Body: {"score_normal": n, "score_multiple": m}, either key optional.
func PutScoreHandler(rec *scores.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in scores.ModeScores
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		u, err := rec.Reconcile(r.Context(), chi.URLParam(r, "userID"), in)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func ResetScoreHandler(rec *scores.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := rec.Reset(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// RankingHandler serves GET /ranking?page=&page_size=, pages counted from 1.
func RankingHandler(store Ranker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := max(parseIntDefault(q.Get("page"), 1), 1)
		size := parseIntDefault(q.Get("page_size"), rankingPageSize)
		if size <= 0 || size > 100 {
			size = rankingPageSize
		}
		entries, err := store.Ranking(r.Context(), size, (page-1)*size)
		if err != nil {
			fail(w, r, err)
			return
		}
		total, err := store.Count(r.Context())
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"page":      page,
			"page_size": size,
			"total":     total,
			"pages":     (total + size - 1) / size,
			"entries":   entries,
		})
	}
}
