package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/quizplay/internal/quiz"
)

// markFavourites sets Favourite on the quizzes userID has marked. Anonymous
// callers get the list untouched.
func markFavourites(ctx context.Context, repo quiz.Repository, userID string, qs []quiz.Quiz) error {
	if userID == "" || len(qs) == 0 {
		return nil
	}
	ids := make([]int64, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	marks, err := repo.Favourites(ctx, userID, ids)
	if err != nil {
		return err
	}
	for i := range qs {
		qs[i].Favourite = marks[qs[i].ID]
	}
	return nil
}

// FavouriteHandler serves PUT (on=true) and DELETE (on=false) of
// /users/{userID}/favourites/{quizID}.
func FavouriteHandler(repo quiz.Repository, on bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID, ok := pathID(chi.URLParam(r, "quizID"))
		if !ok {
			http.Error(w, "bad quiz id", http.StatusBadRequest)
			return
		}
		if err := repo.SetFavourite(r.Context(), chi.URLParam(r, "userID"), quizID, on); err != nil {
			fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
