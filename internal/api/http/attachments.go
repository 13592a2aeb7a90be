package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/quizplay/internal/quiz"
	"github.com/mind-engage/quizplay/internal/storage"
)

const maxAttachmentBytes = 10 << 20

// UploadAttachmentHandler stores the multipart "file" part as the quiz's
// attachment, replacing any previous one.
func UploadAttachmentHandler(repo quiz.Repository, bs storage.BlobStore) http.HandlerFunc {
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
		if !mayModify(r, cur, "quiz:edit") {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentBytes)
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		key, err := bs.Put(r.Context(), storage.AttachmentKey(id), f)
		if err != nil {
			fail(w, r, err)
			return
		}
		if err := repo.SetAttachment(r.Context(), id, key); err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key})
	}
}

// AttachmentHandler serves GET /attachments/* with the rest of the path as key.
func AttachmentHandler(bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		if key == "" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		rc, err := bs.Get(r.Context(), key)
		if err != nil {
			fail(w, r, err)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	}
}
