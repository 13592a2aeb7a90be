package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/mind-engage/quizplay/internal/play"
	"github.com/mind-engage/quizplay/internal/quiz"
	"github.com/mind-engage/quizplay/internal/scores"
	"github.com/mind-engage/quizplay/internal/storage"
	"github.com/mind-engage/quizplay/internal/users"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail maps domain errors onto status codes. Anything unrecognised is a 500
// and gets logged.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, quiz.ErrNotFound),
		errors.Is(err, users.ErrNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, play.ErrUnknownMode):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, users.ErrUsernameTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, scores.ErrNegativeScore):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func pathID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

// formOrJSON reads a single string field from a JSON object body or from
// form values, depending on Content-Type. A missing field is "".
func formOrJSON(r *http.Request, field string) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", err
		}
		switch v := body[field].(type) {
		case string:
			return v, nil
		case nil:
			return "", nil
		default:
			b, _ := json.Marshal(v)
			return string(b), nil
		}
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.FormValue(field), nil
}
