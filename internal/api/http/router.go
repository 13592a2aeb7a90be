package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/quizplay/internal/auth/middleware"
	"github.com/mind-engage/quizplay/internal/quiz"
	"github.com/mind-engage/quizplay/internal/rbac"
	"github.com/mind-engage/quizplay/internal/scores"
	"github.com/mind-engage/quizplay/internal/session"
	"github.com/mind-engage/quizplay/internal/storage"
)

// AccountStore is everything the routes need from the user store.
type AccountStore interface {
	UserStore
	Ranker
	auth.UserFinder
	scores.ScoreStore
}

type Deps struct {
	Auth    *auth.AuthService
	Quizzes quiz.Repository
	Users   AccountStore
	Blobs   storage.BlobStore
	Play    Play

	SecureCookies bool
	SessionTTL    time.Duration

	// Ready is consulted by /readyz; nil means always ready.
	Ready func(ctx context.Context) error
}

func isSelf(r *http.Request) bool {
	sub := auth.SubjectFromContext(r.Context())
	return sub != "" && sub == chi.URLParam(r, "userID")
}

// Mount registers every route on r. Global middleware (logging, CORS, ...)
// is the caller's business; session and auth middleware are applied here.
func Mount(r chi.Router, d Deps) {
	rec := d.Play.Reconciler
	ttl := d.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	r.Post("/auth/login", auth.LoginHandler(d.Auth, d.Users))
	r.Post("/users", RegisterHandler(d.Users))
	r.Get("/ranking", RankingHandler(d.Users))
	r.Get("/attachments/*", AttachmentHandler(d.Blobs))

	// Browsing and practice are public; a token adds favourite marks.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.OptionalJWT(d.Auth))
		pr.Get("/quizzes", ListQuizzesHandler(d.Quizzes))
		pr.Get("/users/{userID}/quizzes", ListQuizzesHandler(d.Quizzes))
		pr.Get("/quizzes/{quizID}", GetQuizHandler(d.Quizzes))
		pr.Get("/quizzes/{quizID}/play", PracticePlayHandler(d.Quizzes))
		pr.Get("/quizzes/{quizID}/check", PracticeCheckHandler(d.Quizzes))
	})

	// Play is open to anonymous visitors; a bearer token only adds score flushing.
	r.Group(func(pr chi.Router) {
		pr.Use(session.Middleware(d.SecureCookies, ttl), auth.OptionalJWT(d.Auth))
		pr.Get("/play/{mode}", d.Play.DrawHandler())
		pr.Post("/play/{mode}/{quizID}/check", d.Play.CheckHandler())
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))

		pr.With(rbac.Require("users:list")).
			Get("/users", ListUsersHandler(d.Users))
		pr.With(rbac.RequireOwnerOr("users:list", isSelf)).
			Get("/users/{userID}", GetUserHandler(d.Users))
		pr.With(rbac.RequireOwnerOr("scores:write-any", isSelf)).
			Put("/users/{userID}/score", PutScoreHandler(rec))
		pr.With(rbac.Require("scores:reset")).
			Post("/users/{userID}/score/reset", ResetScoreHandler(rec))
		pr.With(rbac.RequireOwnerOr("favourites:write-any", isSelf)).
			Put("/users/{userID}/favourites/{quizID}", FavouriteHandler(d.Quizzes, true))
		pr.With(rbac.RequireOwnerOr("favourites:write-any", isSelf)).
			Delete("/users/{userID}/favourites/{quizID}", FavouriteHandler(d.Quizzes, false))

		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", CreateQuizHandler(d.Quizzes))
		// ownership is checked per quiz inside the handlers
		pr.Put("/quizzes/{quizID}", UpdateQuizHandler(d.Quizzes))
		pr.Delete("/quizzes/{quizID}", DeleteQuizHandler(d.Quizzes, d.Blobs))
		pr.Post("/quizzes/{quizID}/attachment", UploadAttachmentHandler(d.Quizzes, d.Blobs))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
}
