package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/mind-engage/quizplay/internal/api/http"
	auth "github.com/mind-engage/quizplay/internal/auth/middleware"
	"github.com/mind-engage/quizplay/internal/config"
	"github.com/mind-engage/quizplay/internal/db"
	"github.com/mind-engage/quizplay/internal/play"
	"github.com/mind-engage/quizplay/internal/quiz"
	"github.com/mind-engage/quizplay/internal/scores"
	"github.com/mind-engage/quizplay/internal/session"
	"github.com/mind-engage/quizplay/internal/storage"
	"github.com/mind-engage/quizplay/internal/users"
)

func main() {
	// .env is optional; real environment wins
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("dotenv: %v", err)
	}
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	quizzes := quiz.NewSQLStore(dbh)
	accounts := users.NewSQLStore(dbh)
	if err := accounts.EnsureAdmin(ctx, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	// --- Sessions ---
	var sessions session.Store
	switch cfg.SessionDriver {
	case "redis":
		rdb, err := session.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
	case "memory", "":
		sessions = session.NewMemoryStore()
	default:
		log.Fatalf("unsupported session driver: %s", cfg.SessionDriver)
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	engine := play.NewEngine(quizzes,
		play.WithPoolSize(cfg.OptionPoolSize),
		play.WithRand(rand.New(rand.NewSource(time.Now().UnixNano()))),
	)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.Mount(r, api.Deps{
		Auth:    auth.NewAuthService(cfg.AuthSecret),
		Quizzes: quizzes,
		Users:   accounts,
		Blobs:   bs,
		Play: api.Play{
			Engine:     engine,
			Sessions:   sessions,
			Reconciler: scores.NewReconciler(accounts),
		},
		SecureCookies: cfg.SecureCookies,
		SessionTTL:    cfg.SessionTTL,
		Ready:         dbh.PingContext,
	})

	log.Printf("listening on %s (mode=%s, db=%s, sessions=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.SessionDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
