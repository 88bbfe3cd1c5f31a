package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campsite/internal/auth"
	"campsite/internal/campgrounds"
	"campsite/internal/captcha"
	"campsite/internal/comments"
	"campsite/internal/config"
	"campsite/internal/contact"
	"campsite/internal/geocode"
	"campsite/internal/logging"
	"campsite/internal/mail"
	mw "campsite/internal/middleware"
	"campsite/internal/store"
	"campsite/internal/users"
	"campsite/internal/web"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb)

	// ── MinIO ────────────────────────────────────────────────
	minioStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		log.Fatalf("minio connect: %v", err)
	}

	// ── External clients ─────────────────────────────────────
	geocoder := geocode.New(cfg.GeocoderAPIKey)
	verifier := captcha.New(cfg.CaptchaSecret)
	mailer := mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)

	// ── Views ────────────────────────────────────────────────
	view, err := web.NewRenderer(sessions, logger)
	if err != nil {
		log.Fatalf("templates: %v", err)
	}

	// ── Handlers ─────────────────────────────────────────────
	authSvc := auth.NewService(pgStore, mailer, cfg.AdminCode, cfg.BaseURL)
	authHandler := auth.NewHandler(authSvc, sessions, view, logger, web.SetSessionCookie)

	orch := campgrounds.NewOrchestrator(geocoder, minioStore, mongoStore)
	cgHandler := campgrounds.NewHandler(mongoStore, orch, view, logger)
	cmHandler := comments.NewHandler(mongoStore, view, logger)

	profileUpdater := users.NewProfileUpdater(pgStore, minioStore)
	userHandler := users.NewHandler(pgStore, mongoStore, profileUpdater, view, logger)

	contactHandler := contact.NewHandler(verifier, mailer, cfg.ContactEmail, view, logger)

	// ── Middleware ───────────────────────────────────────────
	requireLogin := mw.RequireLogin(view)
	cgOwnership := mw.CampgroundOwnership(mongoStore, view)
	cmOwnership := mw.CommentOwnership(mongoStore, view)
	userOwnership := mw.UserOwnership(pgStore, view)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(web.MethodOverride)
	r.Use(mw.CurrentUser(sessions, pgStore))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		view.Render(w, r, "landing", nil)
	})

	// Auth
	r.Get("/register", authHandler.RegisterForm)
	r.Post("/register", authHandler.Register)
	r.Get("/login", authHandler.LoginForm)
	r.Post("/login", authHandler.Login)
	r.Get("/logout", authHandler.Logout)
	r.Get("/forgot", authHandler.ForgotForm)
	r.Post("/forgot", authHandler.Forgot)
	r.Get("/reset/{token}", authHandler.ResetForm)
	r.Post("/reset/{token}", authHandler.Reset)

	// Campgrounds
	r.Route("/campgrounds", func(r chi.Router) {
		r.Get("/", cgHandler.Index)
		r.With(requireLogin).Get("/new", cgHandler.NewForm)
		r.With(requireLogin).Post("/", cgHandler.Create)
		r.Get("/{id}", cgHandler.Show)
		r.With(cgOwnership).Get("/{id}/edit", cgHandler.EditForm)
		r.With(cgOwnership).Put("/{id}", cgHandler.Update)
		r.With(cgOwnership).Delete("/{id}", cgHandler.Destroy)

		// Comments (nested)
		r.Route("/{id}/comments", func(r chi.Router) {
			r.With(requireLogin).Get("/new", cmHandler.NewForm)
			r.With(requireLogin).Post("/", cmHandler.Create)
			r.With(cmOwnership).Get("/{comment_id}/edit", cmHandler.EditForm)
			r.With(cmOwnership).Put("/{comment_id}", cmHandler.Update)
			r.With(cmOwnership).Delete("/{comment_id}", cmHandler.Destroy)
		})
	})

	// Users
	r.Route("/users", func(r chi.Router) {
		r.Get("/{id}", userHandler.Show)
		r.With(userOwnership).Get("/{id}/edit", userHandler.EditForm)
		r.With(userOwnership).Put("/{id}", userHandler.Update)
	})

	// Contact
	r.Route("/contact", func(r chi.Router) {
		r.Get("/", contactHandler.Form)
		r.Post("/send", contactHandler.Send)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go func() {
		logger.Info(ctx, "server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
