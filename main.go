package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"navibu-api/config"
	"navibu-api/database"
	routes "navibu-api/internal/app/http"
	"navibu-api/internal/app/http/middleware"
	"navibu-api/internal/auth"
	"navibu-api/internal/domain/transit"
	"navibu-api/internal/domain/users"
	"navibu-api/internal/infra/mail"
	"navibu-api/internal/logger"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("logger: %v", err)
	}

	db, err := database.Open(cfg.DBURL)
	if err != nil {
		logger.Log.Fatalw("failed to connect to database", "err", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatalw("failed to migrate database", "err", err)
	}
	if cfg.RoutesSeedFile != "" {
		if _, err := database.SeedRoutesFromFile(context.Background(), db, cfg.RoutesSeedFile); err != nil {
			logger.Log.Fatalw("failed to seed routes", "file", cfg.RoutesSeedFile, "err", err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.Fatalw("failed to get sql.DB", "err", err)
	}

	var mailer users.Notifier = mail.LogMailer{}
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		logger.Log.Warn("SMTP_HOST not set, codes will be written to the log instead of mailed")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	accounts := users.NewService(db, auth.NewPasswordHasher(), tokens, mailer,
		users.WithCodeTTLs(cfg.VerificationCodeTTL, cfg.ResetCodeTTL))
	routeSelections := transit.NewService(db)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger.Log))

	// CORS must be registered before the routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Accounts: accounts,
		Routes:   routeSelections,
		Tokens:   tokens,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Log.Infow("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalw("server failed", "err", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				logger.Log.Info("shutting down http server")
				return srv.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	if err := sqlDB.Close(); err != nil {
		logger.Log.Errorw("failed to close database", "err", err)
	}
	logger.Log.Infow("server stopped", "exit_code", exitCode)
	logger.Sync()
	os.Exit(exitCode)
}
