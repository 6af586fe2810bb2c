package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/mylibrary-be/internal/api"
	"github.com/isdelr/mylibrary-be/internal/auth"
	"github.com/isdelr/mylibrary-be/internal/config"
	"github.com/isdelr/mylibrary-be/internal/database"
	"github.com/isdelr/mylibrary-be/internal/logger"
	"github.com/isdelr/mylibrary-be/internal/mail"
	"github.com/isdelr/mylibrary-be/internal/monitoring"
	"github.com/isdelr/mylibrary-be/internal/repository"
	"github.com/isdelr/mylibrary-be/internal/services"
)

func main() {
	logger.Init()

	// Load configuration; a missing JWT secret refuses to start here.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Token codec holds the single process-wide signing secret.
	codec, err := auth.NewCodec(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token codec")
	}

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	// Set up repositories and services
	userRepo := repository.NewUserRepository(db)
	sessionService := services.NewSessionService(userRepo, codec, mailer, cfg)
	userService := services.NewUserService(userRepo)
	bookService := services.NewBookService(db)
	addressService := services.NewAddressService(db)

	guard := auth.NewGuard(codec, userRepo)

	// Background sweep of stale unverified accounts
	janitor := monitoring.NewAccountJanitor(userRepo, cfg.UnverifiedMaxAge)
	janitor.Start()

	// Set up router
	router := api.NewRouter(cfg, guard, sessionService, userService, bookService, addressService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	janitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
