package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mwilde345/givehub/internal/campaign"
	campaignStore "github.com/mwilde345/givehub/internal/campaign/store"
	"github.com/mwilde345/givehub/internal/config"
	"github.com/mwilde345/givehub/internal/database"
	"github.com/mwilde345/givehub/internal/donation"
	donationStore "github.com/mwilde345/givehub/internal/donation/store"
	givehubHttp "github.com/mwilde345/givehub/internal/http"
	authHandler "github.com/mwilde345/givehub/internal/http/auth"
	campaignHandler "github.com/mwilde345/givehub/internal/http/campaign"
	donationHandler "github.com/mwilde345/givehub/internal/http/donation"
	"github.com/mwilde345/givehub/internal/http/middleware"
	userHandler "github.com/mwilde345/givehub/internal/http/user"
	"github.com/mwilde345/givehub/internal/mail"
	"github.com/mwilde345/givehub/internal/reconcile"
	"github.com/mwilde345/givehub/internal/user"
	userStore "github.com/mwilde345/givehub/internal/user/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.JWT.Secret == "" {
		slog.Error("JWT_SECRET must be set")
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	mailer, err := mail.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	if err != nil {
		slog.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}

	var (
		userService     = user.NewService(userStore.New(db), mailer)
		campaignLedger  = campaignStore.New(db)
		campaignService = campaign.NewService(campaignLedger)
		donationService = donation.NewService(donationStore.New(db), campaignLedger, mailer)
	)

	var (
		authH     = authHandler.NewHandler(userService, cfg.JWT.Secret, cfg.JWT.TTL)
		usersH    = userHandler.NewHandler(userService)
		campaignH = campaignHandler.NewHandler(campaignService)
		donationH = donationHandler.NewHandler(donationService)
	)

	authn := middleware.Authenticator(cfg.JWT.Secret, userService)
	router := givehubHttp.New(authH, usersH, campaignH, donationH, authn, cfg.AllowedOrigins())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go reconcile.New(db).Run(ctx, cfg.Reconcile.Interval)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		slog.Info("starting server", "port", cfg.App.Port, "env", cfg.App.Env)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
