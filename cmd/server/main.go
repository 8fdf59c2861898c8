package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	_ "eventauth/docs" // swagger docs

	"eventauth/internal/auth"
	"eventauth/internal/cache"
	"eventauth/internal/config"
	"eventauth/internal/db"
	"eventauth/internal/handler"
	"eventauth/internal/logging"
	"eventauth/internal/mail"
	"eventauth/internal/model"
	"eventauth/internal/repository"
	"eventauth/internal/router"
	"eventauth/internal/service"
)

const shutdownTimeout = 15 * time.Second

// @title Event Platform Accounts API
// @version 1.0
// @description User accounts for the event platform: password and Google sign-in, emailed one-time passcodes and profile completion.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.New(logging.Options{
		Service: "eventauth",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return err
	}

	// Drop the users table if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		logger.Warn("RESET_DB=true detected, dropping users table")
		if err := gormDB.Migrator().DropTable(&model.User{}); err != nil {
			logger.Warn("drop users table failed", "err", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		return err
	}

	// Outbound clients are built once and shared by every request.
	var sender mail.Sender
	if cfg.MailConfigured() {
		ses, err := mail.NewSESSender(ctx, mail.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
			From:            cfg.DefaultFromEmail,
		})
		if err != nil {
			return err
		}
		sender = ses
	} else {
		logger.Warn("mail not configured: welcome emails are dropped and otp-send is unavailable")
	}
	dispatcher := mail.NewDispatcher(sender, logger)

	var google service.GoogleTokenVerifier
	if cfg.GoogleClientID != "" {
		verifier, err := auth.NewGoogleVerifier(cfg.GoogleClientID, logger)
		if err != nil {
			return err
		}
		google = verifier
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set: Google sign-in rejects every token")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	tokenService := service.NewTokenService(jwtService, tokenStore)
	verifier := service.NewCredentialVerifier(userRepo, google)
	resolver := service.NewAccountResolver(userRepo, verifier, tokenService, dispatcher, logger, cfg.DefaultProfilePicture)
	otpService := service.NewOTPService(userRepo, service.NewRedisOTPLedger(cacheClient), sender, service.OTPTTL, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, logger, jwtService, router.Handlers{
		Auth:    handler.NewAuthHandler(resolver, tokenService),
		Google:  handler.NewGoogleHandler(resolver),
		OTP:     handler.NewOTPHandler(otpService),
		Profile: handler.NewProfileHandler(resolver),
	})

	logger.Info("swagger documentation available", "url", swaggerURL(cfg.SwaggerHost))

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("http server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error("mail dispatcher drain", "err", err)
	}
	logger.Info("server stopped")
	return nil
}

func swaggerURL(host string) string {
	switch {
	case host == "":
		// For docker-compose: container listens on 8080, mapped to 5000 externally
		return "http://localhost:5000/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}
