package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"eventauth/internal/config"
	"eventauth/internal/db"
	apperrors "eventauth/internal/errors"
	"eventauth/internal/logging"
	"eventauth/internal/repository"
	"eventauth/internal/service"
)

// createsuperuser creates an active admin account.
//
//	createsuperuser -email admin@example.com -password ...
//
// The email and password may also come from SUPERUSER_EMAIL and SUPERUSER_PASSWORD.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	email := flag.String("email", os.Getenv("SUPERUSER_EMAIL"), "admin email address")
	password := flag.String("password", os.Getenv("SUPERUSER_PASSWORD"), "admin password (min 8 characters)")
	flag.Parse()

	logger := logging.New(logging.Options{
		Service: "createsuperuser",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Format:  "text",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Error("connect to database", "err", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error("run migrations", "err", err)
		os.Exit(1)
	}

	// Creating an admin signs nobody in, so no token service or mailer is wired.
	resolver := service.NewAccountResolver(
		repository.NewUserRepository(gormDB),
		nil,
		nil,
		nil,
		logger,
		cfg.DefaultProfilePicture,
	)

	user, err := resolver.CreateSuperuser(ctx, *email, *password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicateEmail):
			logger.Error("an account with this email already exists", "email", *email)
		case errors.Is(err, apperrors.ErrValidation):
			logger.Error("invalid input", "err", err)
		default:
			logger.Error("create superuser", "err", err)
		}
		os.Exit(1)
	}

	logger.Info("superuser created", "user_id", user.ID, "email", user.Email)
}
