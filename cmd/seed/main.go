// Command seed inserts an already active user through the configured store, bypassing activation.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/accountd/accountd/internal/app"
	"github.com/accountd/accountd/internal/platform/password"
	"github.com/accountd/accountd/internal/users"
)

func main() {
	var in users.RegisterInput
	flag.StringVar(&in.Name, "name", "", "display name")
	flag.StringVar(&in.Email, "email", "", "email address")
	flag.StringVar(&in.Password, "password", "", "plaintext password")
	flag.Int64Var(&in.PhoneNumber, "phone", 0, "phone number in E.164 digits, without +")
	flag.Parse()

	ctx := context.Background()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if err := in.Validate(); err != nil {
		logger.Error("invalid user", slog.Any("error", err))
		os.Exit(2)
	}

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	hashed, err := password.NewBcrypt().Hash(in.Password, cfg.BcryptCost)
	if err != nil {
		logger.Error("hash password", slog.Any("error", err))
		os.Exit(1)
	}

	user, err := store.Create(ctx, users.UserRecord{
		Name:        in.Name,
		Email:       in.Email,
		Password:    hashed,
		PhoneNumber: in.PhoneNumber,
	})
	if err != nil {
		logger.Error("create user", slog.String("email", in.Email), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("user seeded", slog.Int64("id", user.ID), slog.String("email", user.Email))
}
