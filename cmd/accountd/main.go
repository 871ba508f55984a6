package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/accountd/accountd/internal/app"
	"github.com/accountd/accountd/internal/observability"
	"github.com/accountd/accountd/internal/platform/password"
	"github.com/accountd/accountd/internal/platform/redisconn"
	"github.com/accountd/accountd/internal/platform/token"
	"github.com/accountd/accountd/internal/users"
	"github.com/accountd/accountd/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("open store", slog.String("driver", cfg.StoreDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	var (
		notifier   users.ActivationNotifier
		jobHandler *jobs.Handler
	)
	if cfg.Notifier == app.NotifierQueue {
		redisClient, err := redisconn.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()

		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		jobsClient := jobs.NewClient(redisOpts)
		defer func() {
			if err := jobsClient.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
		inspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		notifier = jobs.NewQueueNotifier(jobsClient, logger)
		jobHandler = jobs.NewHandler(inspector, logger)
	} else {
		notifier = users.NewLogNotifier(logger)
		jobHandler = jobs.NewHandler(nil, logger)
	}

	usersService := users.NewService(
		store,
		password.NewBcrypt(),
		token.NewHMACSigner(cfg.TokenIssuer),
		notifier,
		users.Config{
			ActivationSecret:   cfg.ActivationSecret,
			ActivationTTL:      cfg.ActivationTTL,
			ActivationCodeSpan: cfg.ActivationCodeSpan,
			HashCost:           cfg.BcryptCost,
		},
		logger,
	)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		UsersHandler: users.NewHandler(logger, usersService),
		JobHandler:   jobHandler,
		Metrics:      observability.NewMetrics(),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
