package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"

	"github.com/remedikit/pushqueue/internal/config"
	"github.com/remedikit/pushqueue/internal/handler"
	"github.com/remedikit/pushqueue/internal/ports"
	"github.com/remedikit/pushqueue/internal/repository"
	"github.com/remedikit/pushqueue/internal/sender"
	"github.com/remedikit/pushqueue/internal/service"
	"github.com/remedikit/pushqueue/pkg/postgres"
)

func main() {
	ctx, ctxStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer ctxStop()

	// Optional local .env; in containers everything comes from real env.
	_ = godotenv.Load()

	cfg, err := config.NewConfig("", "")
	if err != nil {
		log.Fatal(err)
	}

	zlog.InitConsole()
	err = zlog.SetLevel(cfg.Env)
	if err != nil {
		log.Fatal(fmt.Errorf("error setting log level to '%s': %w", cfg.Env, err))
	}

	zlog.Logger.Info().
		Str("env", cfg.Env).
		Msg("Start app...")

	redisRetryStrategy := config.MakeStrategy(cfg.RedisRetry)
	postgresRetryStrategy := config.MakeStrategy(cfg.PostgresRetry)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	err = retry.DoContext(ctx, redisRetryStrategy, func() error {
		return redisClient.Ping(ctx).Err()
	})
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	zlog.Logger.Info().Msg("Successfully connected to Redis")

	queueRepo := repository.NewQueueRepository(redisClient, redisRetryStrategy, cfg.Queue.KeyPrefix)
	resultRepo := repository.NewResultRepository(redisClient, redisRetryStrategy, cfg.Queue.KeyPrefix)

	// The attempt audit store is optional: without a DSN the queue still
	// works, operators just lose per-attempt history.
	var attemptRepo ports.AttemptRepositoryInterface
	if cfg.Database.MasterDSN != "" {
		var postgresDB *dbpg.DB
		err = retry.DoContext(ctx, postgresRetryStrategy, func() error {
			var postgresConnErr error
			postgresDB, postgresConnErr = dbpg.New(cfg.Database.MasterDSN, cfg.Database.SlaveDSNs,
				&dbpg.Options{
					MaxOpenConns:    cfg.Database.MaxOpenConnections,
					MaxIdleConns:    cfg.Database.MaxIdleConnections,
					ConnMaxLifetime: time.Duration(cfg.Database.ConnectionMaxLifetimeSeconds) * time.Second,
				})
			return postgresConnErr
		})
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		zlog.Logger.Info().Msg("Successfully connected to PostgreSQL")

		migrationsPath := "file://./db/migrations"
		err = postgres.MigrateUp(cfg.Database.MasterDSN, migrationsPath)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("couldn't migrate postgres on master DSN")
		}

		attemptRepo = repository.NewAttemptRepository(postgresDB, postgresRetryStrategy)
	} else {
		zlog.Logger.Warn().Msg("no postgres DSN configured, delivery attempt audit is disabled")
	}

	var notificationSender ports.NotificationSender
	switch cfg.Sender.Mode {
	case "gateway":
		notificationSender = sender.NewGatewaySender(
			cfg.Sender.GatewayURL,
			time.Duration(cfg.Sender.TimeoutMs)*time.Millisecond,
		)
	case "console":
		notificationSender = sender.NewConsoleSender()
	default:
		zlog.Logger.Fatal().Str("mode", cfg.Sender.Mode).Msg("unknown sender mode")
	}

	producer := service.NewProducer(queueRepo, cfg.Queue.DefaultMaxRetries)
	retryScheduler := service.NewRetryScheduler(
		queueRepo,
		resultRepo,
		time.Duration(cfg.Queue.MaxBackoffSeconds)*time.Second,
		time.Duration(cfg.Queue.FailureResultTTLHours)*time.Hour,
		time.Duration(cfg.Queue.SweepIntervalMs)*time.Millisecond,
	)
	worker := service.NewWorker(
		queueRepo,
		resultRepo,
		attemptRepo,
		notificationSender,
		retryScheduler,
		time.Duration(cfg.Queue.PollIntervalMs)*time.Millisecond,
		time.Duration(cfg.Queue.SuccessResultTTLHours)*time.Hour,
	)

	notifyHandler := handler.NewNotifyHandler(producer, resultRepo, attemptRepo, queueRepo)
	router := handler.NewRouter(notifyHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return worker.Run(groupCtx)
	})
	group.Go(func() error {
		return retryScheduler.Run(groupCtx)
	})
	group.Go(func() error {
		zlog.Logger.Info().Str("addr", server.Addr).Msg("http server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		zlog.Logger.Error().Err(err).Msg("app stopped with error")
	}

	if err := redisClient.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close redis client")
	}
	zlog.Logger.Info().Msg("app stopped")
}
