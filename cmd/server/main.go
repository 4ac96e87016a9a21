package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohits-web03/dropvault/internal/api"
	"github.com/rohits-web03/dropvault/internal/api/handlers"
	"github.com/rohits-web03/dropvault/internal/config"
	"github.com/rohits-web03/dropvault/internal/logging"
	"github.com/rohits-web03/dropvault/internal/notify"
	"github.com/rohits-web03/dropvault/internal/repositories"
	"github.com/rohits-web03/dropvault/internal/services"
)

// @title DropVault API
// @version 1.0
// @description Secure one-recipient file delivery with view and download limits.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(os.Stdout, cfg.Environment)

	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "server exited", "error", err)
		os.Exit(1)
	}
}

type publisher interface {
	services.Notifier
	services.EventPublisher
	Close() error
}

func run(cfg config.Config, log logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, sqlDB, err := repositories.ConnectDatabase(ctx, cfg.DB_URL, log)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	var limiter services.RateLimiter = repositories.NopLimiter{}
	if cfg.RedisURL != "" {
		client, err := repositories.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		limiter = repositories.NewRedisLimiter(client)
		log.Info(ctx, "access code rate limiting via redis")
	}

	var pub publisher = notify.NewLogSink(log)
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := notify.NewKafkaPublisher(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		pub = kp
		log.Info(ctx, "notifications via kafka", "brokers", cfg.KafkaBrokers)
	}
	defer pub.Close()

	svc := services.New(services.Deps{
		Deliveries: repositories.NewDeliveryRepository(db),
		Files:      repositories.NewFileRepository(db),
		Codes:      repositories.NewAccessCodeRepository(db),
		Logs:       repositories.NewAccessLogRepository(db),
		Blobs:      repositories.NewR2Store(cfg.R2),
		Notifier:   pub,
		Events:     pub,
		Limiter:    limiter,
		Log:        log,
	}, cfg.Policy, cfg.JWTSecret)

	go svc.Sweeper.Run(ctx)

	h := handlers.New(repositories.NewUserRepository(db), svc.Deliveries, svc.AccessCodes, cfg, log)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: api.SetupRouter(cfg, h, log),
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  time.Minute,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting DropVault server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
