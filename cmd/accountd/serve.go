package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/accountd/account-service/internal/api"
	"github.com/accountd/account-service/internal/core/ports"
	"github.com/accountd/account-service/internal/core/service"
	mongodb "github.com/accountd/account-service/internal/infrastructure/db/mongo"
	"github.com/accountd/account-service/internal/infrastructure/db/postgres"
	redisstore "github.com/accountd/account-service/internal/infrastructure/db/redis"
	"github.com/accountd/account-service/internal/infrastructure/notify"
	"github.com/accountd/account-service/internal/infrastructure/queue"
	"github.com/accountd/account-service/internal/pkg/config"
	"github.com/accountd/account-service/pkg/logger"
)

const (
	serviceName     = "account-service"
	shutdownTimeout = 15 * time.Second
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

// directory is the account store plus its readiness probe.
type directory interface {
	ports.AccountDirectory
	ports.Pinger
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: serviceName,
	})

	dir, closeDir, err := openDirectory(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDir()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()
	resets := redisstore.NewResetStore(rdb)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Auth.NotifyWorkers, notify.NewLogNotifier(cfg.Auth.PasswordResetMail, log), log)
	dispatcher.Start(workerCtx)
	defer func() {
		cancelWorkers()
		dispatcher.Wait()
	}()

	tokens := service.NewJWTService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TokenTTL(),
	})
	accounts := service.NewAccountService(service.AccountDependencies{
		Directory: dir,
		Hasher:    service.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens:    tokens,
		Resets:    resets,
		Notifier:  dispatcher,
		ResetTTL:  cfg.Auth.ResetTTL,
	}, log)

	e := api.NewRouter(api.Dependencies{
		Accounts:      accounts,
		Authenticator: service.NewAuthenticator(tokens, dir),
		Health: map[string]ports.Pinger{
			"directory": dir,
			"redis":     resets,
		},
	}, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("directory", cfg.DirectoryDriver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// openDirectory connects the configured account store and returns a close
// function for it.
func openDirectory(ctx context.Context, cfg *config.Config, log zerolog.Logger) (directory, func(), error) {
	switch cfg.DirectoryDriver {
	case config.DriverPostgres:
		if cfg.Postgres.RunMigrations {
			m, err := postgres.NewMigrator(cfg.Postgres.DSN)
			if err != nil {
				return nil, nil, err
			}
			err = m.Up()
			_ = m.Close()
			if err != nil {
				return nil, nil, err
			}
			log.Info().Msg("postgres migrations applied")
		}
		pool, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewAccountRepository(pool), pool.Close, nil

	default:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  serviceName,
		})
		if err != nil {
			return nil, nil, err
		}
		repo := mongodb.NewAccountRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = mongodb.Disconnect(context.Background(), client)
			return nil, nil, err
		}
		closeFn := func() {
			if err := mongodb.Disconnect(context.Background(), client); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		}
		return repo, closeFn, nil
	}
}
