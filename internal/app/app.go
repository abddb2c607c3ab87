package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/nvanschaik/fishtracker-backend/internal/adapter/postgres"
	devicerepo "github.com/nvanschaik/fishtracker-backend/internal/adapter/postgres/device"
	fishrepo "github.com/nvanschaik/fishtracker-backend/internal/adapter/postgres/fish"
	sightingrepo "github.com/nvanschaik/fishtracker-backend/internal/adapter/postgres/sighting"
	"github.com/nvanschaik/fishtracker-backend/internal/config"
	"github.com/nvanschaik/fishtracker-backend/internal/service/chat"
	"github.com/nvanschaik/fishtracker-backend/internal/service/registry"
	"github.com/nvanschaik/fishtracker-backend/internal/service/sighting"
	"github.com/nvanschaik/fishtracker-backend/internal/transport/middleware"
	"github.com/nvanschaik/fishtracker-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, wires repositories into services and services into the
// HTTP transport, then serves until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	fishRepo := fishrepo.New(pool)
	deviceRepo := devicerepo.New(pool)
	sightingRepo := sightingrepo.New(pool)

	registrySvc := registry.NewService(logger, fishRepo)
	sightingSvc := sighting.NewService(
		logger,
		deviceRepo,
		fishRepo,
		sightingRepo,
		cfg.Sighting.SuppressionWindow,
		cfg.Server.PublicBaseURL,
	)

	chatOpts := chat.Options{
		MaxMessageLength: cfg.Chat.MaxMessageLength,
		RequestTimeout:   cfg.Chat.RequestTimeout,
		MaxRetries:       uint64(cfg.Chat.MaxRetries),
		RetryBaseDelay:   cfg.Chat.RetryBaseDelay,
	}

	// The assistant client is only built when a credential is present;
	// the service reports the gateway as misconfigured otherwise.
	var chatSvc *chat.Service
	if cfg.Chat.APIKey != "" {
		client := chat.NewAnthropicClient(cfg.Chat.APIKey, cfg.Chat.Model, cfg.Chat.MaxTokens, cfg.Chat.Temperature)
		chatSvc = chat.NewService(logger, sightingSvc, client, chatOpts)
	} else {
		logger.Warn("chat API key not set, assistant gateway disabled")
		chatSvc = chat.NewService(logger, sightingSvc, nil, chatOpts)
	}

	router := rest.NewRouter(rest.Handlers{
		Health: rest.NewHealthHandler(pool, BuildVersion()),
		Fish:   rest.NewFishHandler(logger, registrySvc),
		Device: rest.NewDeviceHandler(logger, sightingSvc),
		Chat:   rest.NewChatHandler(logger, chatSvc),
	})

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)(router)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
