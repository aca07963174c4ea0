package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/three-backend/internal/config"
	"github.com/rocketscienceinc/three-backend/internal/repository"
	"github.com/rocketscienceinc/three-backend/internal/repository/storage"
	"github.com/rocketscienceinc/three-backend/internal/repository/storage/sqlite"
	"github.com/rocketscienceinc/three-backend/internal/service"
	"github.com/rocketscienceinc/three-backend/internal/usecase"
	"github.com/rocketscienceinc/three-backend/transport/rest"
	"github.com/rocketscienceinc/three-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	historyStorage, err := sqlite.New(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err := historyStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = historyStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not migrate sqlite storage: %w", err)
	}

	authService, err := service.NewAuthService(conf.JWT.SecretKey, conf.JWT.TTL)
	if err != nil {
		return fmt.Errorf("could not create auth service: %w", err)
	}

	playerRepo := repository.NewPlayerRepository(redisStorage)
	gameRepo := repository.NewGameRepository(redisStorage)
	resultRepo := repository.NewResultRepository(historyStorage.Connection)

	playerService := service.NewPlayerService(playerRepo)
	gameService := service.NewGameService(gameRepo)
	historyService := service.NewHistoryService(resultRepo, conf.HistoryLimit)
	gamePlayService := service.NewGamePlayService(logger, playerService, gameService, service.NewBotService(), historyService)

	gameUseCase := usecase.NewGameUseCase(playerService, gameService, gamePlayService, historyService)

	restServer := rest.New(logger, gameUseCase, authService, conf.AllowedOrigins)
	wsServer := websocket.New(logger, gameUseCase, authService, conf.AllowedOrigins)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := restServer.Start(groupCtx, conf.HTTPPort); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if err := wsServer.Start(groupCtx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}
		return nil
	})

	err = group.Wait()

	log.Info("Application stopped")

	return err
}
