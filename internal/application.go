package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/settlers-backend/internal/config"
	"github.com/rocketscienceinc/settlers-backend/internal/repository"
	"github.com/rocketscienceinc/settlers-backend/internal/repository/storage"
	"github.com/rocketscienceinc/settlers-backend/internal/usecase"
	"github.com/rocketscienceinc/settlers-backend/transport/rest"
	"github.com/rocketscienceinc/settlers-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	archiveStorage, err := storage.NewSQLite(ctx, conf.Archive.Path)
	if err != nil {
		return fmt.Errorf("could not open archive storage: %w", err)
	}

	defer func() {
		if err = archiveStorage.Close(); err != nil {
			log.Error("could not close archive storage", "error", err)
		}
	}()

	roomRepo := repository.NewRoomRepository(redisStorage)
	gameRepo := repository.NewGameRepository(redisStorage, conf.Redis.GameTTL)
	archiveRepo := repository.NewArchiveRepository(archiveStorage)

	rules := usecase.Rules{
		VictoryPoints: conf.Rules.VictoryPoints,
		BonusPoints:   conf.Rules.BonusPoints,
		BoardLayout:   conf.Rules.BoardLayout,
		Seed:          conf.Rules.Seed,
		MaxPlayers:    conf.Session.MaxPlayers,
		TurnTimeout:   conf.Session.TurnTimeout,
	}
	roomManager := usecase.NewRoomManager(ctx, logger, rules, roomRepo, gameRepo, archiveRepo)
	defer roomManager.Close()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		router := rest.NewRouter(logger, rest.NewHandlers(logger, roomManager))
		if httpErr := rest.Start(ctx, conf.HTTPPort, router); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		limits := websocket.Limits{
			MessagesPerSecond: conf.Session.MessagesPerSecond,
			Burst:             conf.Session.Burst,
			ReadTimeout:       conf.Session.ReadTimeout,
		}
		wsServer := websocket.New(logger, roomManager, limits)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
