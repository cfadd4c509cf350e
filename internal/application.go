package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/config"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/engine"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-minimax/transport/console"
	"github.com/rocketscienceinc/tictactoe-minimax/transport/rest"
	"github.com/rocketscienceinc/tictactoe-minimax/transport/websocket"
)

var (
	ErrAddrNotFound    = errors.New("redis address string is empty")
	ErrUnknownFrontend = errors.New("unknown frontend")
)

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

	mode, err := entity.ParseMode(conf.Mode)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	humanMark, err := entity.ParseMark(conf.HumanMark)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch conf.Frontend {
	case config.FrontendConsole:
		return runConsole(ctx, logger, conf, mode, humanMark)
	case config.FrontendServer:
		return runServer(ctx, logger, conf, mode, humanMark)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrontend, conf.Frontend)
	}
}

func runConsole(ctx context.Context, logger *slog.Logger, conf *config.Config, mode entity.Mode, humanMark entity.Mark) error {
	controller := tictactoe.NewGameController(logger, engine.New(), tictactoe.Options{
		Mode:      mode,
		HumanMark: humanMark,
		MoveDelay: conf.MoveDelay,
	})

	if err := console.New(logger, controller, os.Stdin, os.Stdout).Run(ctx); err != nil {
		return fmt.Errorf("console error: %w", err)
	}

	return nil
}

func runServer(ctx context.Context, logger *slog.Logger, conf *config.Config, mode entity.Mode, humanMark entity.Mark) error {
	log := logger.With("component", "app")

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

	searchEngine := engine.New()
	sessionRepo := repository.NewSessionRepository(redisStorage, conf.SessionTTL)
	gameUseCase := usecase.NewGameManager(logger, sessionRepo, searchEngine, usecase.Settings{
		HumanMark: humanMark,
		MoveDelay: conf.MoveDelay,
	})

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, searchEngine, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameUseCase, mode)
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
