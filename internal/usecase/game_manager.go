package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/engine"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type searchEngine interface {
	Search(state entity.GameState) (engine.Result, error)
}

type Settings struct {
	HumanMark entity.Mark
	MoveDelay time.Duration
}

// GameManager - runs games for remote clients, one stored session per client.
type GameManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo
	engine      searchEngine
	settings    Settings
}

func NewGameManager(logger *slog.Logger, sessionRepo sessionRepo, searchEngine searchEngine, settings Settings) *GameManager {
	return &GameManager{
		logger:      logger,
		sessionRepo: sessionRepo,
		engine:      searchEngine,
		settings:    settings,
	}
}

// NewGame - starts a game for sessionID, replacing any game in flight. An empty sessionID gets a fresh one.
// If the computer moves first its moves are made right away, in ComputerVsComputer that is the whole game.
func (that *GameManager) NewGame(
	ctx context.Context, sessionID string, mode entity.Mode, onTurn func(tictactoe.TurnResult),
) (*entity.Session, []tictactoe.TurnResult, error) {
	if sessionID == "" {
		var err error
		if sessionID, err = pkg.GenerateNewSessionID(); err != nil {
			return nil, nil, fmt.Errorf("failed to generate session id: %w", err)
		}
	}

	log := that.logger.With("method", "NewGame", "sessionID", sessionID, "mode", mode)

	session := entity.NewSession(sessionID, mode, that.settings.HumanMark)
	if err := that.updateSession(ctx, session); err != nil {
		return nil, nil, err
	}

	log.Info("game started")

	controller := that.controllerFor(session)

	results, err := controller.Play(ctx, onTurn)
	if err != nil {
		that.saveProgress(ctx, session, controller)
		return session, results, fmt.Errorf("failed to play computer turn: %w", err)
	}

	if err = that.finishTurn(ctx, session, controller, results); err != nil {
		return nil, results, err
	}

	return session, results, nil
}

// MakeTurn - plays the human's move and the computer's reply. Computer moves still owed by a
// stored game are made first; in ComputerVsComputer that finishes the game and the cell is ignored.
func (that *GameManager) MakeTurn(
	ctx context.Context, sessionID string, row, col int, onTurn func(tictactoe.TurnResult),
) ([]tictactoe.TurnResult, error) {
	session, err := that.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	controller := that.controllerFor(session)

	// an interrupted game can be stored with the computer to move
	results, err := controller.Play(ctx, onTurn)
	if err != nil {
		that.saveProgress(ctx, session, controller)
		return results, fmt.Errorf("failed to play computer turn: %w", err)
	}

	if len(results) > 0 && results[len(results)-1].Outcome.IsTerminal() {
		return results, that.finishTurn(ctx, session, controller, results)
	}

	human, err := controller.HumanTurn(ctx, row, col)
	if err != nil {
		if len(results) > 0 {
			that.saveProgress(ctx, session, controller)
		}
		return results, fmt.Errorf("failed make turn: %w", err)
	}

	if onTurn != nil {
		onTurn(human)
	}

	results = append(results, human)

	if !human.Outcome.IsTerminal() {
		replies, err := controller.Play(ctx, onTurn)
		results = append(results, replies...)

		if err != nil {
			that.saveProgress(ctx, session, controller)
			return results, fmt.Errorf("failed to play computer turn: %w", err)
		}
	}

	if err = that.finishTurn(ctx, session, controller, results); err != nil {
		return results, err
	}

	return results, nil
}

func (that *GameManager) GetSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, fmt.Errorf("%w: session %s", apperror.ErrNoActiveGames, sessionID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// EndGame - drops the game in flight, if any.
func (that *GameManager) EndGame(ctx context.Context, sessionID string) error {
	err := that.sessionRepo.DeleteByID(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return fmt.Errorf("%w: session %s", apperror.ErrNoActiveGames, sessionID)
	}

	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("game ended by client", "method", "EndGame", "sessionID", sessionID)

	return nil
}

func (that *GameManager) controllerFor(session *entity.Session) *tictactoe.GameController {
	return tictactoe.NewGameController(that.logger, that.engine, tictactoe.Options{
		Mode:      session.Mode,
		HumanMark: session.HumanMark,
		MoveDelay: that.settings.MoveDelay,
	}).WithState(session.State)
}

// finishTurn - stores the new position, or removes the session once the game is decided.
// Session.State ends up holding the last board either way.
func (that *GameManager) finishTurn(
	ctx context.Context, session *entity.Session, controller *tictactoe.GameController, results []tictactoe.TurnResult,
) error {
	if len(results) > 0 && results[len(results)-1].Outcome.IsTerminal() {
		last := results[len(results)-1]
		session.State = last.State

		that.deleteSession(ctx, session, last.Outcome)

		return nil
	}

	session.State = controller.State()

	return that.updateSession(ctx, session)
}

func (that *GameManager) saveProgress(ctx context.Context, session *entity.Session, controller *tictactoe.GameController) {
	session.State = controller.State()

	// the caller's context may be the reason we stopped
	if err := that.updateSession(context.WithoutCancel(ctx), session); err != nil {
		that.logger.Error("failed to save interrupted game", "sessionID", session.ID, "error", err)
	}
}

func (that *GameManager) updateSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (that *GameManager) deleteSession(ctx context.Context, session *entity.Session, outcome entity.Outcome) {
	log := that.logger.With("method", "deleteSession", "sessionID", session.ID)

	if err := that.sessionRepo.DeleteByID(ctx, session.ID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		log.Error("failed to delete session", "error", err)
	}

	log.Info("game finished", "outcome", outcome.String())
}
