package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

func (that *Server) handleNewGame(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handleNewGame", "sessionID", client.sessionID)

	payloadReq, err := decodePayload(msg)
	if err != nil {
		that.sendErrorResponse(client, msg.Action, "malformed payload")
		return err
	}

	mode := payloadReq.Mode
	if mode == "" {
		mode = that.defaultMode
	}

	if _, err = entity.ParseMode(string(mode)); err != nil {
		that.sendErrorResponse(client, msg.Action, err.Error())
		return nil
	}

	session, results, err := that.gameUseCase.NewGame(ctx, client.sessionID, mode, that.streamTurns(client))
	if err != nil {
		that.sendErrorResponse(client, msg.Action, "failed to create a new game")
		return fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.sendMessage(client, msg.Action, Payload{Session: session}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	that.announceGameOver(client, results)

	log.Info("new game started", "mode", mode)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handleGameTurn", "sessionID", client.sessionID)

	payloadReq, err := decodePayload(msg)
	if err != nil {
		that.sendErrorResponse(client, msg.Action, "malformed payload")
		return err
	}

	if payloadReq.Cell == nil {
		that.sendErrorResponse(client, msg.Action, "cell is required")
		return nil
	}

	results, err := that.gameUseCase.MakeTurn(ctx, client.sessionID, payloadReq.Cell.Row, payloadReq.Cell.Col, that.streamTurns(client))
	switch {
	case errors.Is(err, apperror.ErrInvalidMove),
		errors.Is(err, apperror.ErrNoActiveGames),
		errors.Is(err, apperror.ErrNotHumanMode):
		that.sendErrorResponse(client, msg.Action, err.Error())
		return nil
	case err != nil:
		that.sendErrorResponse(client, msg.Action, "failed to make turn")
		return fmt.Errorf("failed to make turn: %w", err)
	}

	that.announceGameOver(client, results)

	log.Info("player made a turn", "cell", payloadReq.Cell.String())

	return nil
}

func (that *Server) handleGameState(ctx context.Context, client *client, msg *Message) error {
	session, err := that.gameUseCase.GetSession(ctx, client.sessionID)
	if errors.Is(err, apperror.ErrNoActiveGames) {
		that.sendErrorResponse(client, msg.Action, err.Error())
		return nil
	}

	if err != nil {
		that.sendErrorResponse(client, msg.Action, "failed to get the game")
		return fmt.Errorf("failed to get session: %w", err)
	}

	outcome := session.State.Outcome()

	return that.sendMessage(client, msg.Action, Payload{Session: session, Outcome: &outcome})
}

func (that *Server) handleGameLeave(ctx context.Context, client *client, msg *Message) error {
	err := that.gameUseCase.EndGame(ctx, client.sessionID)
	if errors.Is(err, apperror.ErrNoActiveGames) {
		that.sendErrorResponse(client, msg.Action, err.Error())
		return nil
	}

	if err != nil {
		that.sendErrorResponse(client, msg.Action, "failed to end the game")
		return fmt.Errorf("failed to end game: %w", err)
	}

	that.logger.Info("player left the game", "method", "handleGameLeave", "sessionID", client.sessionID)

	return that.sendMessage(client, msg.Action, Payload{})
}

// streamTurns - pushes every applied move to the client as it happens.
func (that *Server) streamTurns(client *client) func(tictactoe.TurnResult) {
	return func(result tictactoe.TurnResult) {
		if err := that.sendMessage(client, actionGameTurn, Payload{Turn: &result}); err != nil {
			that.logger.Error("failed to send turn", "sessionID", client.sessionID, "error", err)
		}
	}
}

func (that *Server) announceGameOver(client *client, results []tictactoe.TurnResult) {
	if len(results) == 0 {
		return
	}

	last := results[len(results)-1]
	if !last.Outcome.IsTerminal() {
		return
	}

	if err := that.sendMessage(client, actionGameOver, Payload{Turn: &last, Outcome: &last.Outcome}); err != nil {
		that.logger.Error("failed to send game over", "sessionID", client.sessionID, "error", err)
	}
}
