package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/engine"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

type searchEngine interface {
	Search(state entity.GameState) (engine.Result, error)
}

type bestMoveResponse struct {
	Move  entity.Move `json:"move"`
	Score int         `json:"score"`
	Nodes int         `json:"nodes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// moveHandler - answers "what would the computer play here" for any position, without a session.
type moveHandler struct {
	logger *slog.Logger
	engine searchEngine
}

func (that *moveHandler) BestMove(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "BestMove")

	var state entity.GameState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}

	for _, row := range state.Board {
		for _, mark := range row {
			if mark != entity.EmptyCell && !mark.IsPlayer() {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid mark on board"})
				return
			}
		}
	}

	result, err := that.engine.Search(state)
	switch {
	case errors.Is(err, apperror.ErrNoMovesAvailable):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, apperror.ErrInvalidMove):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		log.Error("failed to search move", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
		return
	}

	writeJSON(w, http.StatusOK, bestMoveResponse{Move: result.Move, Score: result.Score, Nodes: result.Nodes})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
