package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

const (
	sessionCookieName = "user_session"
	sessionCookieTTL  = 24 * time.Hour
	shutdownTimeout   = 5 * time.Second
)

const (
	actionNewGame   = "game:new"
	actionGameTurn  = "game:turn"
	actionGameState = "game:state"
	actionGameLeave = "game:leave"
	actionGameOver  = "game:over"
	actionError     = "error"
)

type gameUseCase interface {
	NewGame(ctx context.Context, sessionID string, mode entity.Mode, onTurn func(tictactoe.TurnResult)) (*entity.Session, []tictactoe.TurnResult, error)
	MakeTurn(ctx context.Context, sessionID string, row, col int, onTurn func(tictactoe.TurnResult)) ([]tictactoe.TurnResult, error)
	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)
	EndGame(ctx context.Context, sessionID string) error
}

type handlerFunc func(ctx context.Context, client *client, message *Message) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	defaultMode entity.Mode

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

// client - one websocket connection bound to a game session.
type client struct {
	sessionID string

	conn    *websocket.Conn
	writeMu sync.Mutex
}

func New(logger *slog.Logger, gameUseCase gameUseCase, defaultMode entity.Mode) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		defaultMode: defaultMode,

		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionNewGame] = server.handleNewGame
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameState] = server.handleGameState
	server.handlers[actionGameLeave] = server.handleGameLeave

	return server
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	sessionID, header, err := that.sessionFromCookie(req)
	if err != nil {
		log.Error("failed to create session", "error", err)
		http.Error(writer, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	// unblock the read loop on shutdown
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	log = log.With("sessionID", sessionID)
	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, &client{sessionID: sessionID, conn: conn}); err != nil {
		log.Error("error handling messages", "error", err)
	}

	log.Info("WebSocket connection closed")
}

// handleMessages - processes messages from the client until it goes away.
func (that *Server) handleMessages(ctx context.Context, client *client) error {
	log := that.logger.With("method", "handleMessages", "sessionID", client.sessionID)

	for {
		if ctx.Err() != nil {
			return nil
		}

		_, raw, err := client.conn.ReadMessage()
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.sendErrorResponse(client, actionError, "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendErrorResponse(client, message.Action, "unknown action")
			continue
		}

		if err = handler(ctx, client, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// sessionFromCookie - reuses the client's session cookie or issues a new one.
func (that *Server) sessionFromCookie(req *http.Request) (string, http.Header, error) {
	if cookie, err := req.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil, nil
	}

	sessionID, err := pkg.GenerateNewSessionID()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	cookie := &http.Cookie{
		Name:    sessionCookieName,
		Value:   sessionID,
		Expires: time.Now().Add(sessionCookieTTL),
		Path:    "/ws",
	}

	header := http.Header{}
	header.Add("Set-Cookie", cookie.String())

	return sessionID, header, nil
}
