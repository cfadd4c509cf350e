package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Mode    entity.Mode           `json:"mode,omitempty"`
	Cell    *entity.Move          `json:"cell,omitempty"`
	Session *entity.Session       `json:"session,omitempty"`
	Turn    *tictactoe.TurnResult `json:"turn,omitempty"`
	Outcome *entity.Outcome       `json:"outcome,omitempty"`
	Error   string                `json:"error,omitempty"`
}

func (that *Server) sendMessage(client *client, action string, payload Payload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	client.writeMu.Lock()
	defer client.writeMu.Unlock()

	if err = client.conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(client *client, action, message string) {
	if err := that.sendMessage(client, action, Payload{Error: message}); err != nil {
		that.logger.Error("failed to send error response", "action", action, "error", err)
	}
}

func decodePayload(message *Message) (Payload, error) {
	var payload Payload
	if len(message.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}
