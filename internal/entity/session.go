package entity

import (
	"errors"
	"fmt"
)

const (
	HumanVsComputer    Mode = "human-vs-computer"
	ComputerVsComputer Mode = "computer-vs-computer"
)

var (
	ErrUnknownMode = errors.New("unknown game mode")
	ErrInvalidMark = errors.New("invalid player mark")
)

// Mode - who sits at the board. Chosen once when a game starts.
type Mode string

func ParseMode(value string) (Mode, error) {
	switch mode := Mode(value); mode {
	case HumanVsComputer, ComputerVsComputer:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, value)
	}
}

func ParseMark(value string) (Mark, error) {
	if mark := Mark(value); mark.IsPlayer() {
		return mark, nil
	}
	return EmptyCell, fmt.Errorf("%w: %q", ErrInvalidMark, value)
}

// Session - the single game in flight for one client.
type Session struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	HumanMark Mark      `json:"human_mark,omitempty"`
	State     GameState `json:"state"`
}

func NewSession(id string, mode Mode, humanMark Mark) *Session {
	session := &Session{
		ID:    id,
		Mode:  mode,
		State: NewGameState(),
	}

	if mode == HumanVsComputer {
		session.HumanMark = humanMark
	}

	return session
}

func (that *Session) IsWithHuman() bool {
	return that.Mode == HumanVsComputer
}
