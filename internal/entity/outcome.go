package entity

import (
	"errors"
	"fmt"
)

var ErrUnknownOutcome = errors.New("unknown outcome")

type Outcome int

const (
	InProgress Outcome = iota
	XWins
	OWins
	Draw
)

var outcomeNames = map[Outcome]string{
	InProgress: "in_progress",
	XWins:      "x_wins",
	OWins:      "o_wins",
	Draw:       "draw",
}

func (that Outcome) IsTerminal() bool {
	return that != InProgress
}

// Winner - the mark that completed a line, EmptyCell for a draw or an unfinished game.
func (that Outcome) Winner() Mark {
	switch that {
	case XWins:
		return PlayerX
	case OWins:
		return PlayerO
	default:
		return EmptyCell
	}
}

func (that Outcome) String() string {
	if name, ok := outcomeNames[that]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(that))
}

func (that Outcome) MarshalText() ([]byte, error) {
	name, ok := outcomeNames[that]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOutcome, int(that))
	}
	return []byte(name), nil
}

func (that *Outcome) UnmarshalText(text []byte) error {
	for outcome, name := range outcomeNames {
		if name == string(text) {
			*that = outcome
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownOutcome, text)
}
