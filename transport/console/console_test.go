package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/engine"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

const runTimeout = 10 * time.Second

var humanX = tictactoe.Options{Mode: entity.HumanVsComputer, HumanMark: entity.PlayerX}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newController(options tictactoe.Options) *tictactoe.GameController {
	return tictactoe.NewGameController(newTestLogger(), engine.New(), options)
}

// runConsole - runs the whole program against input and returns what it wrote.
func runConsole(t *testing.T, options tictactoe.Options, input string) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	var out bytes.Buffer
	err := New(newTestLogger(), newController(options), strings.NewReader(input), &out).Run(ctx)
	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "program did not quit by itself")

	return out.String()
}

// typeKeys - feeds input to the model key by key and runs every command it returns,
// the way the program would. It reports whether the model asked to quit.
func typeKeys(m *model, input string) bool {
	for _, r := range input {
		var key tea.KeyMsg
		switch r {
		case '\r':
			key = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			key = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		}

		_, cmd := m.Update(key)
		if runCommands(m, cmd) {
			return true
		}
	}

	return false
}

func runCommands(m *model, cmd tea.Cmd) bool {
	for cmd != nil {
		switch msg := cmd().(type) {
		case tea.QuitMsg:
			return true
		case tea.BatchMsg:
			var next tea.Cmd
			for _, inner := range msg {
				if inner == nil {
					continue
				}
				// spinner ticks only animate the view
				if move, ok := inner().(computerMoveMsg); ok {
					_, next = m.Update(move)
				}
			}
			cmd = next
		default:
			_, cmd = m.Update(msg)
		}
	}

	return false
}

func countPlays(m *model) int {
	count := 0
	for _, line := range m.history {
		if strings.Contains(line, " plays ") {
			count++
		}
	}
	return count
}

func TestConsole_Run(t *testing.T) {
	t.Run("Human move is answered", func(t *testing.T) {
		// When: the human takes the center and quits
		out := runConsole(t, humanX, "1 1\rq")

		// Then: both moves are shown
		assert.Contains(t, out, "X plays (1,1)")
		assert.Contains(t, out, "O plays (0,0)")
	})

	t.Run("Illegal moves are reported", func(t *testing.T) {
		// Given: O answers the center in the top-left corner
		// When: the human plays that corner, then a cell off the board
		out := runConsole(t, humanX, "1 1\r0 0\r3 0\rq")

		// Then: both moves are refused
		assert.Contains(t, out, "cell is already occupied")
		assert.Contains(t, out, "invalid cell index")
	})

	t.Run("Computer opens when the human plays O", func(t *testing.T) {
		out := runConsole(t, tictactoe.Options{Mode: entity.HumanVsComputer, HumanMark: entity.PlayerO}, "q")

		assert.Contains(t, out, "X plays (0,0)")
	})

	t.Run("Computer against computer plays one game", func(t *testing.T) {
		// When: a computer only game runs with no input at all
		out := runConsole(t, tictactoe.Options{Mode: entity.ComputerVsComputer}, "")

		// Then: the game ends in a draw and the program quits by itself
		assert.Contains(t, out, "It's a draw.")
	})

	t.Run("Stops when ctx is done before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var out bytes.Buffer
		require.NoError(t, New(newTestLogger(), newController(tictactoe.Options{Mode: entity.ComputerVsComputer}), strings.NewReader(""), &out).Run(ctx))
		assert.NotContains(t, out.String(), " plays ")
	})

	t.Run("Stops when ctx is done while waiting for a move", func(t *testing.T) {
		// Given: a human game reading from a pipe nobody writes to
		reader, writer := io.Pipe()
		t.Cleanup(func() { _ = writer.Close() })

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- New(newTestLogger(), newController(humanX), reader, io.Discard).Run(ctx)
		}()

		// When: the context is canceled while the prompt waits
		time.Sleep(100 * time.Millisecond)
		cancel()

		// Then: Run returns without any input arriving
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Run is still waiting for input after ctx was canceled")
		}
	})
}

func TestModel_Keys(t *testing.T) {
	ctx := context.Background()

	t.Run("Human move and computer reply", func(t *testing.T) {
		// Given: a human playing X
		m := newModel(ctx, newTestLogger(), newController(humanX))

		// When: the center is typed
		quit := typeKeys(m, "1 1\r")

		// Then: exactly two moves are made and the human is to move again
		assert.False(t, quit)
		assert.Equal(t, 2, countPlays(m))
		assert.Equal(t, entity.PlayerX, m.state.Cell(1, 1))
		assert.Equal(t, entity.PlayerO, m.state.Cell(0, 0))
		assert.Empty(t, m.input)
		assert.False(t, m.thinking)
	})

	t.Run("Comma separated and packed moves are read", func(t *testing.T) {
		m := newModel(ctx, newTestLogger(), newController(humanX))
		typeKeys(m, "1,1\r")
		assert.Equal(t, entity.PlayerX, m.state.Cell(1, 1))

		m = newModel(ctx, newTestLogger(), newController(humanX))
		typeKeys(m, "22\r")
		assert.Equal(t, entity.PlayerX, m.state.Cell(2, 2))
	})

	t.Run("Malformed input is reported", func(t *testing.T) {
		m := newModel(ctx, newTestLogger(), newController(humanX))

		typeKeys(m, "abc\r")

		require.NotEmpty(t, m.history)
		assert.Contains(t, m.history[len(m.history)-1], ErrMalformedInput.Error())
		assert.Zero(t, countPlays(m))
	})

	t.Run("Backspace edits the move", func(t *testing.T) {
		m := newModel(ctx, newTestLogger(), newController(humanX))

		typeKeys(m, "1 2")
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
		require.Nil(t, cmd)
		typeKeys(m, "1\r")

		assert.Equal(t, entity.PlayerX, m.state.Cell(1, 1))
	})

	t.Run("Illegal move leaves the board", func(t *testing.T) {
		m := newModel(ctx, newTestLogger(), newController(humanX))
		typeKeys(m, "1 1\r")
		before := m.state

		typeKeys(m, "0 0\r")

		assert.Equal(t, before, m.state)
		assert.Contains(t, m.history[len(m.history)-1], "cell is already occupied")
		assert.Equal(t, 2, countPlays(m))
	})

	t.Run("New game clears the board", func(t *testing.T) {
		m := newModel(ctx, newTestLogger(), newController(humanX))
		typeKeys(m, "1 1\r")

		typeKeys(m, "new\r")

		assert.Equal(t, entity.NewGameState(), m.state)
		assert.Equal(t, "New game.", m.history[len(m.history)-1])
	})

	t.Run("Keys typed while the computer thinks wait for its move", func(t *testing.T) {
		// Given: the human's move is in and the computer has not answered yet
		m := newModel(ctx, newTestLogger(), newController(humanX))
		typeKeys(m, "1 1")
		_, pendingMove := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.True(t, m.thinking)

		// When: the next move is typed right away
		require.False(t, typeKeys(m, "2 2\r"))
		assert.Equal(t, entity.EmptyCell, m.state.Cell(2, 2))

		// Then: it is played after the computer's reply
		runCommands(m, pendingMove)
		assert.Equal(t, entity.PlayerO, m.state.Cell(0, 0))
		assert.Equal(t, entity.PlayerX, m.state.Cell(2, 2))
		assert.Equal(t, 4, countPlays(m))
	})

	t.Run("q quits on an empty prompt", func(t *testing.T) {
		m := newModel(ctx, newTestLogger(), newController(humanX))

		assert.True(t, typeKeys(m, "q"))
	})

	t.Run("Computer against computer plays nine moves", func(t *testing.T) {
		// Given: a computer only game
		m := newModel(ctx, newTestLogger(), newController(tictactoe.Options{Mode: entity.ComputerVsComputer}))

		// When: it is started
		quit := runCommands(m, m.Init())

		// Then: the board is full, drawn and the program quits
		assert.True(t, quit)
		assert.Equal(t, 9, countPlays(m))
		assert.Equal(t, entity.Draw, m.state.Outcome())
		assert.Contains(t, m.View(), "It's a draw.")
	})
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		input    string
		row, col int
		wantErr  bool
	}{
		{input: "0 2", row: 0, col: 2},
		{input: "2,1", row: 2, col: 1},
		{input: "12", row: 1, col: 2},
		{input: "1\t1", row: 1, col: 1},
		{input: "1", wantErr: true},
		{input: "a b", wantErr: true},
		{input: "1 2 3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			row, col, err := parseMove(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedInput)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.row, row)
			assert.Equal(t, tt.col, col)
		})
	}
}
