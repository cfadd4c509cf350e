package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/render"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

const (
	commandQuit    = "quit"
	commandNewGame = "new"

	// lines of game history kept above the board
	historyLines = 20
)

var ErrMalformedInput = errors.New("expected a move as \"row col\"")

var (
	hintStyle  = lipgloss.NewStyle().Faint(true).Render
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#960000ff", Dark: "#fc7e7eff"}).Render
)

type gameController interface {
	State() entity.GameState
	Mode() entity.Mode
	Reset() entity.GameState
	IsComputerTurn() bool
	HumanTurn(ctx context.Context, row, col int) (tictactoe.TurnResult, error)
	ComputerTurn(ctx context.Context) (tictactoe.TurnResult, error)
}

// Console - plays games in a terminal: the board is drawn after every move and the human
// types moves as "row col". A decided game is announced and a new one starts right away.
type Console struct {
	logger     *slog.Logger
	controller gameController

	in  io.Reader
	out io.Writer
}

func New(logger *slog.Logger, controller gameController, in io.Reader, out io.Writer) *Console {
	return &Console{
		logger:     logger.With("component", "console"),
		controller: controller,
		in:         in,
		out:        out,
	}
}

// Run - plays until the player quits or ctx is done.
// A ComputerVsComputer game is played once and Run returns.
func (that *Console) Run(ctx context.Context) error {
	program := tea.NewProgram(
		newModel(ctx, that.logger, that.controller),
		tea.WithContext(ctx),
		tea.WithInput(that.in),
		tea.WithOutput(that.out),
	)

	final, err := program.Run()
	if ctx.Err() != nil {
		return nil
	}

	if err != nil {
		return fmt.Errorf("console program failed: %w", err)
	}

	if m, ok := final.(*model); ok && m.err != nil {
		return m.err
	}

	return nil
}

type computerMoveMsg struct {
	result tictactoe.TurnResult
	err    error
}

type model struct {
	ctx        context.Context
	logger     *slog.Logger
	controller gameController
	spinner    spinner.Model

	// state is the board on screen. The controller is not read while a computer move is in flight.
	state    entity.GameState
	input    string
	history  []string
	thinking bool
	pending  []tea.KeyMsg

	err error
}

func newModel(ctx context.Context, logger *slog.Logger, controller gameController) *model {
	s := spinner.New()
	s.Spinner = spinner.Points

	return &model{
		ctx:        ctx,
		logger:     logger,
		controller: controller,
		spinner:    s,
		state:      controller.State(),
	}
}

func (m *model) Init() tea.Cmd {
	return m.nextComputerMove()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case computerMoveMsg:
		m.thinking = false

		if msg.err != nil {
			m.err = fmt.Errorf("failed to play computer turn: %w", msg.err)
			return m, tea.Quit
		}

		m.showTurn(msg.result)

		if msg.result.Outcome.IsTerminal() && m.controller.Mode() == entity.ComputerVsComputer {
			return m, tea.Quit
		}

		if cmd := m.nextComputerMove(); cmd != nil {
			return m, cmd
		}

		return m, m.replayPending()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}

		// keys typed while the computer thinks are handled once it has moved
		if m.thinking {
			m.pending = append(m.pending, msg)
			return m, nil
		}

		return m, m.handleKey(msg)

	case spinner.TickMsg:
		if !m.thinking {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *model) View() string {
	var sb strings.Builder

	history := m.history
	if len(history) > historyLines {
		history = history[len(history)-historyLines:]
	}

	for _, line := range history {
		sb.WriteString(line + "\n")
	}

	sb.WriteString(render.Board(m.state) + "\n")
	sb.WriteString(render.Status(m.state) + "\n")

	switch {
	case m.thinking:
		sb.WriteString(render.Mark(m.state.Turn) + " is thinking " + m.spinner.View() + "\n")
	case m.controller.Mode() == entity.HumanVsComputer && !m.state.Outcome().IsTerminal():
		sb.WriteString(render.Mark(m.state.Turn) + "> " + m.input + "\n")
		sb.WriteString(hintStyle("row col + enter, \"new\" restarts, q quits") + "\n")
	}

	return sb.String()
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.controller.Mode() != entity.HumanVsComputer {
		return nil
	}

	switch key := msg.String(); key {
	case "enter", "ctrl+j":
		line := strings.ToLower(strings.TrimSpace(m.input))
		m.input = ""
		return m.submit(line)
	case "backspace":
		if runes := []rune(m.input); len(runes) > 0 {
			m.input = string(runes[:len(runes)-1])
		}
	case "q":
		if m.input == "" {
			return tea.Quit
		}
		m.input += key
	default:
		if !msg.Alt && len(msg.Runes) > 0 {
			m.input += string(msg.Runes)
		}
	}

	return nil
}

func (m *model) submit(line string) tea.Cmd {
	switch line {
	case "":
		return nil
	case commandQuit:
		return tea.Quit
	case commandNewGame:
		m.state = m.controller.Reset()
		m.history = append(m.history, "New game.")
		return m.nextComputerMove()
	}

	row, col, err := parseMove(line)
	if err != nil {
		m.history = append(m.history, errorStyle(err.Error()))
		return nil
	}

	result, err := m.controller.HumanTurn(m.ctx, row, col)
	if errors.Is(err, apperror.ErrInvalidMove) {
		m.history = append(m.history, errorStyle(err.Error()))
		return nil
	}

	if err != nil {
		m.err = fmt.Errorf("failed to make turn: %w", err)
		return tea.Quit
	}

	m.showTurn(result)

	return m.nextComputerMove()
}

// nextComputerMove - starts the engine in the background when it is the computer's turn.
func (m *model) nextComputerMove() tea.Cmd {
	if !m.controller.IsComputerTurn() {
		return nil
	}

	m.thinking = true

	ctx, controller := m.ctx, m.controller
	move := func() tea.Msg {
		result, err := controller.ComputerTurn(ctx)
		return computerMoveMsg{result: result, err: err}
	}

	return tea.Batch(m.spinner.Tick, move)
}

// replayPending - handles the keys queued while the computer was thinking.
func (m *model) replayPending() tea.Cmd {
	for len(m.pending) > 0 && !m.thinking {
		key := m.pending[0]
		m.pending = m.pending[1:]

		if cmd := m.handleKey(key); cmd != nil {
			return cmd
		}
	}

	return nil
}

// showTurn - records a move, and announces a decided game.
func (m *model) showTurn(result tictactoe.TurnResult) {
	m.history = append(m.history, fmt.Sprintf("%s plays %s", render.Mark(result.Mark), result.Move))

	if !result.Outcome.IsTerminal() {
		m.state = result.State
		return
	}

	m.logger.Info("game finished", "outcome", result.Outcome.String())

	if m.controller.Mode() == entity.ComputerVsComputer {
		m.state = result.State
		return
	}

	m.history = append(m.history, render.Board(result.State), render.Status(result.State), "New game.")
	m.state = m.controller.State()
}

// parseMove - reads "row col", "row,col" or "rowcol".
func parseMove(line string) (int, int, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	if len(fields) == 1 && len(fields[0]) == 2 {
		fields = []string{fields[0][:1], fields[0][1:]}
	}

	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedInput, line)
	}

	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedInput, line)
	}

	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedInput, line)
	}

	return row, col, nil
}
