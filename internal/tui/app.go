// Package tui is the terminal front end: onboarding, home, the fishing
// mini-game, the encyclopedia, the profile and settings screens.
package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fishyday/internal/catalog"
	"fishyday/internal/clock"
	"fishyday/internal/config"
	"fishyday/internal/game"
)

type Options struct {
	Store    *game.Store
	Gameplay config.Gameplay
	Seed     int64
	Logger   *slog.Logger
}

// Run blocks until the player quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	var prog *tea.Program
	// Timer callbacks are queued onto the program's message loop, so they are
	// applied one at a time alongside key presses.
	sched := clock.NewReal(func(fn func()) {
		prog.Send(timerMsg{fn: fn})
	})
	m := newModel(ctx, opts, sched)
	prog = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := prog.Run()
	// A cancelled context stops the program without a quit key, so the
	// session in progress is settled here.
	if fm, ok := final.(model); ok {
		fm.abandon()
	}
	return err
}

// timerMsg carries a scheduler callback into Update.
type timerMsg struct {
	fn func()
}

func newModel(ctx context.Context, opts Options, sched clock.Scheduler) model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := model{
		ctx:       ctx,
		store:     opts.Store,
		cfg:       opts.Gameplay,
		sched:     sched,
		rng:       catalog.NewRand(opts.Seed),
		log:       logger,
		keys:      defaultKeys(),
		help:      newHelp(),
		bar:       newBar(),
		nameInput: newNameInput(),
		screen:    screenHome,
	}
	return m.load()
}

// --- Styles (sea blue) ---
var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Bold(true)
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	starStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	targetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pointerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	frameStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("24")).
			Padding(1, 2)
)
