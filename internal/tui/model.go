package tui

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"fishyday/internal/catalog"
	"fishyday/internal/clock"
	"fishyday/internal/config"
	"fishyday/internal/fishing"
	"fishyday/internal/game"
)

type screen int

const (
	screenOnboarding screen = iota
	screenHome
	screenFishing
	screenDex
	screenDetail
	screenProfile
	screenSettings
)

type menuItem int

const (
	itemFish menuItem = iota
	itemDex
	itemProfile
	itemSettings
	itemQuit
)

var menuLabels = []string{"Go fishing", "Encyclopedia", "Profile", "Settings", "Quit"}

type settingItem int

const (
	settingSound settingItem = iota
	settingVibration
	settingLeftHand
)

var settingLabels = []string{"Sound", "Vibration", "Left-hand mode"}

// Cast aim is a small grid in front of the player.
const (
	aimMinX = -3
	aimMaxX = 3
	aimMinY = 1
	aimMaxY = 5
)

type model struct {
	ctx   context.Context
	store *game.Store
	cfg   config.Gameplay
	sched clock.Scheduler
	rng   *rand.Rand
	log   *slog.Logger

	keys      keyMap
	help      help.Model
	bar       progress.Model
	nameInput textinput.Model

	screen      screen
	menuIdx     int
	dexIdx      int
	settingsIdx int
	status      string

	profile game.Profile
	session *fishing.Session
	aim     fishing.Position
}

func (m model) Init() tea.Cmd {
	if m.screen == screenOnboarding {
		return textinput.Blink
	}
	return nil
}

// load reads the persisted state and picks the first screen.
func (m model) load() model {
	m.store.Initialize(m.ctx)
	if p, ok := m.store.Profile(m.ctx); ok {
		m.profile = p
		m.screen = screenHome
		return m
	}
	m.screen = screenOnboarding
	m.nameInput.Focus()
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerMsg:
		msg.fn()
		return m, nil
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		width := msg.Width - 12
		if width > 40 {
			width = 40
		}
		if width < 10 {
			width = 10
		}
		m.bar.Width = width
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if key.Matches(msg, m.keys.Help) && m.screen != screenOnboarding {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		switch m.screen {
		case screenOnboarding:
			return m.updateOnboarding(msg)
		case screenHome:
			return m.updateHome(msg)
		case screenFishing:
			return m.updateFishing(msg)
		case screenDex:
			return m.updateDex(msg)
		case screenDetail:
			return m.updateDetail(msg)
		case screenProfile:
			return m.updateProfile(msg)
		case screenSettings:
			return m.updateSettings(msg)
		}
	}
	return m, nil
}

// quit abandons any session in progress so its try is accounted for.
func (m model) quit() (tea.Model, tea.Cmd) {
	m = m.abandon()
	return m, tea.Quit
}

// abandon exits the current session, if any. Exit is rejected once the
// session has ended, so calling this twice is harmless.
func (m model) abandon() model {
	if m.session != nil {
		m.session.Exit()
		m.session = nil
	}
	return m
}

func (m model) updateOnboarding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			m.status = "Pick a nickname first."
			return m, nil
		}
		m.profile = m.store.SaveProfile(m.ctx, game.Profile{Nickname: name})
		m.nameInput.Blur()
		m.status = "Welcome aboard, " + name + "!"
		m.screen = screenHome
		return m, nil
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		m.menuIdx = (m.menuIdx + len(menuLabels) - 1) % len(menuLabels)
	case key.Matches(msg, m.keys.Down):
		m.menuIdx = (m.menuIdx + 1) % len(menuLabels)
	case key.Matches(msg, m.keys.Action):
		m.status = ""
		switch menuItem(m.menuIdx) {
		case itemFish:
			return m.startFishing()
		case itemDex:
			m.screen = screenDex
		case itemProfile:
			m.screen = screenProfile
		case itemSettings:
			m.screen = screenSettings
		case itemQuit:
			return m.quit()
		}
	}
	return m, nil
}

func (m model) startFishing() (tea.Model, tea.Cmd) {
	sess, err := fishing.NewSession(m.ctx, m.cfg, m.store, m.sched, m.rng, m.log)
	if err != nil {
		m.log.Error("create fishing session failed", "err", err)
		m.status = "Could not start fishing: " + err.Error()
		return m, nil
	}
	if !sess.Start() {
		m.status = sess.View().Message
		return m, nil
	}
	m.session = sess
	m.aim = fishing.Position{X: 0, Y: 3}
	m.screen = screenFishing
	return m, nil
}

func (m model) leaveFishing() model {
	if m.session != nil {
		m.session.Exit()
		if v := m.session.View(); v.Outcome == fishing.OutcomeAbandoned {
			m.status = v.Message
		}
		m.session = nil
	}
	m.screen = screenHome
	return m
}

func (m model) updateFishing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.session == nil {
		m.screen = screenHome
		return m, nil
	}
	if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) {
		m = m.leaveFishing()
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	v := m.session.View()
	switch v.Phase {
	case fishing.PhaseCasting:
		switch {
		case key.Matches(msg, m.keys.Left):
			m.aim.X = max(m.aim.X-1, aimMinX)
		case key.Matches(msg, m.keys.Right):
			m.aim.X = min(m.aim.X+1, aimMaxX)
		case key.Matches(msg, m.keys.Up):
			m.aim.Y = min(m.aim.Y+1, aimMaxY)
		case key.Matches(msg, m.keys.Down):
			m.aim.Y = max(m.aim.Y-1, aimMinY)
		case key.Matches(msg, m.keys.Action):
			m.session.ReleaseCast(m.aim)
		}
	case fishing.PhaseBiting:
		if key.Matches(msg, m.keys.Action) {
			m.session.Reel()
		}
	case fishing.PhaseHooking:
		if key.Matches(msg, m.keys.Action) {
			m.session.Hook()
		}
	case fishing.PhaseResult:
		if key.Matches(msg, m.keys.Again) || key.Matches(msg, m.keys.Action) {
			m.session.Again()
			if m.session.Phase() == fishing.PhaseIdle {
				m.session.Start()
				m.aim = fishing.Position{X: 0, Y: 3}
			}
		}
	case fishing.PhaseEnded:
		if key.Matches(msg, m.keys.Action) {
			m.status = m.session.View().Message
			m.session = nil
			m.screen = screenHome
		}
	}
	return m, nil
}

func (m model) updateDex(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	total := catalog.Count()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Back):
		m.screen = screenHome
	case key.Matches(msg, m.keys.Up):
		m.dexIdx = (m.dexIdx + total - 1) % total
	case key.Matches(msg, m.keys.Down):
		m.dexIdx = (m.dexIdx + 1) % total
	case key.Matches(msg, m.keys.Action):
		m.screen = screenDetail
	}
	return m, nil
}

func (m model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Action):
		m.screen = screenDex
	}
	return m, nil
}

func (m model) updateProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Action):
		m.screen = screenHome
	}
	return m, nil
}

func (m model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Back):
		m.screen = screenHome
	case key.Matches(msg, m.keys.Up):
		m.settingsIdx = (m.settingsIdx + len(settingLabels) - 1) % len(settingLabels)
	case key.Matches(msg, m.keys.Down):
		m.settingsIdx = (m.settingsIdx + 1) % len(settingLabels)
	case key.Matches(msg, m.keys.Action):
		cur := m.store.Settings()
		var patch game.SettingsPatch
		switch settingItem(m.settingsIdx) {
		case settingSound:
			v := !cur.SoundEnabled
			patch.SoundEnabled = &v
		case settingVibration:
			v := !cur.VibrationEnabled
			patch.VibrationEnabled = &v
		case settingLeftHand:
			v := !cur.LeftHandMode
			patch.LeftHandMode = &v
		}
		m.store.UpdateSettings(m.ctx, patch)
	}
	return m, nil
}
