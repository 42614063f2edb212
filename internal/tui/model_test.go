package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"fishyday/internal/catalog"
	"fishyday/internal/clock"
	"fishyday/internal/config"
	"fishyday/internal/fishing"
	"fishyday/internal/game"
	"fishyday/internal/storage"
)

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	right = tea.KeyMsg{Type: tea.KeyRight}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

type fixture struct {
	cfg   config.Gameplay
	clk   *clock.Manual
	store *game.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.DefaultGameplay()
	clk := clock.NewManual(time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := game.NewStore(storage.New(storage.NewMemory()), cfg, logger, game.WithClock(clk.Now))
	return &fixture{cfg: cfg, clk: clk, store: store}
}

func (f *fixture) model(t *testing.T, nickname string) model {
	t.Helper()
	ctx := context.Background()
	if nickname != "" {
		f.store.SaveProfile(ctx, game.Profile{Nickname: nickname})
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newModel(ctx, Options{Store: f.store, Gameplay: f.cfg, Seed: 3, Logger: logger}, f.clk)
}

func press(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func TestOnboardingSavesProfile(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, "")
	if m.screen != screenOnboarding {
		t.Fatalf("expected onboarding for a new player, got %v", m.screen)
	}

	m = press(t, m, enter)
	if m.screen != screenOnboarding || m.status == "" {
		t.Fatalf("empty nickname should be refused")
	}

	m = press(t, m, runes("Mika"), enter)
	if m.screen != screenHome {
		t.Fatalf("expected home after onboarding, got %v", m.screen)
	}
	p, ok := f.store.Profile(context.Background())
	if !ok || p.Nickname != "Mika" || p.OnboardedAt.IsZero() {
		t.Fatalf("profile not saved: %+v ok=%v", p, ok)
	}
	if !strings.Contains(m.View(), "Hi, Mika!") {
		t.Fatalf("home should greet the player")
	}
}

func TestReturningPlayerStartsAtHome(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, "Mika")
	if m.screen != screenHome {
		t.Fatalf("expected home, got %v", m.screen)
	}
	if !strings.Contains(m.View(), "Tries left today: 5/5") {
		t.Fatalf("home should show remaining tries:\n%s", m.View())
	}
}

func TestHomeMenuNavigation(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, "Mika")

	m = press(t, m, up)
	if menuItem(m.menuIdx) != itemQuit {
		t.Fatalf("up from the top should wrap to quit, got %d", m.menuIdx)
	}
	m = press(t, m, down, down, enter)
	if m.screen != screenDex {
		t.Fatalf("expected encyclopedia, got %v", m.screen)
	}
	m = press(t, m, esc, down, enter)
	if m.screen != screenProfile {
		t.Fatalf("expected profile, got %v", m.screen)
	}
	m = press(t, m, esc, down, enter)
	if m.screen != screenSettings {
		t.Fatalf("expected settings, got %v", m.screen)
	}
}

func TestFishingThroughTheUI(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, "Mika")

	m = press(t, m, enter)
	if m.screen != screenFishing || m.session.Phase() != fishing.PhaseCasting {
		t.Fatalf("expected casting, got screen %v", m.screen)
	}
	m = press(t, m, right, enter)
	f.clk.Advance(f.cfg.ThrowAnimDuration)
	if got := m.session.View(); got.Phase != fishing.PhaseWaiting || got.CastPosition.X != 1 {
		t.Fatalf("unexpected view after cast %+v", got)
	}
	f.clk.FireNext()
	m = press(t, m, enter)
	if m.session.Phase() != fishing.PhaseHooking {
		t.Fatalf("expected hooking, got %s", m.session.Phase())
	}
	f.clk.Advance(30 * f.cfg.TickInterval())
	m = press(t, m, enter, enter, enter)

	v := m.session.View()
	if v.Phase != fishing.PhaseResult || v.CaughtFish == nil {
		t.Fatalf("expected a catch, got %+v", v)
	}
	if !strings.Contains(m.View(), v.CaughtFish.Name) {
		t.Fatalf("result screen should name the fish")
	}

	m = press(t, m, runes("a"))
	if m.session.Phase() != fishing.PhaseCasting {
		t.Fatalf("again should start a new cast, got %s", m.session.Phase())
	}
	m = press(t, m, esc)
	if m.screen != screenHome || m.session != nil {
		t.Fatalf("esc should return home")
	}
	st := f.store.Stats(context.Background())
	if st.TriesUsedToday != 1 || st.TotalCatches != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestLeavingMidSessionSpendsTry(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, "Mika")
	m = press(t, m, enter, enter)
	f.clk.Advance(f.cfg.ThrowAnimDuration)
	m = press(t, m, esc)

	if m.screen != screenHome {
		t.Fatalf("expected home, got %v", m.screen)
	}
	if !strings.Contains(m.status, "reeled in early") {
		t.Fatalf("unexpected status %q", m.status)
	}
	if got := f.store.Stats(context.Background()).RemainingTries; got != 4 {
		t.Fatalf("remaining tries = %d", got)
	}
	if f.clk.Pending() != 0 {
		t.Fatalf("timers left armed after leaving")
	}
}

func TestNoTriesKeepsPlayerHome(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, "Mika")
	for i := 0; i < f.cfg.DailyTryLimit; i++ {
		f.store.ConsumeTry(context.Background())
	}
	m = press(t, m, enter)
	if m.screen != screenHome || m.session != nil {
		t.Fatalf("fishing should not start without tries")
	}
	if !strings.Contains(m.status, "No tries left today") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestSettingsToggle(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, "Mika")
	m = press(t, m, down, down, down, enter)
	m = press(t, m, enter)
	if f.store.Settings().SoundEnabled {
		t.Fatalf("sound should be toggled off")
	}
	m = press(t, m, down, down, enter)
	s := f.store.Settings()
	if !s.LeftHandMode || !s.VibrationEnabled {
		t.Fatalf("unexpected settings %+v", s)
	}
	if !strings.Contains(m.View(), "Left-hand mode") {
		t.Fatalf("settings screen should list toggles")
	}
}

func TestDexHidesUncaughtFish(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, "Mika")
	fish, err := catalog.ByID(2)
	if err != nil {
		t.Fatalf("lookup fish: %v", err)
	}
	other, _ := catalog.ByID(1)
	f.store.RecordCatch(context.Background(), fish, nil)

	m = press(t, m, down, enter)
	view := m.View()
	if !strings.Contains(view, fish.Name) {
		t.Fatalf("caught fish should be named")
	}
	if strings.Contains(view, other.Name) || !strings.Contains(view, "???") {
		t.Fatalf("uncaught fish should be hidden")
	}

	m = press(t, m, down, enter)
	if m.screen != screenDetail || !strings.Contains(m.View(), catalog.ShareText(fish)) {
		t.Fatalf("details should show share text:\n%s", m.View())
	}
}

func TestTimerMsgRunsCallback(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, "Mika")
	ran := false
	press(t, m, timerMsg{fn: func() { ran = true }})
	if !ran {
		t.Fatalf("timer callback not run")
	}
}

func TestDial(t *testing.T) {
	got := dial(0, 90, 40)
	if n := strings.Count(got, "█"); n != 4 {
		t.Fatalf("target cells = %d, want 4", n)
	}
	if !strings.HasPrefix(got, "▲") {
		t.Fatalf("pointer should start at the first cell: %q", got)
	}
	if n := strings.Count(dial(95, 90, 40), "█"); n != 3 {
		t.Fatalf("pointer should cover one target cell, got %d", n)
	}
}

func TestAbandonSettlesSessionInProgress(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, "Mika")
	m = press(t, m, enter, enter)
	f.clk.Advance(f.cfg.ThrowAnimDuration)
	sess := m.session
	if sess.Phase() != fishing.PhaseWaiting {
		t.Fatalf("expected waiting, got %s", sess.Phase())
	}

	// The program can stop without a key press; the last model is settled.
	m = m.abandon()
	if m.session != nil || sess.Phase() != fishing.PhaseEnded {
		t.Fatalf("session not ended: %s", sess.Phase())
	}
	if got := f.store.Stats(context.Background()).TriesUsedToday; got != 1 {
		t.Fatalf("tries used = %d, want 1", got)
	}
	if f.clk.Pending() != 0 {
		t.Fatalf("timers left armed")
	}
	m.abandon()
	if got := f.store.Stats(context.Background()).TriesUsedToday; got != 1 {
		t.Fatalf("second abandon spent another try: %d", got)
	}
}
