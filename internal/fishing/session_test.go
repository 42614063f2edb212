package fishing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"fishyday/internal/catalog"
	"fishyday/internal/clock"
	"fishyday/internal/config"
	"fishyday/internal/game"
	"fishyday/internal/storage"
)

type harness struct {
	t     *testing.T
	cfg   config.Gameplay
	clk   *clock.Manual
	store *game.Store
	sess  *Session
}

func newHarness(t *testing.T, seed int64, mutate func(*config.Gameplay)) *harness {
	t.Helper()
	cfg := config.DefaultGameplay()
	if mutate != nil {
		mutate(&cfg)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewManual(time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local))
	store := game.NewStore(storage.New(storage.NewMemory()), cfg, logger, game.WithClock(clk.Now))
	store.Initialize(context.Background())
	sess, err := NewSession(context.Background(), cfg, store, clk, catalog.NewRand(seed), logger)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return &harness{t: t, cfg: cfg, clk: clk, store: store, sess: sess}
}

func (h *harness) expectPhase(want Phase) {
	h.t.Helper()
	if got := h.sess.Phase(); got != want {
		h.t.Fatalf("phase = %s, want %s", got, want)
	}
}

// castAndLand takes a fresh session to Waiting.
func (h *harness) castAndLand() {
	h.t.Helper()
	if !h.sess.Start() {
		h.t.Fatalf("start rejected")
	}
	h.expectPhase(PhaseCasting)
	if !h.sess.ReleaseCast(Position{X: 1, Y: 1}) {
		h.t.Fatalf("release rejected")
	}
	h.expectPhase(PhaseCasting)
	h.clk.Advance(h.cfg.ThrowAnimDuration)
	h.expectPhase(PhaseWaiting)
}

// fireBite forces the pending bite timer.
func (h *harness) fireBite() {
	h.t.Helper()
	if !h.clk.FireNext() {
		h.t.Fatalf("no bite timer armed")
	}
	h.expectPhase(PhaseBiting)
}

func (h *harness) toHooking() {
	h.t.Helper()
	h.castAndLand()
	h.fireBite()
	if !h.sess.Reel() {
		h.t.Fatalf("reel rejected")
	}
	h.expectPhase(PhaseHooking)
}

func (h *harness) ticks(n int) {
	h.clk.Advance(time.Duration(n) * h.cfg.TickInterval())
}

func (h *harness) lastTimer() *clock.ManualTimer {
	all := h.clk.Scheduled()
	return all[len(all)-1]
}

func TestSuccessfulSessionEndToEnd(t *testing.T) {
	h := newHarness(t, 7, nil)
	before := h.store.State()

	h.toHooking()
	if v := h.sess.View(); v.CastPosition != (Position{X: 1, Y: 1}) {
		t.Fatalf("cast position = %+v", v.CastPosition)
	}

	// 30 ticks at 180°/s and 60Hz puts the pointer at 90°, inside the arc.
	h.ticks(30)
	if got := h.sess.View().Angle; got != 90 {
		t.Fatalf("angle = %v, want 90", got)
	}
	for i := 1; i <= 3; i++ {
		if !h.sess.Hook() {
			t.Fatalf("hook %d rejected", i)
		}
	}

	v := h.sess.View()
	if v.Phase != PhaseResult || v.Outcome != OutcomeCaught {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.CaughtFish == nil || v.Catch == nil || v.Catch.FishID != v.CaughtFish.ID {
		t.Fatalf("expected caught fish and catch, got %+v / %+v", v.CaughtFish, v.Catch)
	}
	if v.HookTimeMs == nil || *v.HookTimeMs != 499 {
		t.Fatalf("hook time = %v, want 499", v.HookTimeMs)
	}
	if v.Message != msgCaught || v.HookProgress.Success != 3 {
		t.Fatalf("unexpected result view %+v", v)
	}

	after := h.store.State()
	if after.TriesUsedToday != before.TriesUsedToday+1 {
		t.Fatalf("tries used %d -> %d", before.TriesUsedToday, after.TriesUsedToday)
	}
	if len(after.Catches) != len(before.Catches)+1 {
		t.Fatalf("catches %d -> %d", len(before.Catches), len(after.Catches))
	}
	if after.BestHookTimeMs != 499 {
		t.Fatalf("best hook time = %v", after.BestHookTimeMs)
	}
	if h.clk.Pending() != 0 {
		t.Fatalf("timers left armed in Result: %d", h.clk.Pending())
	}
}

func TestMissedBitesEndSession(t *testing.T) {
	h := newHarness(t, 1, nil)
	before := h.store.State()
	h.castAndLand()

	for i := 1; i <= h.cfg.MaxMissedBiteCycles; i++ {
		h.fireBite()
		if !h.clk.FireNext() {
			t.Fatalf("no miss timer armed on cycle %d", i)
		}
		if i < h.cfg.MaxMissedBiteCycles {
			h.expectPhase(PhaseWaiting)
			if msg := h.sess.View().Message; msg != msgMissedBite {
				t.Fatalf("message = %q", msg)
			}
		}
	}

	v := h.sess.View()
	if v.Phase != PhaseResult || v.Outcome != OutcomeMissedBites || v.CaughtFish != nil {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.BiteCount != 3 || v.Message != msgTooManyBites {
		t.Fatalf("unexpected view %+v", v)
	}
	after := h.store.State()
	if after.TriesUsedToday != before.TriesUsedToday+1 || len(after.Catches) != len(before.Catches) {
		t.Fatalf("bookkeeping off: %+v -> %+v", before, after)
	}
}

func TestTooManyHookMisses(t *testing.T) {
	h := newHarness(t, 1, nil)
	h.toHooking()
	// Pointer sits at 0°, well outside the 84°-136° window.
	h.sess.Hook()
	if v := h.sess.View(); v.Phase != PhaseHooking || v.HookProgress.Fail != 1 || v.Message != "Miss! 1/2 fails" {
		t.Fatalf("unexpected view after first miss %+v", v)
	}
	h.sess.Hook()
	v := h.sess.View()
	if v.Phase != PhaseResult || v.Outcome != OutcomeTooManyMisses || v.CaughtFish != nil {
		t.Fatalf("unexpected view %+v", v)
	}
	if got := h.store.State().TriesUsedToday; got != 1 {
		t.Fatalf("tries used = %d", got)
	}
	if len(h.store.State().Catches) != 0 {
		t.Fatalf("failed session recorded a catch")
	}
}

func TestBiteDelayWithinBounds(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		h := newHarness(t, seed, nil)
		h.castAndLand()
		landed := h.clk.Now()
		h.clk.Advance(h.cfg.BiteDelayMin - time.Millisecond)
		h.expectPhase(PhaseWaiting)
		if !h.clk.FireNext() {
			t.Fatalf("seed %d: no bite timer armed", seed)
		}
		h.expectPhase(PhaseBiting)
		if delay := h.clk.Now().Sub(landed); delay < h.cfg.BiteDelayMin || delay >= h.cfg.BiteDelayMax {
			t.Fatalf("seed %d: bite after %v, want [%v, %v)", seed, delay, h.cfg.BiteDelayMin, h.cfg.BiteDelayMax)
		}
	}
}

func TestHookWhileWaitingIsNoop(t *testing.T) {
	h := newHarness(t, 1, nil)
	h.castAndLand()
	before := h.sess.View()
	if h.sess.Hook() {
		t.Fatalf("hook accepted while waiting")
	}
	if after := h.sess.View(); !reflect.DeepEqual(before, after) {
		t.Fatalf("view changed: %+v -> %+v", before, after)
	}
}

func TestIllegalInputsAreRejected(t *testing.T) {
	h := newHarness(t, 1, nil)
	for _, fn := range []func() bool{h.sess.Reel, h.sess.Hook, h.sess.Again} {
		if fn() {
			t.Fatalf("input accepted while idle")
		}
	}
	if h.sess.ReleaseCast(Position{}) {
		t.Fatalf("release accepted while idle")
	}
	h.castAndLand()
	before := h.sess.View()
	for _, fn := range []func() bool{h.sess.Start, h.sess.Reel, h.sess.Hook, h.sess.Again} {
		if fn() {
			t.Fatalf("input accepted while waiting")
		}
	}
	if h.sess.ReleaseCast(Position{X: 9, Y: 9}) {
		t.Fatalf("release accepted while waiting")
	}
	if after := h.sess.View(); !reflect.DeepEqual(before, after) {
		t.Fatalf("view changed: %+v -> %+v", before, after)
	}
}

func TestSecondReleaseIgnored(t *testing.T) {
	h := newHarness(t, 1, nil)
	h.sess.Start()
	if !h.sess.ReleaseCast(Position{X: 1, Y: 2}) {
		t.Fatalf("first release rejected")
	}
	if h.sess.ReleaseCast(Position{X: 5, Y: 5}) {
		t.Fatalf("second release accepted")
	}
	if h.clk.Pending() != 1 {
		t.Fatalf("expected one throw timer, got %d", h.clk.Pending())
	}
	if got := h.sess.View().CastPosition; got != (Position{X: 1, Y: 2}) {
		t.Fatalf("cast position = %+v", got)
	}
}

func TestExitDuringHookingCancelsTick(t *testing.T) {
	h := newHarness(t, 1, nil)
	h.toHooking()
	h.ticks(30)
	h.sess.Hook()
	ticker := h.lastTimer()
	if !ticker.Repeating() {
		t.Fatalf("expected the rotation ticker to be the last timer")
	}

	if !h.sess.Exit() {
		t.Fatalf("exit rejected")
	}
	if !ticker.Stopped() || h.clk.Pending() != 0 {
		t.Fatalf("exit left timers armed")
	}
	frozen := h.sess.View()
	ticker.Invoke()
	h.clk.Advance(time.Minute)
	if after := h.sess.View(); !reflect.DeepEqual(frozen, after) {
		t.Fatalf("stale tick changed the session: %+v -> %+v", frozen, after)
	}
	if frozen.Phase != PhaseEnded || frozen.Outcome != OutcomeAbandoned || frozen.HookProgress.Success != 1 {
		t.Fatalf("unexpected view %+v", frozen)
	}
	if got := h.store.State().TriesUsedToday; got != 1 {
		t.Fatalf("abandoning mid-session must spend the try, used=%d", got)
	}
	if h.sess.Hook() || h.sess.Again() || h.sess.Exit() {
		t.Fatalf("ended session accepted input")
	}
}

func TestStaleMissTimerAfterReel(t *testing.T) {
	h := newHarness(t, 1, nil)
	h.castAndLand()
	h.fireBite()
	miss := h.lastTimer()
	h.sess.Reel()
	miss.Invoke()
	v := h.sess.View()
	if v.Phase != PhaseHooking || v.BiteCount != 0 {
		t.Fatalf("stale miss timer leaked into hooking: %+v", v)
	}
}

func TestRotationSpeedGrowsPerRound(t *testing.T) {
	h := newHarness(t, 1, nil)
	h.toHooking()
	h.ticks(30)
	h.sess.Hook()
	h.ticks(1)
	if got := h.sess.View().Angle; got != 94 {
		t.Fatalf("angle after one hit = %v, want 94", got)
	}
	h.sess.Hook()
	h.ticks(1)
	if got := h.sess.View().Angle; got != 99 {
		t.Fatalf("angle after two hits = %v, want 99", got)
	}
}

func TestPointerWraps(t *testing.T) {
	h := newHarness(t, 1, nil)
	h.toHooking()
	h.ticks(130) // 390°
	if got := h.sess.View().Angle; got != 30 {
		t.Fatalf("angle = %v, want 30", got)
	}
}

func TestStartRejectedWithoutTries(t *testing.T) {
	h := newHarness(t, 1, nil)
	for i := 0; i < h.cfg.DailyTryLimit; i++ {
		h.store.ConsumeTry(context.Background())
	}
	if h.sess.Start() {
		t.Fatalf("start accepted with no tries left")
	}
	v := h.sess.View()
	if v.Phase != PhaseIdle || v.Message != msgNoTries {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestAgainRestartsWhileTriesRemain(t *testing.T) {
	h := newHarness(t, 1, nil)
	h.toHooking()
	h.sess.Hook()
	h.sess.Hook()
	h.expectPhase(PhaseResult)

	if !h.sess.Again() {
		t.Fatalf("again rejected")
	}
	v := h.sess.View()
	if v.Phase != PhaseIdle || v.Outcome != OutcomeNone || v.HookProgress.Fail != 0 || v.BiteCount != 0 {
		t.Fatalf("session not reset: %+v", v)
	}
	h.castAndLand()
}

func TestAgainEndsWhenOutOfTries(t *testing.T) {
	h := newHarness(t, 1, func(g *config.Gameplay) { g.DailyTryLimit = 1 })
	h.toHooking()
	h.sess.Hook()
	h.sess.Hook()
	h.expectPhase(PhaseResult)
	h.sess.Again()
	h.expectPhase(PhaseEnded)
}

func TestUnenforcedTryLimit(t *testing.T) {
	h := newHarness(t, 1, func(g *config.Gameplay) {
		g.DailyTryLimit = 1
		g.EnforceTryLimit = false
	})
	h.store.ConsumeTry(context.Background())
	h.toHooking()
	h.ticks(30)
	h.sess.Hook()
	h.sess.Hook()
	h.sess.Hook()
	h.expectPhase(PhaseResult)

	st := h.store.State()
	if st.TriesUsedToday != 1 {
		t.Fatalf("unenforced session consumed a try: %d", st.TriesUsedToday)
	}
	if len(st.Catches) != 1 {
		t.Fatalf("catch not recorded")
	}
	if !h.sess.Again() {
		t.Fatalf("again rejected")
	}
	h.expectPhase(PhaseIdle)
}

func TestExitBeforeCastCostsNothing(t *testing.T) {
	h := newHarness(t, 1, nil)
	h.sess.Start()
	h.sess.ReleaseCast(Position{})
	h.sess.Exit()
	h.expectPhase(PhaseEnded)
	h.clk.Advance(time.Minute)
	h.expectPhase(PhaseEnded)
	if got := h.store.State().TriesUsedToday; got != 0 {
		t.Fatalf("tries used = %d", got)
	}
}

func TestSeededSessionsAreReproducible(t *testing.T) {
	play := func() int {
		h := newHarness(t, 99, nil)
		h.toHooking()
		h.ticks(30)
		h.sess.Hook()
		h.sess.Hook()
		h.sess.Hook()
		return h.sess.View().CaughtFish.ID
	}
	if a, b := play(), play(); a != b {
		t.Fatalf("same seed caught %d and %d", a, b)
	}
}

func TestDispatchDropsForeignTimerEvents(t *testing.T) {
	h := newHarness(t, 1, nil)
	h.castAndLand()
	if h.sess.Dispatch(Event{Kind: EventBite}) {
		t.Fatalf("timer event without a live epoch was accepted")
	}
	h.expectPhase(PhaseWaiting)
}

func TestNewSessionValidates(t *testing.T) {
	cfg := config.DefaultGameplay()
	cfg.FailLimit = 0
	clk := clock.NewManual(time.Now())
	store := game.NewStore(storage.New(storage.NewMemory()), cfg, nil)
	if _, err := NewSession(context.Background(), cfg, store, clk, nil, nil); !errors.Is(err, config.ErrInvalidGameplay) {
		t.Fatalf("expected ErrInvalidGameplay, got %v", err)
	}
	if _, err := NewSession(context.Background(), config.DefaultGameplay(), nil, clk, nil, nil); err == nil {
		t.Fatalf("expected error for missing ledger")
	}
}

func TestPhaseAndOutcomeStrings(t *testing.T) {
	if PhaseHooking.String() != "hooking" || PhaseEnded.String() != "ended" {
		t.Fatalf("unexpected phase names")
	}
	if OutcomeTooManyMisses.String() != "too_many_misses" || !OutcomeCaught.Success() {
		t.Fatalf("unexpected outcome names")
	}
	if EventBiteExpired.String() != "bite_expired" || !EventTick.timer() || EventHook.timer() {
		t.Fatalf("unexpected event kinds")
	}
}
