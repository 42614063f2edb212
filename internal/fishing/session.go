// Package fishing runs one cast→wait→bite→hook→result play-through as an
// explicit state machine. Every input and timer callback enters through
// Dispatch, and the owner must deliver them one at a time.
package fishing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"fishyday/internal/catalog"
	"fishyday/internal/clock"
	"fishyday/internal/config"
	"fishyday/internal/game"
)

// Ledger is the part of game.Store a session needs.
type Ledger interface {
	RemainingTries(ctx context.Context) int
	ConsumeTry(ctx context.Context)
	RecordCatch(ctx context.Context, fish catalog.Fish, hookTimeMs *int64) game.Catch
}

type HookProgress struct {
	Success   int
	Fail      int
	Needed    int
	FailLimit int
}

type View struct {
	Phase          Phase
	Message        string
	Outcome        Outcome
	CastPosition   Position
	BiteCount      int
	HookProgress   HookProgress
	Angle          float64
	TargetArcStart float64
	TargetArcWidth float64
	HookTimeMs     *int64
	CaughtFish     *catalog.Fish
	Catch          *game.Catch
}

type handler func(s *Session, ev Event) bool

// transitions lists every legal (phase, event) pair. Anything else is
// rejected without touching the session. It is filled in init because the
// handlers reach back into Dispatch through their timers.
var transitions map[Phase]map[EventKind]handler

func init() {
	transitions = map[Phase]map[EventKind]handler{
		PhaseIdle: {
			EventStart: (*Session).onStart,
			EventExit:  (*Session).onExit,
		},
		PhaseCasting: {
			EventReleaseCast: (*Session).onReleaseCast,
			EventThrowLanded: (*Session).onThrowLanded,
			EventExit:        (*Session).onExit,
		},
		PhaseWaiting: {
			EventBite: (*Session).onBite,
			EventExit: (*Session).onExit,
		},
		PhaseBiting: {
			EventBiteExpired: (*Session).onBiteExpired,
			EventReel:        (*Session).onReel,
			EventExit:        (*Session).onExit,
		},
		PhaseHooking: {
			EventTick: (*Session).onTick,
			EventHook: (*Session).onHook,
			EventExit: (*Session).onExit,
		},
		PhaseResult: {
			EventAgain: (*Session).onAgain,
			EventExit:  (*Session).onExit,
		},
	}
}

type Session struct {
	ctx    context.Context
	cfg    config.Gameplay
	ledger Ledger
	sched  clock.Scheduler
	rng    *rand.Rand
	log    *slog.Logger

	mu        sync.Mutex
	phase     Phase
	message   string
	outcome   Outcome
	castPos   Position
	released  bool
	biteCount int
	success   int
	fails     int
	angle     float64
	hookStart time.Time
	hookTime  *int64
	caught    *catalog.Fish
	catch     *game.Catch

	// epoch advances whenever the armed timers are cancelled, so a callback
	// that was already queued can tell it belongs to a finished phase.
	epoch  uint64
	timers []clock.Timer
}

func NewSession(ctx context.Context, cfg config.Gameplay, ledger Ledger, sched clock.Scheduler, rng *rand.Rand, logger *slog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ledger == nil || sched == nil {
		return nil, fmt.Errorf("fishing session needs a ledger and a scheduler")
	}
	if rng == nil {
		rng = catalog.NewRand(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ctx:    ctx,
		cfg:    cfg,
		ledger: ledger,
		sched:  sched,
		rng:    rng,
		log:    logger,
		phase:  PhaseIdle,
		epoch:  1,
	}, nil
}

// Dispatch applies ev and reports whether it was accepted.
func (s *Session) Dispatch(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Kind.timer() && ev.epoch != s.epoch {
		s.log.Debug("stale timer dropped", "phase", s.phase.String(), "event", ev.Kind.String())
		return false
	}
	h, ok := transitions[s.phase][ev.Kind]
	if !ok {
		s.log.Debug("input rejected", "phase", s.phase.String(), "event", ev.Kind.String())
		return false
	}
	before := s.phase
	if !h(s, ev) {
		s.log.Debug("input rejected", "phase", s.phase.String(), "event", ev.Kind.String())
		return false
	}
	if s.phase != before {
		s.log.Debug("phase changed", "from", before.String(), "to", s.phase.String(), "event", ev.Kind.String())
	}
	return true
}

func (s *Session) Start() bool {
	return s.Dispatch(Event{Kind: EventStart})
}

// ReleaseCast throws the line at pos; the float lands after the throw animation.
func (s *Session) ReleaseCast(pos Position) bool {
	return s.Dispatch(Event{Kind: EventReleaseCast, Pos: pos})
}

func (s *Session) Reel() bool {
	return s.Dispatch(Event{Kind: EventReel})
}

func (s *Session) Hook() bool {
	return s.Dispatch(Event{Kind: EventHook})
}

func (s *Session) Again() bool {
	return s.Dispatch(Event{Kind: EventAgain})
}

func (s *Session) Exit() bool {
	return s.Dispatch(Event{Kind: EventExit})
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		Phase:        s.phase,
		Message:      s.message,
		Outcome:      s.outcome,
		CastPosition: s.castPos,
		BiteCount:    s.biteCount,
		HookProgress: HookProgress{
			Success:   s.success,
			Fail:      s.fails,
			Needed:    s.cfg.ReelRoundsToWin,
			FailLimit: s.cfg.FailLimit,
		},
		Angle:          s.angle,
		TargetArcStart: s.cfg.TargetArcStartDeg,
		TargetArcWidth: s.cfg.TargetArcWidthDeg,
	}
	if s.hookTime != nil {
		t := *s.hookTime
		v.HookTimeMs = &t
	}
	if s.caught != nil {
		f := *s.caught
		v.CaughtFish = &f
	}
	if s.catch != nil {
		c := *s.catch
		v.Catch = &c
	}
	return v
}

// enter cancels everything armed for the current phase before switching.
func (s *Session) enter(p Phase, msg string) {
	s.cancelTimers()
	s.phase = p
	s.message = msg
}

func (s *Session) cancelTimers() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = s.timers[:0]
	s.epoch++
}

func (s *Session) after(d time.Duration, kind EventKind) {
	epoch := s.epoch
	s.timers = append(s.timers, s.sched.AfterFunc(d, func() {
		s.Dispatch(Event{Kind: kind, epoch: epoch})
	}))
}

func (s *Session) every(d time.Duration, kind EventKind) {
	epoch := s.epoch
	s.timers = append(s.timers, s.sched.Every(d, func() {
		s.Dispatch(Event{Kind: kind, epoch: epoch})
	}))
}

func (s *Session) triesExhausted() bool {
	return s.cfg.EnforceTryLimit && s.ledger.RemainingTries(s.ctx) <= 0
}

func (s *Session) reset() {
	s.outcome = OutcomeNone
	s.castPos = Position{}
	s.released = false
	s.biteCount = 0
	s.success = 0
	s.fails = 0
	s.angle = 0
	s.hookStart = time.Time{}
	s.hookTime = nil
	s.caught = nil
	s.catch = nil
}

func (s *Session) onStart(Event) bool {
	if s.triesExhausted() {
		s.message = msgNoTries
		return false
	}
	s.reset()
	s.enter(PhaseCasting, msgCast)
	return true
}

func (s *Session) onReleaseCast(ev Event) bool {
	if s.released {
		return false
	}
	s.released = true
	s.castPos = ev.Pos
	s.after(s.cfg.ThrowAnimDuration, EventThrowLanded)
	return true
}

func (s *Session) onThrowLanded(Event) bool {
	s.enter(PhaseWaiting, msgWaiting)
	s.scheduleBite()
	return true
}

// scheduleBite arms the bite after a fresh uniform delay in [min, max).
func (s *Session) scheduleBite() {
	spread := int64(s.cfg.BiteDelayMax - s.cfg.BiteDelayMin)
	delay := s.cfg.BiteDelayMin + time.Duration(s.rng.Int64N(spread))
	s.after(delay, EventBite)
}

func (s *Session) onBite(Event) bool {
	s.enter(PhaseBiting, msgBite)
	s.after(s.cfg.HitWindow, EventBiteExpired)
	return true
}

func (s *Session) onBiteExpired(Event) bool {
	s.biteCount++
	if s.biteCount >= s.cfg.MaxMissedBiteCycles {
		s.finish(OutcomeMissedBites, msgTooManyBites)
		return true
	}
	s.enter(PhaseWaiting, msgMissedBite)
	s.scheduleBite()
	return true
}

func (s *Session) onReel(Event) bool {
	s.enter(PhaseHooking, msgHooking)
	s.success = 0
	s.fails = 0
	s.angle = 0
	s.hookStart = s.sched.Now()
	s.every(s.cfg.TickInterval(), EventTick)
	return true
}

// onTick advances the pointer; speed grows with every successful round.
func (s *Session) onTick(Event) bool {
	step := s.cfg.RotationSpeed(s.success) / float64(s.cfg.TickRate)
	s.angle = math.Mod(s.angle+step, 360)
	return true
}

func (s *Session) onHook(Event) bool {
	if s.cfg.InTargetArc(s.angle) {
		s.success++
		s.message = fmt.Sprintf("Great! %d/%d", s.success, s.cfg.ReelRoundsToWin)
		if s.success >= s.cfg.ReelRoundsToWin {
			elapsed := s.sched.Now().Sub(s.hookStart).Milliseconds()
			s.hookTime = &elapsed
			s.finish(OutcomeCaught, msgCaught)
		}
		return true
	}
	s.fails++
	s.message = fmt.Sprintf("Miss! %d/%d fails", s.fails, s.cfg.FailLimit)
	if s.fails >= s.cfg.FailLimit {
		s.finish(OutcomeTooManyMisses, msgTooManyMisses)
	}
	return true
}

// finish enters Result, spends the try and, on success, lands a fish.
func (s *Session) finish(outcome Outcome, msg string) {
	s.enter(PhaseResult, msg)
	s.outcome = outcome
	if s.cfg.EnforceTryLimit {
		s.ledger.ConsumeTry(s.ctx)
	}
	if outcome.Success() {
		fish := catalog.RandomFish(s.rng)
		s.caught = &fish
		c := s.ledger.RecordCatch(s.ctx, fish, s.hookTime)
		s.catch = &c
		s.log.Info("session caught fish", "fish_id", fish.ID, "rarity", fish.Rarity, "hook_time_ms", *s.hookTime)
		return
	}
	s.log.Info("session failed", "outcome", outcome.String(), "bite_count", s.biteCount, "hook_fails", s.fails)
}

func (s *Session) onAgain(Event) bool {
	if s.triesExhausted() {
		s.enter(PhaseEnded, msgNoTries)
		return true
	}
	s.reset()
	s.enter(PhaseIdle, "")
	return true
}

// onExit ends the session. Leaving after the line is in the water counts as
// a failed session and spends the try.
func (s *Session) onExit(Event) bool {
	forfeit := s.phase == PhaseWaiting || s.phase == PhaseBiting || s.phase == PhaseHooking
	s.enter(PhaseEnded, s.message)
	if !forfeit {
		return true
	}
	s.outcome = OutcomeAbandoned
	s.message = msgAbandoned
	if s.cfg.EnforceTryLimit {
		s.ledger.ConsumeTry(s.ctx)
	}
	s.log.Info("session abandoned", "bite_count", s.biteCount)
	return true
}
