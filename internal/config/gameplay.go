package config

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidGameplay = errors.New("invalid gameplay config")

// RarityWeight maps a cumulative probability upper bound to a rarity tier.
type RarityWeight struct {
	Rarity     int
	Cumulative float64
}

// RarityWeights is the 40/35/20/5 draw for 2★..5★.
var RarityWeights = []RarityWeight{
	{Rarity: 2, Cumulative: 0.40},
	{Rarity: 3, Cumulative: 0.75},
	{Rarity: 4, Cumulative: 0.95},
	{Rarity: 5, Cumulative: 1.0},
}

type Gameplay struct {
	DailyTryLimit   int
	EnforceTryLimit bool

	BiteDelayMin        time.Duration
	BiteDelayMax        time.Duration
	HitWindow           time.Duration
	MaxMissedBiteCycles int
	ThrowAnimDuration   time.Duration

	ReelRoundsToWin          int
	FailLimit                int
	TargetArcStartDeg        float64
	TargetArcWidthDeg        float64
	RotationSpeedStartDegSec float64
	RotationSpeedGainDegSec  float64
	ClickToleranceDeg        float64
	TickRate                 int
}

func DefaultGameplay() Gameplay {
	return Gameplay{
		DailyTryLimit:   5,
		EnforceTryLimit: true,

		BiteDelayMin:        2500 * time.Millisecond,
		BiteDelayMax:        5000 * time.Millisecond,
		HitWindow:           1000 * time.Millisecond,
		MaxMissedBiteCycles: 3,
		ThrowAnimDuration:   800 * time.Millisecond,

		ReelRoundsToWin:          3,
		FailLimit:                2,
		TargetArcStartDeg:        90,
		TargetArcWidthDeg:        40,
		RotationSpeedStartDegSec: 180,
		RotationSpeedGainDegSec:  60,
		ClickToleranceDeg:        6,
		TickRate:                 60,
	}
}

func (g Gameplay) Validate() error {
	switch {
	case g.DailyTryLimit < 1:
		return fmt.Errorf("%w: daily try limit must be >= 1", ErrInvalidGameplay)
	case g.BiteDelayMin <= 0 || g.BiteDelayMin >= g.BiteDelayMax:
		return fmt.Errorf("%w: bite delay min must be positive and below max", ErrInvalidGameplay)
	case g.HitWindow <= 0:
		return fmt.Errorf("%w: hit window must be positive", ErrInvalidGameplay)
	case g.MaxMissedBiteCycles < 1:
		return fmt.Errorf("%w: max missed bite cycles must be >= 1", ErrInvalidGameplay)
	case g.ThrowAnimDuration < 0:
		return fmt.Errorf("%w: throw animation duration must not be negative", ErrInvalidGameplay)
	case g.ReelRoundsToWin < 1 || g.FailLimit < 1:
		return fmt.Errorf("%w: reel rounds and fail limit must be >= 1", ErrInvalidGameplay)
	case g.TargetArcStartDeg < 0 || g.TargetArcStartDeg >= 360:
		return fmt.Errorf("%w: target arc start must be in [0,360)", ErrInvalidGameplay)
	case g.TargetArcWidthDeg <= 0 || g.TargetArcWidthDeg >= 360:
		return fmt.Errorf("%w: target arc width must be in (0,360)", ErrInvalidGameplay)
	case g.RotationSpeedStartDegSec <= 0 || g.RotationSpeedGainDegSec < 0:
		return fmt.Errorf("%w: rotation speed must be positive with non-negative gain", ErrInvalidGameplay)
	case g.ClickToleranceDeg < 0:
		return fmt.Errorf("%w: click tolerance must not be negative", ErrInvalidGameplay)
	case g.TickRate < 1:
		return fmt.Errorf("%w: tick rate must be >= 1", ErrInvalidGameplay)
	}
	return validateWeights(RarityWeights)
}

func validateWeights(weights []RarityWeight) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: rarity weights are empty", ErrInvalidGameplay)
	}
	prev := 0.0
	for _, w := range weights {
		if w.Cumulative <= prev {
			return fmt.Errorf("%w: rarity weights must be strictly increasing", ErrInvalidGameplay)
		}
		prev = w.Cumulative
	}
	if prev != 1.0 {
		return fmt.Errorf("%w: last rarity weight must be 1.0", ErrInvalidGameplay)
	}
	return nil
}

// TickInterval is the period of the pointer rotation tick.
func (g Gameplay) TickInterval() time.Duration {
	return time.Second / time.Duration(g.TickRate)
}

// RotationSpeed returns degrees per second after the given number of successful rounds.
func (g Gameplay) RotationSpeed(successes int) float64 {
	return g.RotationSpeedStartDegSec + float64(successes)*g.RotationSpeedGainDegSec
}

// InTargetArc reports whether angle falls inside the target arc widened by the click tolerance.
// Arcs that cross 0° are handled by measuring the offset from the widened start.
func (g Gameplay) InTargetArc(angle float64) bool {
	span := g.TargetArcWidthDeg + 2*g.ClickToleranceDeg
	if span >= 360 {
		return true
	}
	offset := math.Mod(angle-(g.TargetArcStartDeg-g.ClickToleranceDeg), 360)
	if offset < 0 {
		offset += 360
	}
	return offset <= span
}

// ShouldResetDailyTries reports whether now falls on a different local calendar
// day than lastResetISO. A missing or unparsable timestamp always resets.
func ShouldResetDailyTries(lastResetISO string, now time.Time) bool {
	if lastResetISO == "" {
		return true
	}
	last, err := parseResetTime(lastResetISO, now.Location())
	if err != nil {
		return true
	}
	ly, lm, ld := last.Date()
	ny, nm, nd := now.Date()
	return ly != ny || lm != nm || ld != nd
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseResetTime accepts RFC 3339 timestamps and zone-less ISO dates, the
// latter read in loc.
func parseResetTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.In(loc), nil
	}
	var lastErr error
	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
