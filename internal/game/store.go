// Package game owns the daily-try counter, the catch ledger and the player's
// settings. All state lives in memory and is written through to a
// storage.Port after every mutation; storage failures are logged and never
// returned to callers.
package game

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"fishyday/internal/catalog"
	"fishyday/internal/config"
	"fishyday/internal/storage"

	"github.com/google/uuid"
)

type Store struct {
	port  storage.Port
	cfg   config.Gameplay
	log   *slog.Logger
	now   func() time.Time
	newID func() string

	mu    sync.Mutex
	state State
}

type Option func(*Store)

// WithClock overrides time.Now for reset checks and catch timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func NewStore(port storage.Port, cfg config.Gameplay, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		port:  port,
		cfg:   cfg,
		log:   logger,
		now:   time.Now,
		newID: newCatchID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = defaultState(s.now())
	return s
}

func newCatchID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Initialize loads the persisted state, creating it on first launch and
// applying the daily reset when the calendar day changed.
func (s *Store) Initialize(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	blob, err := s.port.Read(ctx, StateKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.state = defaultState(now)
		s.persistLocked(ctx, toRecord(s.state).blob())
		s.log.Info("game state created", "last_reset", s.state.LastResetDate)
		return s.state.clone()
	case errors.Is(err, storage.ErrMalformed):
		s.log.Error("game state unreadable, starting fresh", "key", StateKey, "err", err)
		s.state = defaultState(now)
		s.persistLocked(ctx, toRecord(s.state).blob())
		return s.state.clone()
	case err != nil:
		s.log.Error("load game state failed", "key", StateKey, "err", err)
		s.state = defaultState(now)
		return s.state.clone()
	}

	st, err := decodeState(blob)
	if err != nil {
		s.log.Error("decode game state failed, starting fresh", "key", StateKey, "err", err)
		s.state = defaultState(now)
		s.persistLocked(ctx, toRecord(s.state).blob())
		return s.state.clone()
	}
	s.state = st
	s.rolloverLocked(ctx, now)
	return s.state.clone()
}

func decodeState(blob storage.Blob) (State, error) {
	raw, err := json.Marshal(blob)
	if err != nil {
		return State{}, err
	}
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return State{}, err
	}
	return fromRecord(r), nil
}

// rolloverLocked zeroes the try counter once per local calendar day.
func (s *Store) rolloverLocked(ctx context.Context, now time.Time) {
	if !config.ShouldResetDailyTries(s.state.LastResetDate, now) {
		return
	}
	s.state.TriesUsedToday = 0
	s.state.LastResetDate = now.Format(time.RFC3339Nano)
	s.persistLocked(ctx, storage.Blob{
		"triesUsedToday": mustJSON(0),
		"lastResetDate":  mustJSON(s.state.LastResetDate),
	})
	s.log.Info("daily tries reset", "last_reset", s.state.LastResetDate)
}

func (s *Store) persistLocked(ctx context.Context, partial storage.Blob) {
	if _, err := s.port.Write(ctx, StateKey, partial); err != nil {
		s.log.Error("persist game state failed", "key", StateKey, "err", err)
	}
}

func (s *Store) remainingLocked() int {
	left := s.cfg.DailyTryLimit - s.state.TriesUsedToday
	if left < 0 {
		return 0
	}
	return left
}

func (s *Store) RemainingTries(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(ctx, s.now())
	return s.remainingLocked()
}

// ConsumeTry records one used try. The limit is enforced by callers.
func (s *Store) ConsumeTry(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(ctx, s.now())
	s.state.TriesUsedToday++
	s.persistLocked(ctx, storage.Blob{"triesUsedToday": mustJSON(s.state.TriesUsedToday)})
}

// RecordCatch prepends a new catch to the ledger and refreshes the derived stats.
func (s *Store) RecordCatch(ctx context.Context, fish catalog.Fish, hookTimeMs *int64) Catch {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := Catch{
		ID:        s.newID(),
		FishID:    fish.ID,
		FishName:  fish.Name,
		Rarity:    fish.Rarity,
		ImageRef:  fish.ImageRef,
		Timestamp: s.now().UTC(),
	}
	if hookTimeMs != nil {
		v := *hookTimeMs
		c.HookTimeMs = &v
	}

	catches := make([]Catch, 0, len(s.state.Catches)+1)
	catches = append(catches, c)
	catches = append(catches, s.state.Catches...)
	s.state.Catches = catches
	s.state.MaxRarityCaught, s.state.UniqueSpeciesCount, s.state.BestHookTimeMs = deriveStats(catches)

	r := toRecord(s.state)
	s.persistLocked(ctx, storage.Blob{
		"catches":  mustJSON(r.Catches),
		"maxLevel": mustJSON(r.MaxLevel),
		"maxScore": mustJSON(r.MaxScore),
		"bestTime": mustJSON(r.BestTime),
	})
	s.log.Info("catch recorded", "fish_id", c.FishID, "rarity", c.Rarity, "catch_id", c.ID)
	return c
}

func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings = patch.apply(s.state.Settings)
	s.persistLocked(ctx, storage.Blob{"settings": mustJSON(s.state.Settings)})
	return s.state.Settings
}

func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// RecentCatches returns up to n catches, newest first. A negative n means the
// default of 3.
func (s *Store) RecentCatches(n int) []Catch {
	if n < 0 {
		n = DefaultRecentCatches
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.state.Catches) {
		n = len(s.state.Catches)
	}
	out := make([]Catch, n)
	copy(out, s.state.Catches[:n])
	return out
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) Stats(ctx context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverLocked(ctx, s.now())
	return Stats{
		DailyTryLimit:      s.cfg.DailyTryLimit,
		TriesUsedToday:     s.state.TriesUsedToday,
		RemainingTries:     s.remainingLocked(),
		TotalCatches:       len(s.state.Catches),
		UniqueSpeciesCount: s.state.UniqueSpeciesCount,
		SpeciesTotal:       catalog.Count(),
		MaxRarityCaught:    s.state.MaxRarityCaught,
		BestHookTimeMs:     s.state.BestHookTimeMs,
	}
}

// CaughtSpecies counts catches per fish id.
func (s *Store) CaughtSpecies() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]int, s.state.UniqueSpeciesCount)
	for _, c := range s.state.Catches {
		out[c.FishID]++
	}
	return out
}

// Profile loads the player identity kept under its own key.
func (s *Store) Profile(ctx context.Context) (Profile, bool) {
	blob, err := s.port.Read(ctx, ProfileKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error("load profile failed", "key", ProfileKey, "err", err)
		}
		return Profile{}, false
	}
	raw, err := json.Marshal(blob)
	if err != nil {
		return Profile{}, false
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		s.log.Error("decode profile failed", "key", ProfileKey, "err", err)
		return Profile{}, false
	}
	return p, true
}

func (s *Store) SaveProfile(ctx context.Context, p Profile) Profile {
	if p.OnboardedAt.IsZero() {
		p.OnboardedAt = s.now().UTC()
	}
	if _, err := s.port.Write(ctx, ProfileKey, storage.Blob{
		"nickname":    mustJSON(p.Nickname),
		"onboardedAt": mustJSON(p.OnboardedAt),
	}); err != nil {
		s.log.Error("persist profile failed", "key", ProfileKey, "err", err)
	}
	return p
}

func (r record) blob() storage.Blob {
	return storage.Blob{
		"triesUsedToday": mustJSON(r.TriesUsedToday),
		"lastResetDate":  mustJSON(r.LastResetDate),
		"catches":        mustJSON(r.Catches),
		"maxLevel":       mustJSON(r.MaxLevel),
		"maxScore":       mustJSON(r.MaxScore),
		"bestTime":       mustJSON(r.BestTime),
		"settings":       mustJSON(r.Settings),
	}
}

// mustJSON encodes values that are known to be marshalable.
func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
