package game

import (
	"math"
	"time"
)

const (
	StateKey   = "FishyDayinfo"
	ProfileKey = "userData"

	DefaultRecentCatches = 3
)

type Settings struct {
	SoundEnabled     bool `json:"soundEnabled"`
	VibrationEnabled bool `json:"vibrationEnabled"`
	LeftHandMode     bool `json:"leftHandMode"`
}

func DefaultSettings() Settings {
	return Settings{SoundEnabled: true, VibrationEnabled: true, LeftHandMode: false}
}

// SettingsPatch carries the fields to change; nil fields keep their value.
type SettingsPatch struct {
	SoundEnabled     *bool
	VibrationEnabled *bool
	LeftHandMode     *bool
}

func (p SettingsPatch) apply(s Settings) Settings {
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	if p.VibrationEnabled != nil {
		s.VibrationEnabled = *p.VibrationEnabled
	}
	if p.LeftHandMode != nil {
		s.LeftHandMode = *p.LeftHandMode
	}
	return s
}

type Catch struct {
	ID         string    `json:"id"`
	FishID     int       `json:"fishId"`
	FishName   string    `json:"fishName"`
	Rarity     int       `json:"rarity"`
	ImageRef   string    `json:"imageRef,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	HookTimeMs *int64    `json:"hookTime"`
}

// State is a snapshot of the persisted game state. BestHookTimeMs is +Inf
// until a timed catch is recorded.
type State struct {
	TriesUsedToday     int
	LastResetDate      string
	Catches            []Catch
	MaxRarityCaught    int
	UniqueSpeciesCount int
	BestHookTimeMs     float64
	Settings           Settings
}

func defaultState(now time.Time) State {
	return State{
		LastResetDate:  now.Format(time.RFC3339Nano),
		Catches:        []Catch{},
		BestHookTimeMs: math.Inf(1),
		Settings:       DefaultSettings(),
	}
}

func (s State) clone() State {
	out := s
	out.Catches = make([]Catch, len(s.Catches))
	copy(out.Catches, s.Catches)
	return out
}

type Stats struct {
	DailyTryLimit      int     `json:"daily_try_limit"`
	TriesUsedToday     int     `json:"tries_used_today"`
	RemainingTries     int     `json:"remaining_tries"`
	TotalCatches       int     `json:"total_catches"`
	UniqueSpeciesCount int     `json:"unique_species_count"`
	SpeciesTotal       int     `json:"species_total"`
	MaxRarityCaught    int     `json:"max_rarity_caught"`
	BestHookTimeMs     float64 `json:"-"`
}

func (s Stats) HasBestHookTime() bool {
	return !math.IsInf(s.BestHookTimeMs, 1)
}

type Profile struct {
	Nickname    string    `json:"nickname"`
	OnboardedAt time.Time `json:"onboardedAt"`
}

// record is the persisted shape of State. bestTime is null while no timed
// catch exists because JSON has no infinity.
type record struct {
	TriesUsedToday int       `json:"triesUsedToday"`
	LastResetDate  *string   `json:"lastResetDate"`
	Catches        []Catch   `json:"catches"`
	MaxLevel       int       `json:"maxLevel"`
	MaxScore       int       `json:"maxScore"`
	BestTime       *int64    `json:"bestTime"`
	Settings       *Settings `json:"settings"`
}

func toRecord(s State) record {
	r := record{
		TriesUsedToday: s.TriesUsedToday,
		Catches:        s.Catches,
		MaxLevel:       s.MaxRarityCaught,
		MaxScore:       s.UniqueSpeciesCount,
		Settings:       &s.Settings,
	}
	if s.LastResetDate != "" {
		v := s.LastResetDate
		r.LastResetDate = &v
	}
	if !math.IsInf(s.BestHookTimeMs, 1) {
		v := int64(s.BestHookTimeMs)
		r.BestTime = &v
	}
	if r.Catches == nil {
		r.Catches = []Catch{}
	}
	return r
}

// fromRecord rebuilds a State and recomputes the derived stats from the ledger.
func fromRecord(r record) State {
	s := State{
		TriesUsedToday: r.TriesUsedToday,
		Catches:        r.Catches,
		Settings:       DefaultSettings(),
	}
	if s.TriesUsedToday < 0 {
		s.TriesUsedToday = 0
	}
	if r.LastResetDate != nil {
		s.LastResetDate = *r.LastResetDate
	}
	if r.Settings != nil {
		s.Settings = *r.Settings
	}
	if s.Catches == nil {
		s.Catches = []Catch{}
	}
	s.MaxRarityCaught, s.UniqueSpeciesCount, s.BestHookTimeMs = deriveStats(s.Catches)
	return s
}

// deriveStats scans the full ledger; O(n) per catch is fine at this scale.
func deriveStats(catches []Catch) (maxRarity, unique int, bestHook float64) {
	bestHook = math.Inf(1)
	species := make(map[int]struct{}, len(catches))
	for _, c := range catches {
		species[c.FishID] = struct{}{}
		if c.Rarity > maxRarity {
			maxRarity = c.Rarity
		}
		if c.HookTimeMs != nil && float64(*c.HookTimeMs) < bestHook {
			bestHook = float64(*c.HookTimeMs)
		}
	}
	return maxRarity, len(species), bestHook
}
