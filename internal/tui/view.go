package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"fishyday/internal/catalog"
	"fishyday/internal/fishing"
	"fishyday/internal/game"
)

func (m model) View() string {
	var body string
	var keys bindings
	switch m.screen {
	case screenOnboarding:
		body, keys = m.viewOnboarding()
	case screenHome:
		body, keys = m.viewHome()
	case screenFishing:
		body, keys = m.viewFishing()
	case screenDex:
		body, keys = m.viewDex()
	case screenDetail:
		body, keys = m.viewDetail()
	case screenProfile:
		body, keys = m.viewProfile()
	case screenSettings:
		body, keys = m.viewSettings()
	}

	out := frameStyle.Render(body) + "\n"
	if m.status != "" && m.screen != screenFishing {
		out += textStyle.Render(m.status) + "\n"
	}
	out += m.help.View(keys) + "\n"
	return out
}

func header(title string) string {
	return titleStyle.Render("FISHYDAY") + dimStyle.Render("  "+title) + "\n\n"
}

func (m model) viewOnboarding() (string, bindings) {
	var b strings.Builder
	b.WriteString(header("welcome"))
	b.WriteString(textStyle.Render("Five casts a day. Catch them all.") + "\n\n")
	b.WriteString("What should we call you?\n")
	b.WriteString(m.nameInput.View() + "\n")
	enter := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start"))
	return b.String(), bindings{enter, m.keys.Quit}
}

func (m model) viewHome() (string, bindings) {
	stats := m.store.Stats(m.ctx)
	var b strings.Builder
	b.WriteString(header("home"))
	if m.profile.Nickname != "" {
		b.WriteString(textStyle.Render("Hi, "+m.profile.Nickname+"!") + "\n")
	}
	if m.cfg.EnforceTryLimit {
		fmt.Fprintf(&b, "Tries left today: %d/%d\n", stats.RemainingTries, stats.DailyTryLimit)
		b.WriteString(m.bar.ViewAs(ratio(stats.RemainingTries, stats.DailyTryLimit)) + "\n")
	} else {
		b.WriteString("Tries left today: unlimited\n")
	}
	fmt.Fprintf(&b, "Collected: %d/%d species\n\n", stats.UniqueSpeciesCount, stats.SpeciesTotal)

	for i, label := range menuLabels {
		b.WriteString(menuLine(label, i == m.menuIdx) + "\n")
	}
	return b.String(), bindings{m.keys.Up, m.keys.Down, m.keys.Action, m.keys.Quit}
}

func (m model) viewFishing() (string, bindings) {
	v := m.session.View()
	var b strings.Builder
	b.WriteString(header("fishing"))
	b.WriteString(messageStyle(v).Render(v.Message) + "\n\n")

	back := withHelp(m.keys.Back, "give up")
	switch v.Phase {
	case fishing.PhaseCasting:
		b.WriteString(aimGrid(m.aim) + "\n")
		return b.String(), bindings{m.keys.Left, m.keys.Right, m.keys.Up, m.keys.Down, withHelp(m.keys.Action, "cast"), back}
	case fishing.PhaseWaiting:
		b.WriteString(water(v.CastPosition, false) + "\n")
		fmt.Fprintf(&b, "Missed bites: %d/%d\n", v.BiteCount, m.cfg.MaxMissedBiteCycles)
	case fishing.PhaseBiting:
		b.WriteString(water(v.CastPosition, true) + "\n")
		return b.String(), bindings{withHelp(m.keys.Action, "reel"), back}
	case fishing.PhaseHooking:
		b.WriteString(dial(v.Angle, v.TargetArcStart, v.TargetArcWidth) + "\n\n")
		fmt.Fprintf(&b, "Hits %d/%d   Misses %d/%d\n", v.HookProgress.Success, v.HookProgress.Needed, v.HookProgress.Fail, v.HookProgress.FailLimit)
		b.WriteString(m.bar.ViewAs(ratio(v.HookProgress.Success, v.HookProgress.Needed)) + "\n")
		return b.String(), bindings{withHelp(m.keys.Action, "hook"), back}
	case fishing.PhaseResult:
		b.WriteString(resultText(v))
		return b.String(), bindings{m.keys.Again, withHelp(m.keys.Back, "home")}
	case fishing.PhaseEnded:
		return b.String(), bindings{withHelp(m.keys.Action, "home")}
	}
	return b.String(), bindings{back}
}

func (m model) viewDex() (string, bindings) {
	caught := m.store.CaughtSpecies()
	var b strings.Builder
	b.WriteString(header("encyclopedia"))
	for i, f := range catalog.ListAll() {
		name := "???"
		count := ""
		if n := caught[f.ID]; n > 0 {
			name = f.Name
			count = dimStyle.Render(fmt.Sprintf(" x%d", n))
		}
		line := fmt.Sprintf("%2d. %-22s %s", f.ID, name, starStyle.Render(catalog.Stars(f.Rarity)))
		b.WriteString(menuLine(line, i == m.dexIdx) + count + "\n")
	}
	return b.String(), bindings{m.keys.Up, m.keys.Down, withHelp(m.keys.Action, "details"), m.keys.Back}
}

func (m model) viewDetail() (string, bindings) {
	fish := catalog.ListAll()[m.dexIdx]
	count := m.store.CaughtSpecies()[fish.ID]
	var b strings.Builder
	b.WriteString(header("details"))
	if count == 0 {
		b.WriteString(textStyle.Render("You have not caught this fish yet.") + "\n")
		b.WriteString("Rarity: " + starStyle.Render(catalog.Stars(fish.Rarity)) + "\n")
		return b.String(), bindings{m.keys.Back}
	}
	b.WriteString(titleStyle.Render(fish.Name) + "\n")
	b.WriteString("Rarity: " + starStyle.Render(catalog.Stars(fish.Rarity)) + "\n")
	fmt.Fprintf(&b, "Caught: %d\n", count)
	if fish.ImageRef != "" {
		b.WriteString(dimStyle.Render("Image: "+fish.ImageRef) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("Share: ") + catalog.ShareText(fish) + "\n")
	return b.String(), bindings{m.keys.Back}
}

func (m model) viewProfile() (string, bindings) {
	stats := m.store.Stats(m.ctx)
	var b strings.Builder
	b.WriteString(header("profile"))
	if m.profile.Nickname != "" {
		b.WriteString(titleStyle.Render(m.profile.Nickname) + "\n")
	}
	if !m.profile.OnboardedAt.IsZero() {
		b.WriteString(dimStyle.Render("Fishing since "+m.profile.OnboardedAt.Local().Format("Jan 2, 2006")) + "\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total catches:   %d\n", stats.TotalCatches)
	fmt.Fprintf(&b, "Species found:   %d/%d\n", stats.UniqueSpeciesCount, stats.SpeciesTotal)
	b.WriteString(m.bar.ViewAs(ratio(stats.UniqueSpeciesCount, stats.SpeciesTotal)) + "\n")
	rarest := "-"
	if stats.MaxRarityCaught > 0 {
		rarest = starStyle.Render(catalog.Stars(stats.MaxRarityCaught))
	}
	fmt.Fprintf(&b, "Rarest catch:    %s\n", rarest)
	fmt.Fprintf(&b, "Best hook time:  %s\n", formatHookTime(stats))

	b.WriteString("\n" + textStyle.Render("Recent catches") + "\n")
	recent := m.store.RecentCatches(game.DefaultRecentCatches)
	if len(recent) == 0 {
		b.WriteString(dimStyle.Render("Nothing yet. Go fishing!") + "\n")
	}
	for _, c := range recent {
		fmt.Fprintf(&b, "%-22s %s  %s\n", c.FishName, starStyle.Render(catalog.Stars(c.Rarity)), dimStyle.Render(c.Timestamp.Local().Format("Jan 2 15:04")))
	}
	return b.String(), bindings{m.keys.Back}
}

func (m model) viewSettings() (string, bindings) {
	s := m.store.Settings()
	values := []bool{s.SoundEnabled, s.VibrationEnabled, s.LeftHandMode}
	var b strings.Builder
	b.WriteString(header("settings"))
	for i, label := range settingLabels {
		state := badStyle.Render("off")
		if values[i] {
			state = goodStyle.Render("on")
		}
		b.WriteString(menuLine(fmt.Sprintf("%-16s", label), i == m.settingsIdx) + " " + state + "\n")
	}
	return b.String(), bindings{m.keys.Up, m.keys.Down, withHelp(m.keys.Action, "toggle"), m.keys.Back}
}

func menuLine(label string, selected bool) string {
	if selected {
		return cursorStyle.Render("> " + label)
	}
	return "  " + textStyle.Render(label)
}

func messageStyle(v fishing.View) lipgloss.Style {
	switch {
	case v.Phase == fishing.PhaseBiting:
		return pointerStyle
	case v.Phase == fishing.PhaseResult && v.Outcome.Success():
		return goodStyle
	case v.Phase == fishing.PhaseResult, v.Outcome == fishing.OutcomeAbandoned:
		return badStyle
	default:
		return textStyle
	}
}

func resultText(v fishing.View) string {
	if v.CaughtFish == nil {
		return dimStyle.Render("Better luck next cast.") + "\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.CaughtFish.Name) + " " + starStyle.Render(catalog.Stars(v.CaughtFish.Rarity)) + "\n")
	if v.HookTimeMs != nil {
		fmt.Fprintf(&b, "Hooked in %.2fs\n", float64(*v.HookTimeMs)/1000)
	}
	return b.String()
}

// aimGrid draws the cast target on a small grid; the player stands at the bottom.
func aimGrid(aim fishing.Position) string {
	var b strings.Builder
	for y := aimMaxY; y >= aimMinY; y-- {
		for x := aimMinX; x <= aimMaxX; x++ {
			if float64(x) == aim.X && float64(y) == aim.Y {
				b.WriteString(pointerStyle.Render("◎ "))
				continue
			}
			b.WriteString(dimStyle.Render("~ "))
		}
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("  ", int(-aimMinX)) + textStyle.Render("🧍"))
	return b.String()
}

func water(pos fishing.Position, bite bool) string {
	float := textStyle.Render("o")
	if bite {
		float = pointerStyle.Render("!")
	}
	col := int(pos.X - aimMinX)
	line := strings.Repeat(dimStyle.Render("~ "), col) + float + " " + strings.Repeat(dimStyle.Render("~ "), aimMaxX-aimMinX-col)
	return line
}

const dialCells = 36

// dial unrolls the rotating pointer onto a 36-cell strip, 10° per cell.
func dial(angle, arcStart, arcWidth float64) string {
	var b strings.Builder
	pointer := int(angle/10) % dialCells
	for i := 0; i < dialCells; i++ {
		center := float64(i)*10 + 5
		switch {
		case i == pointer:
			b.WriteString(pointerStyle.Render("▲"))
		case math.Mod(center-arcStart+360, 360) < arcWidth:
			b.WriteString(targetStyle.Render("█"))
		default:
			b.WriteString(dimStyle.Render("·"))
		}
	}
	return b.String()
}

func ratio(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	r := float64(n) / float64(total)
	return math.Max(0, math.Min(1, r))
}

func formatHookTime(s game.Stats) string {
	if !s.HasBestHookTime() {
		return "-"
	}
	return fmt.Sprintf("%.2fs", s.BestHookTimeMs/1000)
}
