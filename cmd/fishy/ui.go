package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"fishyday/internal/catalog"
	"fishyday/internal/game"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
	stars       = color.New(color.FgHiYellow)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func renderStats(p game.Profile, s game.Stats, enforced bool) {
	title := "== FISHYDAY =="
	if p.Nickname != "" {
		title = fmt.Sprintf("== FISHYDAY (%s) ==", p.Nickname)
	}
	accent.Printf("\n%s\n", title)
	if enforced {
		fmt.Printf("Tries Left Today:   %s\n", colorizeTries(s.RemainingTries, s.DailyTryLimit))
	} else {
		fmt.Printf("Tries Left Today:   %s\n", neutral.Sprint("unlimited"))
	}
	fmt.Printf("Tries Used Today:   %d\n", s.TriesUsedToday)
	fmt.Printf("Total Catches:      %d\n", s.TotalCatches)
	fmt.Printf("Species Found:      %d/%d\n", s.UniqueSpeciesCount, s.SpeciesTotal)
	rarest := "-"
	if s.MaxRarityCaught > 0 {
		rarest = stars.Sprint(catalog.Stars(s.MaxRarityCaught))
	}
	fmt.Printf("Rarest Catch:       %s\n", rarest)
	best := "-"
	if s.HasBestHookTime() {
		best = fmt.Sprintf("%.2fs", s.BestHookTimeMs/1000)
	}
	fmt.Printf("Best Hook Time:     %s\n", best)
	fmt.Println()
}

func renderCatches(catches []game.Catch) {
	accent.Println("\nRecent Catches")
	if len(catches) == 0 {
		printInfo("No catches yet. Run `fishy play`.")
		return
	}
	fmt.Printf("%-4s %-24s %-7s %-10s %s\n", "ID", "FISH", "RARITY", "HOOK", "WHEN")
	for _, c := range catches {
		hook := "-"
		if c.HookTimeMs != nil {
			hook = fmt.Sprintf("%.2fs", float64(*c.HookTimeMs)/1000)
		}
		fmt.Printf("%-4d %-24s %s %-10s %s\n",
			c.FishID,
			truncate(c.FishName, 24),
			stars.Sprintf("%-7s", catalog.Stars(c.Rarity)),
			hook,
			c.Timestamp.Local().Format("2006-01-02 15:04"),
		)
	}
	fmt.Println()
}

func renderDex(all []catalog.Fish, caught map[int]int) {
	accent.Printf("\n== ENCYCLOPEDIA (%d/%d) ==\n", len(caught), len(all))
	fmt.Printf("%-4s %-24s %-7s %s\n", "ID", "FISH", "RARITY", "CAUGHT")
	for _, f := range all {
		n := caught[f.ID]
		name := "???"
		count := neutral.Sprint("-")
		if n > 0 {
			name = f.Name
			count = success.Sprintf("%d", n)
		}
		fmt.Printf("%-4d %-24s %s %s\n", f.ID, truncate(name, 24), stars.Sprintf("%-7s", catalog.Stars(f.Rarity)), count)
	}
	fmt.Println()
}

func renderFish(f catalog.Fish) {
	accent.Printf("\n%s\n", f.Name)
	fmt.Printf("Rarity: %s\n", stars.Sprint(catalog.Stars(f.Rarity)))
	if f.ImageRef != "" {
		fmt.Printf("Image:  %s\n", f.ImageRef)
	}
	fmt.Println()
	printInfo(catalog.ShareText(f))
	fmt.Println()
}

func renderSettings(s game.Settings) {
	accent.Println("\nSettings")
	fmt.Printf("Sound:          %s\n", onOff(s.SoundEnabled))
	fmt.Printf("Vibration:      %s\n", onOff(s.VibrationEnabled))
	fmt.Printf("Left-hand mode: %s\n", onOff(s.LeftHandMode))
	fmt.Println()
}

func colorizeTries(left, limit int) string {
	text := fmt.Sprintf("%d/%d", left, limit)
	switch {
	case left == 0:
		return danger.Sprint(text)
	case left*2 < limit:
		return warn.Sprint(text)
	default:
		return success.Sprint(text)
	}
}

func onOff(v bool) string {
	if v {
		return success.Sprint("on")
	}
	return danger.Sprint("off")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
