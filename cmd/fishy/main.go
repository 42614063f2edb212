package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"fishyday/internal/catalog"
	"fishyday/internal/config"
	"fishyday/internal/game"
	"fishyday/internal/storage"
	"fishyday/internal/tui"
)

type rootFlags struct {
	dataDir string
	storage string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "fishy",
		Short:        "FishyDay: a few casts a day, a fish collection for life",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "directory for saves and logs (default ~/.fishyday)")
	root.PersistentFlags().StringVar(&flags.storage, "storage", "", "storage backend: file, sqlite, postgres or memory")

	root.AddCommand(
		newPlayCmd(flags),
		newStatsCmd(flags),
		newCatchesCmd(flags),
		newDexCmd(flags),
		newFishCmd(),
		newSettingsCmd(flags),
		newOnboardCmd(flags),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every command needs once the save is open.
type app struct {
	env   config.Env
	log   *slog.Logger
	kv    *storage.KV
	store *game.Store

	logFile io.Closer
}

func openApp(ctx context.Context, flags *rootFlags) (*app, error) {
	env, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(flags.dataDir); v != "" {
		env.DataDir = v
	}
	if v := strings.ToLower(strings.TrimSpace(flags.storage)); v != "" {
		env.Storage = v
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}

	logger, logFile, err := openLogger(env)
	if err != nil {
		return nil, err
	}
	kv, err := storage.Open(ctx, env)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("open %s storage: %w", env.Storage, err)
	}
	logger.Debug("storage opened", "backend", env.Storage, "data_dir", env.DataDir)

	store := game.NewStore(kv, env.Gameplay(), logger)
	store.Initialize(ctx)
	return &app{env: env, log: logger, kv: kv, store: store, logFile: logFile}, nil
}

func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		a.log.Error("close storage failed", "err", err)
	}
	a.logFile.Close()
}

// openLogger writes text logs to fishyday.log so they stay out of the TUI.
func openLogger(env config.Env) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(env.DataDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(env.DataDir, "fishyday.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(env.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, f, nil
}

func newPlayCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Open the game in your terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("play needs an interactive terminal")
			}
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			a.log.Info("game started", "storage", a.env.Storage, "enforce_try_limit", a.env.EnforceTryLimit)
			return tui.Run(cmd.Context(), tui.Options{
				Store:    a.store,
				Gameplay: a.env.Gameplay(),
				Seed:     a.env.Seed,
				Logger:   a.log,
			})
		},
	}
}

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show today's tries and your collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			profile, _ := a.store.Profile(cmd.Context())
			renderStats(profile, a.store.Stats(cmd.Context()), a.env.EnforceTryLimit)
			return nil
		},
	}
}

func newCatchesCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "catches",
		Short: "List your most recent catches",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be >= 1")
			}
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			renderCatches(a.store.RecentCatches(limit))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", game.DefaultRecentCatches, "number of catches to show")
	return cmd
}

func newDexCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dex",
		Short: "Show the fish encyclopedia",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			renderDex(catalog.ListAll(), a.store.CaughtSpecies())
			return nil
		},
	}
}

func newFishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fish <id>",
		Short: "Show one species and its share text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid fish id %q", args[0])
			}
			f, err := catalog.ByID(id)
			if err != nil {
				return err
			}
			renderFish(f)
			return nil
		},
	}
}

func newSettingsCmd(flags *rootFlags) *cobra.Command {
	var sound, vibration, leftHand bool
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			var patch game.SettingsPatch
			changed := false
			if cmd.Flags().Changed("sound") {
				patch.SoundEnabled = &sound
				changed = true
			}
			if cmd.Flags().Changed("vibration") {
				patch.VibrationEnabled = &vibration
				changed = true
			}
			if cmd.Flags().Changed("left-hand") {
				patch.LeftHandMode = &leftHand
				changed = true
			}
			settings := a.store.Settings()
			if changed {
				settings = a.store.UpdateSettings(cmd.Context(), patch)
				printSuccess("Settings saved.")
			}
			renderSettings(settings)
			return nil
		},
	}
	cmd.Flags().BoolVar(&sound, "sound", true, "play sounds")
	cmd.Flags().BoolVar(&vibration, "vibration", true, "vibrate on bites")
	cmd.Flags().BoolVar(&leftHand, "left-hand", false, "left-hand layout")
	return cmd
}

func newOnboardCmd(flags *rootFlags) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Pick your angler nickname",
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				var err error
				name, err = promptRequired("Nickname")
				if err != nil {
					return err
				}
			}
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			p := a.store.SaveProfile(cmd.Context(), game.Profile{Nickname: name})
			printSuccess(fmt.Sprintf("Welcome aboard, %s!", p.Nickname))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "nickname")
	return cmd
}
