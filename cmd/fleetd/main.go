package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/flack-404/SevenSeasProtocol-sub000/internal/brain"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/config"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/executor"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/fleet"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/keys"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/ledger"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/llm"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/persona"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/retry"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/runtime"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/store"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/tracker"
)

var cfgPath string

func main() {
	sdkCfg := sdk.GetConfig()
	sdkCfg.SetBech32PrefixForAccount("sea", "seapub")
	sdkCfg.Seal()

	root := &cobra.Command{
		Use:           "fleetd",
		Short:         "Autonomous pirate fleet daemon for the Seven Seas ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.sevenseas/config.yaml)")
	root.AddCommand(initCmd(), runCmd(), statusCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fleetd: %v\n", err)
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file and one signing key per captain",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			cfg := config.Default(home)
			path := cfgPath
			if path == "" {
				if path, err = config.DefaultPath(); err != nil {
					return err
				}
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Fleet.KeyStore, 0o700); err != nil {
				return err
			}

			for _, captain := range cfg.Captains {
				keyPath := keys.CaptainKeyPath(cfg.Fleet.KeyStore, captain.Name)
				key, created, err := keys.EnsureKey(keyPath, captain.Name)
				if err != nil {
					return fmt.Errorf("key for %s: %w", captain.Name, err)
				}
				state := "existing"
				if created {
					state = "new"
				}
				fmt.Printf("%-14s %s (%s key)\n", captain.Name, key.Address, state)
			}

			if err := config.Write(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every configured captain until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.Log.Level)
			if err != nil {
				return err
			}

			llmClient, err := llm.New(llm.Config{
				Provider:        cfg.LLM.Provider,
				Model:           cfg.LLM.Model,
				BaseURL:         cfg.LLM.BaseURL,
				APIKey:          cfg.LLM.APIKey,
				Temperature:     cfg.LLM.Temperature,
				MaxOutputTokens: cfg.LLM.MaxOutputTokens,
				TimeoutSeconds:  cfg.LLM.TimeoutSeconds,
			})
			if err != nil {
				return fmt.Errorf("llm: %w", err)
			}
			if llmClient == nil {
				log.Warn().Msg("no llm provider configured, captains sail on fallback heuristics")
			} else {
				log.Info().Str("provider", llmClient.Provider()).Str("model", llmClient.Model()).Msg("reasoning service ready")
			}

			db, err := store.Open(cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("decision log: %w", err)
			}
			defer db.Close()

			reads := ledger.NewClient(cfg.Ledger.Gateway)
			window := time.Duration(cfg.Fleet.ObservationWindow) * time.Second
			floor := ledger.GoldToAmount(cfg.Fleet.BankrollFloorGold)
			minWager := ledger.GoldToAmount(cfg.Fleet.MinWagerGold)
			maxWager := ledger.GoldToAmount(cfg.Fleet.MaxWagerGold)
			initial := ledger.GoldToAmount(cfg.Fleet.BankrollFloorGold * 2)

			var captains []*runtime.Captain
			for i, cc := range cfg.Captains {
				key, err := keys.Load(keys.CaptainKeyPath(cfg.Fleet.KeyStore, cc.Name))
				if err != nil {
					return fmt.Errorf("key for %s (run `fleetd init` first): %w", cc.Name, err)
				}
				priv, err := key.PrivKey()
				if err != nil {
					return fmt.Errorf("key for %s: %w", cc.Name, err)
				}

				p := persona.Resolve(cc.Name, cc.Alias, cc.Icon, cc.Archetype, cc.Prompt, key.Address)
				clog := log.With().Str("captain", p.Name).Logger()
				tr := tracker.New(window)

				// One signing client per captain so every write, remediation
				// or decided, shares a single nonce sequence.
				tx := ledger.NewTxClient(cfg.Ledger.Gateway, key.Address, priv)

				captains = append(captains, &runtime.Captain{
					Persona:         p,
					Address:         key.Address,
					Reads:           reads,
					Tx:              tx,
					Brain:           brain.NewEngine(llmClient, rand.New(rand.NewSource(time.Now().UnixNano()+int64(i))), clog),
					Exec:            executor.New(tx, tr, minWager, maxWager, clog),
					Tracker:         tr,
					Store:           db,
					Log:             clog,
					Interval:        time.Duration(cfg.Fleet.CycleSeconds) * time.Second,
					BankrollFloor:   floor,
					MinWager:        minWager,
					MaxWager:        maxWager,
					InitialBankroll: initial,
				})
			}
			if len(captains) == 0 {
				return errors.New("no captains configured")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info().Int("captains", len(captains)).Str("gateway", cfg.Ledger.Gateway).Msg("fleet launching")
			f := &fleet.Fleet{
				Captains: captains,
				Stagger:  time.Duration(cfg.Fleet.StaggerSeconds) * time.Second,
				Grace:    time.Duration(cfg.Fleet.GraceSeconds) * time.Second,
				Log:      log,
			}
			return f.Run(ctx)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print each captain's ship and battle record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			reads := ledger.NewClient(cfg.Ledger.Gateway)
			retryCfg := retry.DefaultConfig(ledger.IsRateLimited)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			for _, cc := range cfg.Captains {
				key, err := keys.Load(keys.CaptainKeyPath(cfg.Fleet.KeyStore, cc.Name))
				if err != nil {
					fmt.Printf("%-14s no key (%v)\n", cc.Name, err)
					continue
				}
				fmt.Printf("%s (%s)\n", cc.Name, key.Address)

				ship, err := retry.Do(ctx, retryCfg, func(ctx context.Context) (ledger.Ship, error) {
					return reads.GetShip(ctx, key.Address)
				})
				switch {
				case errors.Is(err, ledger.ErrNoShip):
					fmt.Println("  ship: none")
				case err != nil:
					fmt.Printf("  ship: unavailable (%v)\n", err)
				default:
					fmt.Printf("  ship: health %d/%d, gold %.4f, unclaimed %.4f, zone %s\n",
						ship.Health, ship.MaxHealth, ship.Gold.Gold(), ship.UnclaimedGold.Gold(), ship.Zone)
				}

				record, err := retry.Do(ctx, retryCfg, func(ctx context.Context) (ledger.CaptainRecord, error) {
					return reads.GetCaptainRecord(ctx, key.Address)
				})
				switch {
				case errors.Is(err, ledger.ErrNotRegistered):
					fmt.Println("  record: not registered")
				case err != nil:
					fmt.Printf("  record: unavailable (%v)\n", err)
				default:
					fmt.Printf("  record: rating %d, %d-%d, bankroll %.4f gold, active=%v\n",
						record.Rating, record.Wins, record.Losses, record.Bankroll.Gold(), record.Active)
				}
			}
			return nil
		},
	}
}

func loadConfig() (config.Config, error) {
	path := cfgPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %s (run `fleetd init` first): %w", path, err)
	}
	return cfg, nil
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("log level %q: %w", level, err)
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
