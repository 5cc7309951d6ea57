package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Ledger struct {
		Gateway string `yaml:"gateway" env:"LEDGER_GATEWAY_URL"`
	} `yaml:"ledger"`
	LLM struct {
		Provider        string  `yaml:"provider" env:"LLM_PROVIDER"`
		Model           string  `yaml:"model" env:"LLM_MODEL"`
		BaseURL         string  `yaml:"base_url" env:"LLM_BASE_URL"`
		APIKey          string  `yaml:"api_key" env:"LLM_API_KEY"`
		Temperature     float64 `yaml:"temperature" env:"LLM_TEMPERATURE"`
		MaxOutputTokens int     `yaml:"max_output_tokens" env:"LLM_MAX_TOKENS"`
		TimeoutSeconds  int     `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS"`
	} `yaml:"llm"`
	Fleet struct {
		KeyStore          string  `yaml:"key_store"`
		CycleSeconds      int     `yaml:"cycle_seconds" env:"FLEET_CYCLE_SECONDS"`
		StaggerSeconds    int     `yaml:"stagger_seconds" env:"FLEET_STAGGER_SECONDS"`
		GraceSeconds      int     `yaml:"grace_seconds" env:"FLEET_GRACE_SECONDS"`
		ObservationWindow int     `yaml:"observation_window_seconds" env:"FLEET_OBSERVATION_WINDOW_SECONDS"`
		MinWagerGold      float64 `yaml:"min_wager_gold" env:"FLEET_MIN_WAGER_GOLD"`
		MaxWagerGold      float64 `yaml:"max_wager_gold" env:"FLEET_MAX_WAGER_GOLD"`
		BankrollFloorGold float64 `yaml:"bankroll_floor_gold" env:"FLEET_BANKROLL_FLOOR_GOLD"`
	} `yaml:"fleet"`
	Store struct {
		Path string `yaml:"path" env:"STORE_PATH"`
	} `yaml:"store"`
	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"log"`
	Captains []Captain `yaml:"captains"`
}

// Captain configures one fleet member. Persona fields left empty fall back
// to the built-in persona matching Name, or a hash-assigned archetype.
type Captain struct {
	Name      string `yaml:"name"`
	Alias     string `yaml:"alias"`
	Icon      string `yaml:"icon"`
	Archetype string `yaml:"archetype"`
	Prompt    string `yaml:"prompt"`
}

func Default(home string) Config {
	cfg := Config{}
	cfg.Ledger.Gateway = "http://localhost:8080"
	cfg.LLM.Provider = ""
	cfg.LLM.Model = ""
	cfg.LLM.Temperature = 0.7
	cfg.LLM.MaxOutputTokens = 512
	cfg.LLM.TimeoutSeconds = 20
	cfg.Fleet.KeyStore = filepath.Join(home, ".sevenseas", "keys")
	cfg.Fleet.CycleSeconds = 30
	cfg.Fleet.StaggerSeconds = 7
	cfg.Fleet.GraceSeconds = 20
	cfg.Fleet.ObservationWindow = 90
	cfg.Fleet.MinWagerGold = 0.01
	cfg.Fleet.MaxWagerGold = 5
	cfg.Fleet.BankrollFloorGold = 1
	cfg.Store.Path = filepath.Join(home, ".sevenseas", "fleet.db")
	cfg.Log.Level = "info"
	cfg.Captains = []Captain{
		{Name: "blacktide"},
		{Name: "siren"},
		{Name: "quartermaster"},
	}
	return cfg
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("env overrides: %w", err)
	}
	return cfg, nil
}

func Write(path string, cfg Config) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".sevenseas", "config.yaml"), nil
}
