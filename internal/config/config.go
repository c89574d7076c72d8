package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultFirmwareDir   = "firmware"
	DefaultSettleDelayMS = 1000
)

// Config holds all fwload configuration.
type Config struct {
	FirmwareDir   string `json:"firmware_dir,omitempty"`
	SettleDelayMS int    `json:"settle_delay_ms,omitempty"`
	LastFirmware  string `json:"last_firmware,omitempty"`
	BossacPath    string `json:"bossac_path,omitempty"`
	TycmdPath     string `json:"tycmd_path,omitempty"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		FirmwareDir:   DefaultFirmwareDir,
		SettleDelayMS: DefaultSettleDelayMS,
	}
}

// SettleDelay returns the inter-step pause as a duration.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// Load reads and merges global and local configs.
// Order: defaults → global (~/.config/fwload/config.json) → local (<root>/.fwload/config.json).
func Load(root string) Config {
	cfg := Defaults()

	if home, err := os.UserHomeDir(); err == nil {
		globalPath := filepath.Join(home, ".config", "fwload", "config.json")
		mergeFromFile(&cfg, globalPath)
	}

	if root != "" {
		localPath := filepath.Join(root, ".fwload", "config.json")
		mergeFromFile(&cfg, localPath)
	}

	return cfg
}

// Save writes the config to <root>/.fwload/config.json by default,
// or to the global config if global is true.
func Save(cfg Config, root string, global bool) error {
	var dir string
	if global {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, ".config", "fwload")
	} else {
		dir = filepath.Join(root, ".fwload")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

func mergeFromFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return
	}

	if fileCfg.FirmwareDir != "" {
		cfg.FirmwareDir = fileCfg.FirmwareDir
	}
	if fileCfg.SettleDelayMS != 0 {
		cfg.SettleDelayMS = fileCfg.SettleDelayMS
	}
	if fileCfg.LastFirmware != "" {
		cfg.LastFirmware = fileCfg.LastFirmware
	}
	if fileCfg.BossacPath != "" {
		cfg.BossacPath = fileCfg.BossacPath
	}
	if fileCfg.TycmdPath != "" {
		cfg.TycmdPath = fileCfg.TycmdPath
	}
}
