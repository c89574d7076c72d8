package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.FirmwareDir != "firmware" {
		t.Errorf("expected FirmwareDir=firmware, got=%s", cfg.FirmwareDir)
	}
	if cfg.SettleDelayMS != 1000 {
		t.Errorf("expected SettleDelayMS=1000, got=%d", cfg.SettleDelayMS)
	}
	if cfg.SettleDelay() != time.Second {
		t.Errorf("expected 1s settle delay, got=%v", cfg.SettleDelay())
	}
}

func TestLoadMerge(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, ".fwload")
	os.MkdirAll(dir, 0o755)
	os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{
		"last_firmware": "Bpod StateMachine",
		"settle_delay_ms": 250
	}`), 0o644)

	cfg := Load(tmp)

	if cfg.LastFirmware != "Bpod StateMachine" {
		t.Errorf("expected last_firmware from local config, got=%s", cfg.LastFirmware)
	}
	if cfg.SettleDelayMS != 250 {
		t.Errorf("expected settle delay 250 from local config, got=%d", cfg.SettleDelayMS)
	}
	// FirmwareDir should still be default since not overridden
	if cfg.FirmwareDir != "firmware" {
		t.Errorf("expected default FirmwareDir=firmware, got=%s", cfg.FirmwareDir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmp := t.TempDir()
	cfg := Config{
		FirmwareDir:   "images",
		SettleDelayMS: 500,
		TycmdPath:     "/opt/tycmd",
	}

	err := Save(cfg, tmp, false)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	path := filepath.Join(tmp, ".fwload", "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	loaded := Load(tmp)
	if loaded.FirmwareDir != "images" {
		t.Errorf("expected FirmwareDir=images, got=%s", loaded.FirmwareDir)
	}
	if loaded.SettleDelayMS != 500 {
		t.Errorf("expected SettleDelayMS=500, got=%d", loaded.SettleDelayMS)
	}
	if loaded.TycmdPath != "/opt/tycmd" {
		t.Errorf("expected TycmdPath=/opt/tycmd, got=%s", loaded.TycmdPath)
	}
}
