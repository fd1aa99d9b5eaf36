package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestLoadOrCreateConfigMissingCreatesDefault(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "config", "config.toml")
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	// Ensure missing
	if _, err := os.Stat(configPath); err == nil {
		t.Fatalf("expected config file to be missing")
	}

	created, err := LoadOrCreateConfig()
	if err != nil {
		t.Fatalf("LoadOrCreateConfig() error: %v", err)
	}
	if !created {
		t.Fatalf("LoadOrCreateConfig() created=false, want true")
	}

	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode created config: %v", err)
	}
	if got.Server.Host != "127.0.0.1" {
		t.Fatalf("default server host = %q, want %q", got.Server.Host, "127.0.0.1")
	}
	if got.Server.Port != 8888 {
		t.Fatalf("default server port = %d, want %d", got.Server.Port, 8888)
	}
	if got.Export.MaxWidth != 1280 {
		t.Fatalf("default export max width = %d, want %d", got.Export.MaxWidth, 1280)
	}
}

func TestSaveConfigCreatesParentDirs(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "deep", "nest", "config.toml")
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	Conf = defaultConfig()
	Conf.Server.Port = 9999

	if err := SaveConfig(); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	if _, err := os.Stat(filepath.Dir(configPath)); err != nil {
		t.Fatalf("expected parent directories to exist: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode saved config: %v", err)
	}
	if got.Server.Port != 9999 {
		t.Fatalf("saved server port = %d, want %d", got.Server.Port, 9999)
	}
}

func TestCheckConfig(t *testing.T) {
	t.Run("fills defaults for omitted tunables", func(t *testing.T) {
		Conf = defaultConfig()
		Conf.Queue.Provider = ""
		Conf.Queue.Concurrency = 0
		Conf.Export.Preset = ""

		if err := CheckConfig(); err != nil {
			t.Fatalf("CheckConfig() error: %v", err)
		}
		if Conf.Queue.Provider != "memory" {
			t.Fatalf("queue provider = %q, want %q", Conf.Queue.Provider, "memory")
		}
		if Conf.Queue.Concurrency != 2 {
			t.Fatalf("queue concurrency = %d, want 2", Conf.Queue.Concurrency)
		}
		if Conf.Export.Preset != "fast" {
			t.Fatalf("export preset = %q, want %q", Conf.Export.Preset, "fast")
		}
	})

	t.Run("rejects unknown queue provider", func(t *testing.T) {
		Conf = defaultConfig()
		Conf.Queue.Provider = "rabbitmq"

		if err := CheckConfig(); err == nil {
			t.Fatal("CheckConfig() error = nil, want provider error")
		}
	})

	t.Run("rejects redis provider without address", func(t *testing.T) {
		Conf = defaultConfig()
		Conf.Queue.Provider = "redis"
		Conf.Queue.RedisAddr = " "

		if err := CheckConfig(); err == nil {
			t.Fatal("CheckConfig() error = nil, want redis_addr error")
		}
	})

	t.Run("rejects invalid port", func(t *testing.T) {
		Conf = defaultConfig()
		Conf.Server.Port = -1

		if err := CheckConfig(); err == nil {
			t.Fatal("CheckConfig() error = nil, want port error")
		}
	})
}
