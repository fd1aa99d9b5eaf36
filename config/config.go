package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"clipforge/internal/appdirs"
)

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type AppConfig struct {
	Proxy string `toml:"proxy"`
	// MaxUploadMB caps a single uploaded clip source.
	MaxUploadMB int64 `toml:"max_upload_mb"`
}

type EngineConfig struct {
	FfmpegPath  string `toml:"ffmpeg_path"`
	FfprobePath string `toml:"ffprobe_path"`
}

type ExportConfig struct {
	MaxWidth     int    `toml:"max_width"`
	Crf          int    `toml:"crf"`
	Preset       string `toml:"preset"`
	AudioBitrate string `toml:"audio_bitrate"`
}

type QueueConfig struct {
	// Provider selects the export job executor: "memory" runs an in-process
	// worker pool, "redis" routes jobs through asynq.
	Provider      string `toml:"provider"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

type Config struct {
	Server ServerConfig `toml:"server"`
	App    AppConfig    `toml:"app"`
	Engine EngineConfig `toml:"engine"`
	Export ExportConfig `toml:"export"`
	Queue  QueueConfig  `toml:"queue"`
}

var Conf = defaultConfig()

var resolveConfigPath = func() (string, error) {
	dirs, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return dirs.ConfigFile, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8888,
		},
		App: AppConfig{
			MaxUploadMB: 2048,
		},
		Engine: EngineConfig{
			FfmpegPath:  "ffmpeg",
			FfprobePath: "ffprobe",
		},
		Export: ExportConfig{
			MaxWidth:     1280,
			Crf:          23,
			Preset:       "fast",
			AudioBitrate: "128k",
		},
		Queue: QueueConfig{
			Provider:    "memory",
			RedisAddr:   "localhost:6379",
			Concurrency: 2,
		},
	}
}

// LoadOrCreateConfig reads the config file, writing the defaults first when
// it does not exist yet. The returned bool reports whether a new file was
// created.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err := SaveConfig(); err != nil {
			return false, err
		}
		return true, nil
	}

	Conf = defaultConfig()
	if _, err := toml.DecodeFile(configPath, &Conf); err != nil {
		return false, fmt.Errorf("decode config %s: %w", configPath, err)
	}
	return false, nil
}

// LoadConfig is the boot-time wrapper used by main. It returns false only
// when the config cannot be loaded or created at all.
func LoadConfig() bool {
	created, err := LoadOrCreateConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败 failed to load config: %v\n", err)
		return false
	}
	if created {
		fmt.Println("已生成默认配置文件 default config file created")
	}
	return true
}

// SaveConfig writes the current Conf to the resolved config path, creating
// parent directories as needed.
func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

// CheckConfig validates loaded values, falling back to defaults for the
// tunables an operator left out.
func CheckConfig() error {
	if Conf.Server.Port <= 0 || Conf.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", Conf.Server.Port)
	}

	switch strings.TrimSpace(Conf.Queue.Provider) {
	case "", "memory":
		Conf.Queue.Provider = "memory"
	case "redis":
		if strings.TrimSpace(Conf.Queue.RedisAddr) == "" {
			return fmt.Errorf("queue provider is redis but redis_addr is empty")
		}
	default:
		return fmt.Errorf("unknown queue provider: %q", Conf.Queue.Provider)
	}

	if Conf.Queue.Concurrency <= 0 {
		Conf.Queue.Concurrency = 2
	}
	if Conf.Export.MaxWidth <= 0 {
		Conf.Export.MaxWidth = 1280
	}
	if Conf.Export.Crf <= 0 {
		Conf.Export.Crf = 23
	}
	if strings.TrimSpace(Conf.Export.Preset) == "" {
		Conf.Export.Preset = "fast"
	}
	if strings.TrimSpace(Conf.Export.AudioBitrate) == "" {
		Conf.Export.AudioBitrate = "128k"
	}
	if strings.TrimSpace(Conf.Engine.FfmpegPath) == "" {
		Conf.Engine.FfmpegPath = "ffmpeg"
	}
	if strings.TrimSpace(Conf.Engine.FfprobePath) == "" {
		Conf.Engine.FfprobePath = "ffprobe"
	}
	if Conf.App.MaxUploadMB <= 0 {
		Conf.App.MaxUploadMB = 2048
	}
	return nil
}
