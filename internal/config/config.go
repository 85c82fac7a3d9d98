// internal/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/smeltergo/compositor/internal/util"
)

type Config struct {
	API    API    `json:"api"`
	Queue  Queue  `json:"queue"`
	Mixer  Mixer  `json:"mixer"`
	Logger Logger `json:"logger"`
}

type API struct {
	Port        int    `json:"port"`
	BearerToken string `json:"bearer_token"`
}

type Queue struct {
	OutputFramerateNum int  `json:"output_framerate_num"`
	OutputFramerateDen int  `json:"output_framerate_den"`
	RealTimeMode       bool `json:"real_time_mode"`
}

type Mixer struct {
	MixingSampleRate int `json:"mixing_sample_rate"`
}

type Logger struct {
	Level string `json:"level"`
}

func Default() Config {
	return Config{
		API: API{
			Port:        8081,
			BearerToken: "",
		},
		Queue: Queue{
			OutputFramerateNum: 30,
			OutputFramerateDen: 1,
			RealTimeMode:       true,
		},
		Mixer: Mixer{
			MixingSampleRate: 48000,
		},
		Logger: Logger{
			Level: "info",
		},
	}
}

func (c *Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return errors.New("api.port must be 1..65535")
	}
	if c.Queue.OutputFramerateNum <= 0 {
		return errors.New("queue.output_framerate_num must be > 0")
	}
	if c.Queue.OutputFramerateDen <= 0 {
		return errors.New("queue.output_framerate_den must be > 0")
	}
	if c.Mixer.MixingSampleRate <= 0 {
		return errors.New("mixer.mixing_sample_rate must be > 0")
	}
	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logger.level must be one of debug/info/warn/error, got %q", c.Logger.Level)
	}
	return nil
}

// ApplyEnv overlays SMELTER_API_PORT and SMELTER_LOGGER_LEVEL on top of an
// already-loaded config.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("SMELTER_API_PORT")); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil && port > 0 {
			c.API.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("SMELTER_LOGGER_LEVEL")); v != "" {
		c.Logger.Level = v
	}
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	// Start from defaults so missing JSON fields remain initialized.
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return util.WriteJSONFile(path, cfg)
}

// Ensure loads config if it exists; otherwise creates a default config file.
// Returns (cfg, createdNew, err).
func Ensure(path string) (Config, bool, error) {
	if _, err := os.Stat(path); err == nil {
		cfg, err := Load(path)
		return cfg, false, err
	} else if !os.IsNotExist(err) {
		return Config{}, false, err
	}

	cfg := Default()
	if err := Save(path, cfg); err != nil {
		return Config{}, false, fmt.Errorf("create default config: %w", err)
	}
	return cfg, true, nil
}
