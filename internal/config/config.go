package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
	TracesEnabled bool   `yaml:"traces_enabled"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`
	OTLPInsecure  bool   `yaml:"otlp_insecure"`
}

type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bind    string `yaml:"bind"`
	Port    int    `yaml:"port"`
}

type Config struct {
	RuntimeName string           `yaml:"runtime_name"`
	Environment string           `yaml:"environment"`
	HTTP        HTTPConfig       `yaml:"http"`
	Telemetry   TelemetryConfig  `yaml:"telemetry"`
	Game        GameConfig       `yaml:"game"`
	Audio       AudioConfig      `yaml:"audio"`
	STT         STTConfig        `yaml:"stt"`
	Bus         BusConfig        `yaml:"bus"`
	EventStore  EventStoreConfig `yaml:"event_store"`
	Notify      NotifyConfig     `yaml:"notify"`
}

type GameConfig struct {
	Category    string      `yaml:"category"`
	Level       string      `yaml:"level"`
	Mode        string      `yaml:"mode"` // classic, training
	Lives       int         `yaml:"lives"`
	CatalogPack string      `yaml:"catalog_pack"`
	Seed        int64       `yaml:"seed"`
	Stats       StatsConfig `yaml:"stats"`
}

type StatsConfig struct {
	Backend string `yaml:"backend"` // json, sqlite, memory
	Path    string `yaml:"path"`
}

type AudioConfig struct {
	Mode       string `yaml:"mode"` // silence, file, microphone
	FilePath   string `yaml:"file_path"`
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
}

type STTConfig struct {
	Mode           string   `yaml:"mode"` // mock, typed, exec, bus
	Serve          bool     `yaml:"serve"`
	Command        string   `yaml:"command"`
	ModelPath      string   `yaml:"model_path"`
	Language       string   `yaml:"language"`
	TimeoutGraceMS int      `yaml:"timeout_grace_ms"`
	Script         []string `yaml:"script"`
}

type BusConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type EventStoreConfig struct {
	Path          string `yaml:"path"`
	RetentionMode string `yaml:"retention_mode"`
	RetentionDays int    `yaml:"retention_days"`
	MaxSessions   int    `yaml:"max_sessions"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

type NotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Icon    string `yaml:"icon"`
}

func Default() Config {
	return Config{
		RuntimeName: "loqa-speak",
		Environment: "development",
		HTTP: HTTPConfig{
			Enabled: false,
			Bind:    "127.0.0.1",
			Port:    8080,
		},
		Telemetry: TelemetryConfig{
			LogLevel:     "info",
			LogFile:      "./data/loqa-speak.log",
			OTLPInsecure: true,
		},
		Game: GameConfig{
			Category: "1",
			Level:    "1",
			Mode:     "classic",
			Lives:    3,
			Stats: StatsConfig{
				Backend: "json",
				Path:    "./data/game_stats.json",
			},
		},
		Audio: AudioConfig{
			Mode:       "silence",
			SampleRate: 16000,
			Channels:   1,
		},
		STT: STTConfig{
			Mode:           "typed",
			Language:       "en",
			TimeoutGraceMS: 1500,
		},
		Bus: BusConfig{
			Enabled:        false,
			Embedded:       true,
			Port:           4222,
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		EventStore: EventStoreConfig{
			Path:          "./data/loqa-speak-events.db",
			RetentionMode: "session",
			RetentionDays: 30,
			MaxSessions:   1000,
		},
	}
}

// Load reads a .env file if present, then the YAML file at path (optional),
// then LOQA_SPEAK_* environment overrides, and validates the result.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.RuntimeName, "LOQA_SPEAK_RUNTIME_NAME")
	overrideString(&cfg.Environment, "LOQA_SPEAK_ENVIRONMENT")
	overrideBool(&cfg.HTTP.Enabled, "LOQA_SPEAK_HTTP_ENABLED")
	overrideString(&cfg.HTTP.Bind, "LOQA_SPEAK_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "LOQA_SPEAK_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "LOQA_SPEAK_LOG_LEVEL")
	overrideString(&cfg.Telemetry.LogFile, "LOQA_SPEAK_LOG_FILE")
	overrideBool(&cfg.Telemetry.TracesEnabled, "LOQA_SPEAK_TRACES_ENABLED")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "LOQA_SPEAK_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "LOQA_SPEAK_OTLP_INSECURE")
	overrideString(&cfg.Game.Category, "LOQA_SPEAK_CATEGORY")
	overrideString(&cfg.Game.Level, "LOQA_SPEAK_LEVEL")
	overrideString(&cfg.Game.Mode, "LOQA_SPEAK_MODE")
	overrideInt(&cfg.Game.Lives, "LOQA_SPEAK_LIVES")
	overrideString(&cfg.Game.CatalogPack, "LOQA_SPEAK_CATALOG_PACK")
	overrideInt64(&cfg.Game.Seed, "LOQA_SPEAK_SEED")
	overrideString(&cfg.Game.Stats.Backend, "LOQA_SPEAK_STATS_BACKEND")
	overrideString(&cfg.Game.Stats.Path, "LOQA_SPEAK_STATS_PATH")
	overrideString(&cfg.Audio.Mode, "LOQA_SPEAK_AUDIO_MODE")
	overrideString(&cfg.Audio.FilePath, "LOQA_SPEAK_AUDIO_FILE")
	overrideInt(&cfg.Audio.SampleRate, "LOQA_SPEAK_AUDIO_SAMPLE_RATE")
	overrideInt(&cfg.Audio.Channels, "LOQA_SPEAK_AUDIO_CHANNELS")
	overrideString(&cfg.STT.Mode, "LOQA_SPEAK_STT_MODE")
	overrideBool(&cfg.STT.Serve, "LOQA_SPEAK_STT_SERVE")
	overrideString(&cfg.STT.Command, "LOQA_SPEAK_STT_COMMAND")
	overrideString(&cfg.STT.ModelPath, "LOQA_SPEAK_STT_MODEL_PATH")
	overrideString(&cfg.STT.Language, "LOQA_SPEAK_STT_LANGUAGE")
	overrideInt(&cfg.STT.TimeoutGraceMS, "LOQA_SPEAK_STT_TIMEOUT_GRACE_MS")
	overrideStringSlice(&cfg.STT.Script, "LOQA_SPEAK_STT_SCRIPT")
	overrideBool(&cfg.Bus.Enabled, "LOQA_SPEAK_BUS_ENABLED")
	overrideBool(&cfg.Bus.Embedded, "LOQA_SPEAK_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "LOQA_SPEAK_BUS_PORT")
	overrideStringSlice(&cfg.Bus.Servers, "LOQA_SPEAK_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "LOQA_SPEAK_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "LOQA_SPEAK_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "LOQA_SPEAK_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "LOQA_SPEAK_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "LOQA_SPEAK_BUS_CONNECT_TIMEOUT_MS")
	overrideString(&cfg.EventStore.Path, "LOQA_SPEAK_EVENT_STORE_PATH")
	overrideString(&cfg.EventStore.RetentionMode, "LOQA_SPEAK_EVENT_STORE_RETENTION_MODE")
	overrideInt(&cfg.EventStore.RetentionDays, "LOQA_SPEAK_EVENT_STORE_RETENTION_DAYS")
	overrideInt(&cfg.EventStore.MaxSessions, "LOQA_SPEAK_EVENT_STORE_MAX_SESSIONS")
	overrideBool(&cfg.EventStore.VacuumOnStart, "LOQA_SPEAK_EVENT_STORE_VACUUM_ON_START")
	overrideBool(&cfg.Notify.Enabled, "LOQA_SPEAK_NOTIFY_ENABLED")
	overrideString(&cfg.Notify.Icon, "LOQA_SPEAK_NOTIFY_ICON")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideInt64(target *int64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.RuntimeName == "" {
		return errors.New("runtime_name must not be empty")
	}
	if cfg.HTTP.Enabled && (cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535) {
		return errors.New("http.port must be between 1 and 65535")
	}
	switch cfg.Game.Mode {
	case "classic", "training":
	default:
		return errors.New("game.mode must be one of classic|training")
	}
	if cfg.Game.Category == "" || cfg.Game.Level == "" {
		return errors.New("game.category and game.level must not be empty")
	}
	if cfg.Game.Lives <= 0 {
		return errors.New("game.lives must be positive")
	}
	switch cfg.Game.Stats.Backend {
	case "json", "sqlite":
		if cfg.Game.Stats.Path == "" {
			return errors.New("game.stats.path must not be empty")
		}
	case "memory":
	default:
		return errors.New("game.stats.backend must be one of json|sqlite|memory")
	}
	switch cfg.Audio.Mode {
	case "silence", "microphone":
	case "file":
		if cfg.Audio.FilePath == "" {
			return errors.New("audio.file_path must be set when mode=file")
		}
	default:
		return errors.New("audio.mode must be one of silence|file|microphone")
	}
	if cfg.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if cfg.Audio.Channels <= 0 {
		return errors.New("audio.channels must be positive")
	}
	switch cfg.STT.Mode {
	case "mock", "typed":
	case "exec":
		if cfg.STT.Command == "" {
			return errors.New("stt.command must be set when mode=exec")
		}
	case "bus":
		if !cfg.Bus.Enabled {
			return errors.New("bus.enabled must be true when stt.mode=bus")
		}
	default:
		return errors.New("stt.mode must be one of mock|typed|exec|bus")
	}
	if cfg.STT.Serve && (!cfg.Bus.Enabled || cfg.STT.Mode == "bus") {
		return errors.New("stt.serve requires bus.enabled and a local stt.mode")
	}
	if cfg.STT.TimeoutGraceMS < 0 {
		return errors.New("stt.timeout_grace_ms must be >= 0")
	}
	if cfg.Bus.Enabled {
		if cfg.Bus.Embedded {
			if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
				return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
			}
		} else if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when embedded mode is disabled")
		}
	}
	if cfg.EventStore.Path == "" {
		return errors.New("event_store.path must not be empty")
	}
	switch cfg.EventStore.RetentionMode {
	case "ephemeral", "session", "persistent":
		// ok
	default:
		return errors.New("event_store.retention_mode must be one of ephemeral|session|persistent")
	}
	if cfg.EventStore.RetentionDays < 0 {
		return errors.New("event_store.retention_days must be >= 0")
	}
	return nil
}
