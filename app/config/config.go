package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"chazz/engine"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Logs     LogConfig
	DB       PostgresConfig
	Engine   EngineSettings
	HTTP     HTTPConfig
	QueueURL string
	Workers  int
}

type LogConfig struct {
	Style string // console or json
	Level string
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
	Database string
}

// Enabled reports whether a database host is configured. Without one the
// service keeps jobs in memory.
func (p PostgresConfig) Enabled() bool { return p.URL != "" }

func (p PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s", p.Username, p.Password, p.URL, p.Port)
	if p.Database != "" {
		dsn += "/" + p.Database
	}
	return dsn
}

type EngineSettings struct {
	Preset      string
	Depth       int // 0 keeps the preset's adaptive depth
	MoveTimeout time.Duration
	BatchSize   int // positions per queued batch
}

type HTTPConfig struct {
	Addr    string
	GameTTL time.Duration // idle game sessions older than this are dropped
}

const (
	defaultMoveTimeout = 30 * time.Second
	defaultBatchSize   = 50
	defaultAddr        = "0.0.0.0:8080"
	defaultGameTTL     = time.Hour
)

func LoadConfig() (*Config, error) {
	depth, err := envInt("ENGINE_DEPTH", 0)
	if err != nil {
		return nil, err
	}
	timeoutMS, err := envInt("ENGINE_MOVE_TIMEOUT_MS", int(defaultMoveTimeout/time.Millisecond))
	if err != nil {
		return nil, err
	}
	batchSize, err := envInt("ENGINE_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		return nil, err
	}
	workers, err := envInt("WORKERS", runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	ttlMinutes, err := envInt("GAME_TTL_MINUTES", int(defaultGameTTL/time.Minute))
	if err != nil {
		return nil, err
	}
	if ttlMinutes <= 0 {
		ttlMinutes = int(defaultGameTTL / time.Minute)
	}

	cfg := &Config{
		QueueURL: os.Getenv("QUEUE_URL"),
		Workers:  workers,
		Logs: LogConfig{
			Style: envString("LOG_STYLE", "console"),
			Level: envString("LOG_LEVEL", "info"),
		},
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     envString("POSTGRES_PORT", "5432"),
			Database: os.Getenv("POSTGRES_DB"),
		},
		Engine: EngineSettings{
			Preset:      envString("ENGINE_PRESET", "full"),
			Depth:       depth,
			MoveTimeout: time.Duration(timeoutMS) * time.Millisecond,
			BatchSize:   batchSize,
		},
		HTTP: HTTPConfig{
			Addr:    envString("HTTP_ADDR", defaultAddr),
			GameTTL: time.Duration(ttlMinutes) * time.Minute,
		},
	}

	if _, err := cfg.EngineConfig(); err != nil {
		return nil, fmt.Errorf("ENGINE_PRESET: %w", err)
	}
	return cfg, nil
}

// EngineConfig resolves the configured preset and depth override.
func (c *Config) EngineConfig() (engine.Config, error) {
	return c.EngineConfigFor("", 0)
}

// EngineConfigFor is EngineConfig with per-request overrides. Empty or zero
// values fall back to the service defaults.
func (c *Config) EngineConfigFor(preset string, depth int) (engine.Config, error) {
	if preset == "" {
		preset = c.Engine.Preset
	}
	ec, err := engine.PresetByName(preset)
	if err != nil {
		return engine.Config{}, err
	}
	if depth <= 0 {
		depth = c.Engine.Depth
	}
	return ec.WithDepth(depth), nil
}

func envString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("error converting string to int: %s: %w", name, err)
	}
	return n, nil
}
