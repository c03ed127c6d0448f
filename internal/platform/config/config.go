package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	dErrors "birdnest/pkg/domain-errors"
)

const (
	DefaultDronesURL = "https://assignments.reaktor.com/birdnest/drones"
	DefaultPilotsURL = "https://assignments.reaktor.com/birdnest/pilots"
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	// HTTP
	Addr string

	// Upstream feed
	DronesURL   string
	PilotsURL   string
	HTTPTimeout time.Duration

	// No-fly zone, in feed units
	NDZCenterX float64
	NDZCenterY float64
	NDZRadius  float64

	// Polling and retention
	PollInterval         time.Duration
	InfringementTTL      time.Duration
	InfringementCapacity int
	PilotCacheCapacity   int

	// Replay/record
	Replay    bool
	Record    bool
	ReplayDir string

	LogLevel string
}

// Load builds the configuration from an optional .env file, the environment
// and the command line flags in args (without the program name).
func Load(args []string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:      getEnvOrDefault("HTTP_BIND", "0.0.0.0:8080"),
		DronesURL: getEnvOrDefault("BIRDNEST_DRONES_URL", DefaultDronesURL),
		PilotsURL: getEnvOrDefault("BIRDNEST_PILOTS_URL", DefaultPilotsURL),
		ReplayDir: getEnvOrDefault("BIRDNEST_REPLAY_DIR", "replay"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.HTTPTimeout, err = durationEnv("BIRDNEST_HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = durationEnv("BIRDNEST_POLL_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.InfringementTTL, err = durationEnv("BIRDNEST_INFRINGEMENT_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.NDZCenterX, err = floatEnv("BIRDNEST_NDZ_CENTER_X", 250_000); err != nil {
		return nil, err
	}
	if cfg.NDZCenterY, err = floatEnv("BIRDNEST_NDZ_CENTER_Y", 250_000); err != nil {
		return nil, err
	}
	if cfg.NDZRadius, err = floatEnv("BIRDNEST_NDZ_RADIUS", 100_000); err != nil {
		return nil, err
	}
	if cfg.InfringementCapacity, err = intEnv("BIRDNEST_INFRINGEMENT_CAPACITY", 10_000); err != nil {
		return nil, err
	}
	if cfg.PilotCacheCapacity, err = intEnv("BIRDNEST_PILOT_CACHE_CAPACITY", 10_000); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("birdnest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&cfg.Replay, "replay", false, "replay recorded snapshots instead of polling the live feed")
	fs.BoolVar(&cfg.Record, "record", false, "record live snapshots and pilots to the replay directory")
	fs.StringVar(&cfg.ReplayDir, "replay-dir", cfg.ReplayDir, "directory holding replay artifacts")
	if err := fs.Parse(args); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidConfig, "invalid command line")
	}
	if _, ok := os.LookupEnv("BIRDNEST_REPLAY"); ok {
		cfg.Replay = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Replay && c.Record {
		return dErrors.New(dErrors.CodeInvalidConfig,
			"cannot replay and record at the same time, remove either --replay, BIRDNEST_REPLAY or --record")
	}
	if c.PollInterval < time.Second {
		return dErrors.New(dErrors.CodeInvalidConfig, "BIRDNEST_POLL_INTERVAL must be at least 1s")
	}
	if c.InfringementTTL <= 0 {
		return dErrors.New(dErrors.CodeInvalidConfig, "BIRDNEST_INFRINGEMENT_TTL must be positive")
	}
	if c.NDZRadius <= 0 {
		return dErrors.New(dErrors.CodeInvalidConfig, "BIRDNEST_NDZ_RADIUS must be positive")
	}
	if c.InfringementCapacity <= 0 || c.PilotCacheCapacity <= 0 {
		return dErrors.New(dErrors.CodeInvalidConfig, "cache capacities must be positive")
	}
	if c.ReplayDir == "" && (c.Replay || c.Record) {
		return dErrors.New(dErrors.CodeInvalidConfig, "BIRDNEST_REPLAY_DIR is required for replay and record")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidConfig, fmt.Sprintf("invalid %s", key))
	}
	return d, nil
}

func floatEnv(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidConfig, fmt.Sprintf("invalid %s", key))
	}
	return f, nil
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidConfig, fmt.Sprintf("invalid %s", key))
	}
	return n, nil
}
