package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DefaultRedisChannel is the pub/sub channel used when none is configured.
const DefaultRedisChannel = "reservations:update_events"

// Config captures environment driven configuration values for the reservations service.
type Config struct {
	HTTPPort          int
	SQLitePath        string
	SessionSecret     string
	SessionTTL        time.Duration
	AdminUser         string
	AdminPassword     string
	AdminPasswordHash string
	SeedFile          string
	StrictApproval    bool
	RedisAddr         string
	RedisPassword     string
	RedisChannel      string
	StatsSchedule     string
	CORSOrigins       []string
	LogLevel          slog.Level
}

// RedisEnabled reports whether change notifications are relayed through Redis.
func (c Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// StatsEnabled reports whether the periodic stats job should run.
func (c Config) StatsEnabled() bool {
	return c.StatsSchedule != "" && !strings.EqualFold(c.StatsSchedule, "off")
}

// LoadArgs parses command line flags, loads the selected .env file and then
// reads the environment. A missing default .env file is ignored; a missing
// file named with --env-file is an error.
func LoadArgs(args []string) (Config, error) {
	flags := pflag.NewFlagSet("reservations", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "dotenv file loaded before reading the environment")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	if extra := flags.Args(); len(extra) > 0 {
		return Config{}, fmt.Errorf("unexpected argument: %s", extra[0])
	}

	if err := godotenv.Load(*envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || flags.Changed("env-file") {
			return Config{}, fmt.Errorf("failed to load %s: %w", *envFile, err)
		}
	}

	return Load()
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for optional fields and reports every missing
// or invalid entry in a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       5000,
		SQLitePath:     "reservations.db",
		SessionTTL:     12 * time.Hour,
		AdminUser:      "admin",
		AdminPassword:  "con123",
		RedisChannel:   DefaultRedisChannel,
		StatsSchedule:  "@every 15m",
		CORSOrigins:    []string{"*"},
		LogLevel:       slog.LevelInfo,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	portKey := "RESERVATIONS_HTTP_PORT"
	portValue := env(portKey)
	if portValue == "" {
		portKey = "PORT"
		portValue = env(portKey)
	}
	if portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, portKey)
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := env("RESERVATIONS_SQLITE_DSN"); dsn != "" {
		cfg.SQLitePath = dsn
	}

	if secret := env("RESERVATIONS_SESSION_SECRET"); secret == "" {
		missing = append(missing, "RESERVATIONS_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := env("RESERVATIONS_SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "RESERVATIONS_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if user := env("RESERVATIONS_ADMIN_USER"); user != "" {
		cfg.AdminUser = user
	}
	if password, ok := os.LookupEnv("RESERVATIONS_ADMIN_PASSWORD"); ok && password != "" {
		cfg.AdminPassword = password
	}
	cfg.AdminPasswordHash = env("RESERVATIONS_ADMIN_PASSWORD_HASH")
	cfg.SeedFile = env("RESERVATIONS_SEED_FILE")

	if strictValue := env("RESERVATIONS_STRICT_APPROVAL"); strictValue != "" {
		strict, err := strconv.ParseBool(strictValue)
		if err != nil {
			invalid = append(invalid, "RESERVATIONS_STRICT_APPROVAL")
		} else {
			cfg.StrictApproval = strict
		}
	}

	cfg.RedisAddr = env("RESERVATIONS_REDIS_ADDR")
	cfg.RedisPassword = env("RESERVATIONS_REDIS_PASSWORD")
	if channel := env("RESERVATIONS_REDIS_CHANNEL"); channel != "" {
		cfg.RedisChannel = channel
	}

	if schedule := env("RESERVATIONS_STATS_SCHEDULE"); schedule != "" {
		cfg.StatsSchedule = schedule
	}

	if originsValue := env("RESERVATIONS_CORS_ORIGINS"); originsValue != "" {
		origins := splitList(originsValue)
		if len(origins) == 0 {
			invalid = append(invalid, "RESERVATIONS_CORS_ORIGINS")
		} else {
			cfg.CORSOrigins = origins
		}
	}

	if levelValue := env("RESERVATIONS_LOG_LEVEL"); levelValue != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "RESERVATIONS_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables are not set: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid environment variable values: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

// Seed is the room catalog file format.
type Seed struct {
	Rooms []string `yaml:"rooms"`
}

// LoadSeed reads the room names listed in a YAML seed file. Blank and
// duplicate names are dropped.
func LoadSeed(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(seed.Rooms))
	names := make([]string, 0, len(seed.Rooms))
	for _, name := range seed.Rooms {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("seed file %s lists no rooms", path)
	}
	return names, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
