package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nesting levels: TRIVIATRIP_DATABASE__PATH sets database.path.
const EnvPrefix = "TRIVIATRIP_"

// ErrHelp is returned when -h or --help was given.
var ErrHelp = pflag.ErrHelp

type Config struct {
	Database DatabaseConfig `koanf:"database"`
	API      APIConfig      `koanf:"api"`
	Queue    QueueConfig    `koanf:"queue"`
	Game     GameConfig     `koanf:"game"`
	Packs    PacksConfig    `koanf:"packs"`
	Log      LogConfig      `koanf:"log"`
	Server   ServerConfig   `koanf:"server"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type APIConfig struct {
	BaseURL        string        `koanf:"base_url" validate:"required,url"`
	TokenURL       string        `koanf:"token_url" validate:"required,url"`
	Timeout        time.Duration `koanf:"timeout" validate:"gt=0"`
	RateLimitDelay time.Duration `koanf:"rate_limit_delay" validate:"gte=0"`
}

// QueueConfig sizes the question buffer. The API serves at most 50 questions per request.
type QueueConfig struct {
	InitialLoadCount    int `koanf:"initial_load_count" validate:"min=1,max=50"`
	BackgroundLoadCount int `koanf:"background_load_count" validate:"min=1,max=50"`
	MinBufferThreshold  int `koanf:"min_buffer_threshold" validate:"min=0"`
	DatabaseLoadCount   int `koanf:"database_load_count" validate:"min=1"`
}

type GameConfig struct {
	QuestionsPerSession int `koanf:"questions_per_session" validate:"min=1"`
}

type PacksConfig struct {
	CacheDir string `koanf:"cache_dir" validate:"required"`
}

// LogConfig sets the log level. An empty File logs to stderr.
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	File  string `koanf:"file"`
}

type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required,hostname_port"`
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.String("config", "", "path to a YAML config file")

	fs.String("database.path", "triviatrip.db", "path to the SQLite database file")
	fs.String("api.base_url", "https://opentdb.com/api.php", "trivia API question endpoint")
	fs.String("api.token_url", "https://opentdb.com/api_token.php", "trivia API session token endpoint")
	fs.Duration("api.timeout", 10*time.Second, "timeout of a single trivia API request")
	fs.Duration("api.rate_limit_delay", 5001*time.Millisecond, "wait before the last-resort API request")
	fs.Int("queue.initial_load_count", 30, "questions loaded at startup")
	fs.Int("queue.background_load_count", 20, "questions loaded by each background refill")
	fs.Int("queue.min_buffer_threshold", 10, "buffer size that triggers a background refill")
	fs.Int("queue.database_load_count", 10, "questions loaded from the database when the API falls short")
	fs.Int("game.questions_per_session", 10, "questions in one game")
	fs.String("packs.cache_dir", "repos", "where git question packs are checked out")
	fs.String("log.level", "info", "log level: debug, info, warn or error")
	fs.String("log.file", "", "append logs to this file instead of stderr")
	fs.String("server.addr", "localhost:8080", "listen address of the web server")
	return fs
}

// Load builds the configuration from, in increasing precedence, flag
// defaults, the YAML file named by --config, TRIVIATRIP_ environment
// variables and explicitly set flags. It returns the positional arguments.
// A bare --help yields ErrHelp.
func Load(name string, args []string) (*Config, []string, error) {
	fs := newFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envKey := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Set flags override everything; defaults only fill keys nothing else provided.
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, nil, fmt.Errorf("invalid config: %w", verrs)
		}
		return nil, nil, err
	}

	return &cfg, fs.Args(), nil
}

// Usage returns the flag help text.
func Usage(name string) string {
	return newFlagSet(name).FlagUsages()
}
