// Package config assembles the process configuration. Values are layered:
// built-in defaults, then the YAML file, then .env, then the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/questions"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/transcribe"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "mockprep.yaml"

// Config is the complete process configuration.
type Config struct {
	Database   DatabaseConfig    `yaml:"database"`
	Redis      RedisConfig       `yaml:"redis"`
	Server     ServerConfig      `yaml:"server"`
	Interview  InterviewConfig   `yaml:"interview"`
	Identity   identity.Identity `yaml:"identity"`
	LLM        llm.Config        `yaml:"llm"`
	Transcribe transcribe.Config `yaml:"transcribe"`
	Log        LogConfig         `yaml:"log"`
}

// DatabaseConfig selects the session store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" (default) or "postgres"
	Path   string `yaml:"path"`   // SQLite file. Empty selects the XDG data dir.
	URL    string `yaml:"url"`    // Postgres connection URL.
}

// RedisConfig enables the view cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	InterviewTTL    time.Duration `yaml:"interview_ttl"`  // idle interviews are evicted after this
	MaxInterviews   int           `yaml:"max_interviews"` // live interviews per user
}

// InterviewConfig tunes question generation and scoring.
type InterviewConfig struct {
	QuestionCount      int           `yaml:"question_count"`
	CallTimeout        time.Duration `yaml:"call_timeout"`
	QuestionsMaxTokens int           `yaml:"questions_max_tokens"`
	FeedbackMaxTokens  int           `yaml:"feedback_max_tokens"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() Config {
	q := questions.DefaultConfig()
	f := feedback.DefaultConfig()
	return Config{
		Database: DatabaseConfig{Driver: "sqlite"},
		Redis:    RedisConfig{TTL: 10 * time.Minute},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 15 * time.Second,
			InterviewTTL:    2 * time.Hour,
			MaxInterviews:   5,
		},
		Interview: InterviewConfig{
			QuestionCount:      q.Count,
			CallTimeout:        session.DefaultCallTimeout,
			QuestionsMaxTokens: q.MaxTokens,
			FeedbackMaxTokens:  f.MaxTokens,
		},
		Identity: identity.Local(),
		LLM:      llm.DefaultConfig(),
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration. path may be empty, in which case
// MOCKPREP_CONFIG and then DefaultFile are tried; a missing default file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("MOCKPREP_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()

	if !cfg.LLM.HasKey() {
		if found, ok := llm.DiscoverConfig(); ok {
			found.Timeout = cfg.LLM.Timeout
			found.Retry = cfg.LLM.Retry
			cfg.LLM = found
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	num := func(dst *int, key string) {
		if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, key string) {
		if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
			*dst = d
		}
	}

	str(&c.Database.Driver, "MOCKPREP_DB_DRIVER")
	str(&c.Database.Path, "MOCKPREP_DB")
	str(&c.Database.URL, "MOCKPREP_DATABASE_URL", "DATABASE_URL")

	str(&c.Redis.Addr, "MOCKPREP_REDIS_ADDR")
	str(&c.Redis.Password, "MOCKPREP_REDIS_PASSWORD")
	num(&c.Redis.DB, "MOCKPREP_REDIS_DB")
	dur(&c.Redis.TTL, "MOCKPREP_REDIS_TTL")

	str(&c.Server.Addr, "MOCKPREP_ADDR")
	dur(&c.Server.InterviewTTL, "MOCKPREP_INTERVIEW_TTL")
	num(&c.Server.MaxInterviews, "MOCKPREP_MAX_INTERVIEWS")

	num(&c.Interview.QuestionCount, "MOCKPREP_QUESTION_COUNT")
	dur(&c.Interview.CallTimeout, "MOCKPREP_CALL_TIMEOUT")

	str(&c.Identity.ExternalID, "MOCKPREP_USER_ID")
	str(&c.Identity.DisplayName, "MOCKPREP_USER_NAME")
	str(&c.Identity.Email, "MOCKPREP_USER_EMAIL")

	str(&c.Log.Level, "MOCKPREP_LOG_LEVEL")
	str(&c.Log.Format, "MOCKPREP_LOG_FORMAT")

	c.LLM.ApplyEnv()

	str(&c.Transcribe.APIKey, "MOCKPREP_TRANSCRIBE_API_KEY")
	if c.Transcribe.APIKey == "" {
		c.Transcribe.APIKey = c.LLM.OpenAI.APIKey
	}
}

// Validate checks values that have no usable fallback.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}
	if c.Server.InterviewTTL <= 0 {
		return errors.New("server.interview_ttl must be positive")
	}
	if c.Server.MaxInterviews <= 0 {
		return errors.New("server.max_interviews must be positive")
	}
	if c.Interview.QuestionCount <= 0 {
		return errors.New("interview.question_count must be positive")
	}
	if c.Interview.CallTimeout <= 0 {
		return errors.New("interview.call_timeout must be positive")
	}
	if !c.Identity.Valid() {
		return errors.New("identity.external_id is required")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Questions returns the question generator settings.
func (c Config) Questions() questions.Config {
	q := questions.DefaultConfig()
	q.Count = c.Interview.QuestionCount
	if c.Interview.QuestionsMaxTokens > 0 {
		q.MaxTokens = c.Interview.QuestionsMaxTokens
	}
	return q
}

// Feedback returns the scorer settings.
func (c Config) Feedback() feedback.Config {
	f := feedback.DefaultConfig()
	if c.Interview.FeedbackMaxTokens > 0 {
		f.MaxTokens = c.Interview.FeedbackMaxTokens
	}
	return f
}

// Session returns the interview state machine settings.
func (c Config) Session() session.Config {
	return session.Config{CallTimeout: c.Interview.CallTimeout}
}

// NewLogger builds the process logger writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
