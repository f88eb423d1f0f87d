package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds client configuration from an optional YAML file, overridden by
// TSHOP_* environment variables.
type Config struct {
	DBPath    string    `yaml:"db_path"`
	Endpoints Endpoints `yaml:"endpoints"`
	Poll      Poll      `yaml:"poll"`
	HTTP      HTTP      `yaml:"http"`
	Log       Log       `yaml:"log"`
	Chat      Chat      `yaml:"chat"`
}

type Endpoints struct {
	Auth  string `yaml:"auth"`
	Game  string `yaml:"game"`
	Chat  string `yaml:"chat"`
	Admin string `yaml:"admin"`
}

type Poll struct {
	PresenceInterval time.Duration `yaml:"presence_interval"`
	ChatInterval     time.Duration `yaml:"chat_interval"`
	PresenceMinutes  int           `yaml:"presence_minutes"`
}

type HTTP struct {
	Timeout time.Duration `yaml:"timeout"`
}

type Log struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

type Chat struct {
	HistoryLimit int `yaml:"history_limit"`
}

const (
	defaultAuthURL  = "https://functions.poehali.dev/8885ce5a-f0d2-4474-a764-4d28d86afc46"
	defaultGameURL  = "https://functions.poehali.dev/3fa3e575-8f46-44d1-ae69-1ae6fa8fb1cc"
	defaultChatURL  = "https://functions.poehali.dev/89a045df-cb20-4b23-a309-3234e859bdd8"
	defaultAdminURL = "https://functions.poehali.dev/63254041-9aa4-41b3-8950-8cd75747d44c"
)

func Default() Config {
	return Config{
		Endpoints: Endpoints{
			Auth:  defaultAuthURL,
			Game:  defaultGameURL,
			Chat:  defaultChatURL,
			Admin: defaultAdminURL,
		},
		Poll: Poll{
			PresenceInterval: 60 * time.Second,
			ChatInterval:     3 * time.Second,
			PresenceMinutes:  1,
		},
		HTTP: HTTP{Timeout: 15 * time.Second},
		Log:  Log{Level: "info"},
		Chat: Chat{HistoryLimit: 50},
	}
}

// DefaultDir is where the config, log and session files live by default.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".titleshop"), nil
}

// Load reads path (if non-empty, or the default config file if it exists),
// applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		if dir, err := DefaultDir(); err == nil {
			path = filepath.Join(dir, "config.yaml")
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.DBPath = fallback(os.Getenv("TSHOP_DB_PATH"), cfg.DBPath)
	cfg.Endpoints.Auth = fallback(os.Getenv("TSHOP_AUTH_URL"), cfg.Endpoints.Auth)
	cfg.Endpoints.Game = fallback(os.Getenv("TSHOP_GAME_URL"), cfg.Endpoints.Game)
	cfg.Endpoints.Chat = fallback(os.Getenv("TSHOP_CHAT_URL"), cfg.Endpoints.Chat)
	cfg.Endpoints.Admin = fallback(os.Getenv("TSHOP_ADMIN_URL"), cfg.Endpoints.Admin)
	cfg.Log.File = fallback(os.Getenv("TSHOP_LOG_FILE"), cfg.Log.File)
	cfg.Log.Level = fallback(os.Getenv("TSHOP_LOG_LEVEL"), cfg.Log.Level)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"TSHOP_PRESENCE_INTERVAL", &cfg.Poll.PresenceInterval},
		{"TSHOP_CHAT_INTERVAL", &cfg.Poll.ChatInterval},
		{"TSHOP_HTTP_TIMEOUT", &cfg.HTTP.Timeout},
	}
	for _, d := range durations {
		v := strings.TrimSpace(os.Getenv(d.key))
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"TSHOP_PRESENCE_MINUTES", &cfg.Poll.PresenceMinutes},
		{"TSHOP_CHAT_HISTORY_LIMIT", &cfg.Chat.HistoryLimit},
	}
	for _, n := range ints {
		v := strings.TrimSpace(os.Getenv(n.key))
		if v == "" {
			continue
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", n.key, err)
		}
		*n.dst = parsed
	}
	return nil
}

func (c Config) Validate() error {
	for name, raw := range map[string]string{
		"endpoints.auth":  c.Endpoints.Auth,
		"endpoints.game":  c.Endpoints.Game,
		"endpoints.chat":  c.Endpoints.Chat,
		"endpoints.admin": c.Endpoints.Admin,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
		}
	}
	if c.Poll.PresenceInterval <= 0 {
		return errors.New("poll.presence_interval must be positive")
	}
	if c.Poll.ChatInterval <= 0 {
		return errors.New("poll.chat_interval must be positive")
	}
	if c.Poll.PresenceMinutes <= 0 {
		return errors.New("poll.presence_minutes must be positive")
	}
	if c.HTTP.Timeout < 0 {
		return errors.New("http.timeout must not be negative")
	}
	return nil
}

// LogFile returns the configured log path or the default one.
func (c Config) LogFile() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tshop.log"), nil
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
