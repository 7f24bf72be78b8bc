package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".xteam"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("XTEAM_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Load loads the configuration from file and environment variables.
// Priority: environment > file > defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Load a .env file first so file substitution and env overlay both see it.
	loadEnvFileCandidates()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil // use defaults if we can't find the config path
	}

	data, err := os.ReadFile(path)
	if err == nil {
		data = substituteEnv(data)
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	// If the file doesn't exist, continue with defaults.

	envconfig.Process("XTEAM_PATHS", &cfg.Paths)
	envconfig.Process("XTEAM_POSTING", &cfg.Posting)
	envconfig.Process("XTEAM_QUALITY", &cfg.Quality)
	envconfig.Process("XTEAM_HISTORY", &cfg.History)
	envconfig.Process("XTEAM_OPENAI", &cfg.Providers.OpenAI)
	envconfig.Process("XTEAM_SERPER", &cfg.Providers.Serper)
	envconfig.Process("XTEAM_SCRAPER", &cfg.Providers.Scraper)
	envconfig.Process("XTEAM_RENDER", &cfg.Providers.Render)
	envconfig.Process("XTEAM_X", &cfg.X)
	envconfig.Process("XTEAM_NOTIFY_SLACK", &cfg.Notify.Slack)
	envconfig.Process("XTEAM_EVENTS_KAFKA", &cfg.Events.Kafka)
	envconfig.Process("XTEAM_DAEMON", &cfg.Daemon)

	// Bare credential names, matching what the hosted services document.
	fallbackEnv(&cfg.Providers.OpenAI.APIKey, "OPENAI_API_KEY")
	fallbackEnv(&cfg.Providers.Serper.APIKey, "SERPER_API_KEY")
	fallbackEnv(&cfg.Providers.Scraper.APIKey, "APIFY_API_KEY")
	fallbackEnv(&cfg.Providers.Render.APIKey, "WAVESPEED_API_KEY")
	fallbackEnv(&cfg.X.APIKey, "X_API_KEY")
	fallbackEnv(&cfg.X.APISecret, "X_API_SECRET")
	fallbackEnv(&cfg.X.AccessToken, "X_ACCESS_TOKEN")
	fallbackEnv(&cfg.X.AccessTokenSecret, "X_ACCESS_TOKEN_SECRET")
	fallbackEnv(&cfg.X.BearerToken, "X_BEARER_TOKEN")

	expandHome(&cfg.Paths.DataDir)
	expandHome(&cfg.Paths.MediaDir)
	if cfg.Daemon.LockPath == "" {
		cfg.Daemon.LockPath = filepath.Join(cfg.Paths.DataDir, "daemon.lock")
	}
	expandHome(&cfg.Daemon.LockPath)

	return cfg, nil
}

// Validate checks that the configuration can support a run. Posting
// credentials are only required outside dry mode; a missing LLM key is
// always fatal since both generation and dedup embeddings need it.
func (c *Config) Validate(dry bool) error {
	var errs []error

	if c.Providers.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY not configured"))
	}
	if !dry && !c.X.Complete() {
		errs = append(errs, errors.New("X API credentials incomplete (need key, secret, access token, access token secret)"))
	}

	var sum float64
	for t, w := range c.Posting.BaseWeights {
		if !t.Valid() {
			errs = append(errs, fmt.Errorf("unknown content type %q in base weights", t))
		}
		if w < 0 {
			errs = append(errs, fmt.Errorf("negative base weight for %q", t))
		}
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		errs = append(errs, fmt.Errorf("base weights sum to %.3f, want 1.0", sum))
	}

	var windowSum float64
	for _, w := range c.Posting.Windows {
		if w.StartHour < 0 || w.EndHour > 24 || w.StartHour >= w.EndHour {
			errs = append(errs, fmt.Errorf("posting window %q has invalid hour range %d-%d", w.Name, w.StartHour, w.EndHour))
		}
		windowSum += w.Probability
	}
	if len(c.Posting.Windows) > 0 && (windowSum < 0.999 || windowSum > 1.001) {
		errs = append(errs, fmt.Errorf("posting window probabilities sum to %.3f, want 1.0", windowSum))
	}

	return errors.Join(errs...)
}

// Save writes the configuration to the config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// EnsureDir ensures a directory exists with proper permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// loadEnvFileCandidates loads the first .env file found among the usual
// locations. Existing process env vars always win.
func loadEnvFileCandidates() {
	candidates := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ConfigDir, "env"),
			filepath.Join(home, ".config", "xteam", "env"),
		)
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

func fallbackEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

func expandHome(p *string) {
	if strings.HasPrefix(*p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			*p = filepath.Join(home, (*p)[1:])
		}
	}
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// substituteEnv replaces ${VAR} references in the raw config file.
func substituteEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envPattern.FindSubmatch(match)[1]
		if value, ok := os.LookupEnv(string(name)); ok {
			return []byte(value)
		}
		return match
	})
}
