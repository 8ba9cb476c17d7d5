package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"tasktrack/internal/service"
)

// Backend names.
const (
	BackendSupabase    = "supabase"
	BackendPostgres    = "postgres"
	BackendGoogleTasks = "googletasks"
)

// Settings are the backend endpoints and credentials.
// Environment variables override values from config.yaml.
type Settings struct {
	Backend     string        `yaml:"backend" env:"TASKTRACK_BACKEND" env-default:"supabase"`
	StoreURL    string        `yaml:"store_url" env:"SUPABASE_URL"`
	APIKey      string        `yaml:"api_key" env:"SUPABASE_ANON_KEY"`
	DatabaseURL string        `yaml:"database_url" env:"TASKTRACK_DATABASE_URL"`
	Table       string        `yaml:"table" env:"TASKTRACK_TABLE" env-default:"tasks"`
	Timeout     time.Duration `yaml:"timeout" env:"TASKTRACK_TIMEOUT" env-default:"5s"`
}

// LoadSettings reads path if it exists, then applies the environment.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return Settings{}, fmt.Errorf("read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&s); err != nil {
			return Settings{}, fmt.Errorf("read env: %w", err)
		}
	}
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	s.StoreURL = strings.TrimRight(strings.TrimSpace(s.StoreURL), "/")
	s.APIKey = strings.TrimSpace(s.APIKey)
	if s.Timeout <= 0 {
		s.Timeout = 5 * time.Second
	}
	return s, nil
}

// Validate reports ErrServiceUnavailable when a setting the backend needs
// is missing. It never panics; callers surface the message as a notice.
func (s Settings) Validate(cfg *Config) error {
	var missing []string
	switch s.Backend {
	case BackendSupabase:
		missing = s.missingSupabase()
	case BackendPostgres:
		missing = s.missingSupabase()
		if s.DatabaseURL == "" {
			missing = append(missing, "TASKTRACK_DATABASE_URL")
		}
	case BackendGoogleTasks:
		if cfg == nil || !cfg.HasOAuthClient() {
			missing = append(missing, OAuthClientFile)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", service.ErrServiceUnavailable, s.Backend)
	}
	if len(missing) > 0 {
		return service.Unavailable(missing...)
	}
	return nil
}

func (s Settings) missingSupabase() []string {
	var missing []string
	if s.StoreURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if s.APIKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	return missing
}
