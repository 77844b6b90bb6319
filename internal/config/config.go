package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	StoreBackend     string        `mapstructure:"store_backend"` // memory, sqlite, postgres, browser
	StorePath        string        `mapstructure:"store_path"`
	PostgresDSN      string        `mapstructure:"postgres_dsn"`
	BrowserOrigin    string        `mapstructure:"browser_origin"`
	BrowserKeyPrefix string        `mapstructure:"browser_key_prefix"`
	SubmitDelay      time.Duration `mapstructure:"submit_delay"`
	RefreshDelay     time.Duration `mapstructure:"refresh_delay"`
	DateFormat       string        `mapstructure:"date_format"`
	LogLevel         string        `mapstructure:"log_level"`
	BatchWorkers     int           `mapstructure:"batch_workers"`
	BatchInterval    time.Duration `mapstructure:"batch_interval"` // minimum gap between batch submission starts
}

var AppConfig *Config

var (
	backends  = []string{"memory", "sqlite", "postgres", "browser"}
	logLevels = []string{"debug", "info", "warn", "warning", "error"}
)

const dirName = ".levelup"

var defaults = map[string]any{
	"store_backend":      "sqlite",
	"store_path":         "",
	"postgres_dsn":       "",
	"browser_origin":     "http://localhost:5173",
	"browser_key_prefix": "levelup_",
	"submit_delay":       "2s",
	"refresh_delay":      "1.5s",
	"date_format":        "02/01/2006",
	"log_level":          "info",
	"batch_workers":      3,
	"batch_interval":     "0s",
}

// Keys lists every setting `config set` accepts.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Initialize loads or creates the configuration file
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return Load(filepath.Join(homeDir, dirName))
}

// Load reads config.yaml from configDir, creating it with defaults if needed.
// A .env file in the working directory and LEVELUP_* variables override it.
func Load(configDir string) error {
	// .env is optional
	_ = godotenv.Load()

	configFile := filepath.Join(configDir, "config.yaml")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := createDefaultConfig(configFile); err != nil {
			return err
		}
	}

	viper.Reset()
	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("LEVELUP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
	viper.SetDefault("store_path", filepath.Join(configDir, "levelup.db"))

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.StorePath == "" {
		cfg.StorePath = filepath.Join(configDir, "levelup.db")
	}
	if cfg.BatchWorkers < 1 {
		cfg.BatchWorkers = 1
	}
	AppConfig = cfg

	return nil
}

func createDefaultConfig(path string) error {
	defaultConfig := `# LevelUp Configuration
# Store backend: memory, sqlite, postgres, browser
store_backend: sqlite
# Leave empty to use ~/.levelup/levelup.db
store_path: ""
postgres_dsn: ""

# Browser backend reads the web UI's localStorage
browser_origin: http://localhost:5173
browser_key_prefix: levelup_

# Simulated network latency
submit_delay: 2s
refresh_delay: 1.5s

date_format: "02/01/2006"
log_level: info
batch_workers: 3
batch_interval: 0s
`
	return os.WriteFile(path, []byte(defaultConfig), 0600)
}

// Set updates a configuration value. The value is checked before it is
// written so a bad entry can't stop the next Load.
func Set(key, value string) error {
	parsed, err := parseValue(key, value)
	if err != nil {
		return err
	}
	viper.Set(key, parsed)
	return viper.WriteConfig()
}

func parseValue(key, value string) (any, error) {
	if _, ok := defaults[key]; !ok {
		return nil, fmt.Errorf("unknown config key %q", key)
	}
	value = strings.TrimSpace(value)

	switch key {
	case "submit_delay", "refresh_delay", "batch_interval":
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%s must be a non-negative duration such as 2s or 500ms", key)
		}
		return value, nil
	case "batch_workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return n, nil
	case "store_backend":
		if !slices.Contains(backends, value) {
			return nil, fmt.Errorf("%s must be one of %v", key, backends)
		}
	case "log_level":
		if !slices.Contains(logLevels, strings.ToLower(value)) {
			return nil, fmt.Errorf("%s must be one of %v", key, logLevels)
		}
	case "date_format":
		if value == "" {
			return nil, fmt.Errorf("%s can't be empty", key)
		}
	}
	return value, nil
}

// Get retrieves a configuration value
func Get(key string) string {
	return viper.GetString(key)
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, dirName, "config.yaml")
}
